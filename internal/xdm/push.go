package xdm

// Platform identifies the push transport a token belongs to.
type Platform string

const (
	// PlatformAPNS is the production Apple push service.
	PlatformAPNS Platform = "apns"
	// PlatformAPNSSandbox is the Apple push sandbox for development builds.
	PlatformAPNSSandbox Platform = "apnsSandbox"
)

// PlatformFor selects the platform from the configuration sandbox flag.
func PlatformFor(useSandbox bool) Platform {
	if useSandbox {
		return PlatformAPNSSandbox
	}
	return PlatformAPNS
}

// ecidNamespaceCode identifies the experience cloud ID namespace in
// profile payloads.
const ecidNamespaceCode = "ECID"

// PushRegistration describes one validated push token sync.
type PushRegistration struct {
	AppID    string
	Token    string
	Platform Platform
	ECID     string
}

// BuildPushRegistration renders the profile payload that attaches a push
// token to the installation's ECID:
//
//	{"data": {"pushNotificationDetails": [{
//	    "appID": ..., "token": ..., "platform": ...,
//	    "denylisted": false,
//	    "identity": {"namespace": {"code": "ECID"}, "id": ...}}]}}
//
// The denylisted flag is always false on registration; the upstream profile
// service flips it when the transport reports the token dead.
func BuildPushRegistration(reg PushRegistration) map[string]any {
	detail := map[string]any{
		"appID":      reg.AppID,
		"token":      reg.Token,
		"platform":   string(reg.Platform),
		"denylisted": false,
		"identity": map[string]any{
			"namespace": map[string]any{"code": ecidNamespaceCode},
			"id":        reg.ECID,
		},
	}
	return map[string]any{
		"data": map[string]any{
			"pushNotificationDetails": []any{detail},
		},
	}
}
