package state

// Status describes the lifecycle of a shared-state snapshot.
type Status string

const (
	// StatusPending means the owner has registered but not yet published data.
	StatusPending Status = "pending"
	// StatusSet means the snapshot carries published data.
	StatusSet Status = "set"
	// StatusNone means the owner has no state (e.g. it was torn down).
	StatusNone Status = "none"
)

// Owners of the two upstream snapshots this extension reads.
const (
	OwnerConfiguration = "Configuration"
	OwnerIdentity      = "Identity"
)

// Well-known keys inside the Configuration and Identity snapshots.
const (
	// KeyPrivacyStatus holds the collect consent string ("optedIn",
	// "optedOut", "unknown").
	KeyPrivacyStatus = "privacy.status"
	// KeyUseSandbox selects the apnsSandbox push platform when true.
	KeyUseSandbox = "useSandbox"
	// KeyDatasetID names the experience event dataset tracking uploads land in.
	KeyDatasetID = "experienceEventDatasetId"
	// KeyAppID is the application bundle identifier fallback for push syncs.
	KeyAppID = "appID"
	// KeyECID is the experience cloud ID inside the Identity snapshot.
	KeyECID = "ECID"
)

// Snapshot is one published shared-state version.
//
// Data is read-only after publication. Store.Publish copies the map it is
// handed, so producers cannot mutate a snapshot retroactively; consumers
// must extend the same courtesy.
type Snapshot struct {
	Owner   string
	Version int64
	Status  Status
	Data    map[string]any
}

// IsSet reports whether the snapshot exists and carries published data.
// A nil snapshot reads as not set.
func (s *Snapshot) IsSet() bool {
	return s != nil && s.Status == StatusSet
}

// StringValue returns the string stored at key.
// A nil snapshot, missing key, or non-string value returns ok=false.
func (s *Snapshot) StringValue(key string) (string, bool) {
	if s == nil || s.Data == nil {
		return "", false
	}
	v, ok := s.Data[key].(string)
	return v, ok
}

// BoolValue returns the bool stored at key.
// A nil snapshot, missing key, or non-bool value returns ok=false.
func (s *Snapshot) BoolValue(key string) (bool, bool) {
	if s == nil || s.Data == nil {
		return false, false
	}
	v, ok := s.Data[key].(bool)
	return v, ok
}
