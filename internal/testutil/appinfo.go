package testutil

// StaticAppInfo returns a fixed application bundle identifier.
//
// Implements transform.AppInfo. An empty value exercises the configuration
// fallback path.
type StaticAppInfo string

// AppID returns the fixed identifier.
func (a StaticAppInfo) AppID() string { return string(a) }
