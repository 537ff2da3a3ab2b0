package model

// User status values cached for cross-restart display. The registry's
// occupancy, not this field, is the authoritative presence signal.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User is the profile record resolved from the user store. It is carried in
// auth_success payloads and consulted for display names; it never drives
// routing decisions.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Status string `json:"status,omitempty"`
}
