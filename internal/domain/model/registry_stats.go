package model

import "time"

// RegistryStats is a point-in-time snapshot of registry occupancy,
// exposed on the operational /stats endpoint.
type RegistryStats struct {
	OnlineUsers  int           `json:"online_users"`
	LiveSessions int           `json:"live_sessions"`
	Uptime       time.Duration `json:"uptime"`
}
