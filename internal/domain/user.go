package domain

import "time"

// Role classifies a user's base access level.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Capability is a per-user privilege independent of role.
type Capability string

const (
	// CapabilityBackfill allows creating time entries with both
	// timestamps supplied ("forgot to clock" flow).
	CapabilityBackfill Capability = "backfill"
	// CapabilityManageInventory allows inventory CRUD and export.
	CapabilityManageInventory Capability = "inventory"
)

// User represents an authenticated user of the portal.
type User struct {
	ID                 int64
	Username           string
	PasswordHash       string
	DailyHours         float64
	Role               Role
	CanBackfill        bool
	CanManageInventory bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Can reports whether the user holds the given capability. Capabilities
// are granted individually; an admin does not implicitly hold them.
func (u *User) Can(c Capability) bool {
	switch c {
	case CapabilityBackfill:
		return u.CanBackfill
	case CapabilityManageInventory:
		return u.CanManageInventory
	}
	return false
}

// TracksBalance reports whether hour-balance accounting applies to the
// user. A zero daily-hours quota means the user is exempt.
func (u *User) TracksBalance() bool {
	return u.DailyHours > 0
}
