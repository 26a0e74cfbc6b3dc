package users

import "time"

// RoleSystemManager is the administrative role that receives operational alerts.
const RoleSystemManager = "System Manager"

// User represents a user account.
type User struct {
	ID        int64
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
