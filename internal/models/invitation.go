package models

import "time"

// Invitation lets the holder of Code register with Roles. It is deleted
// when used.
type Invitation struct {
	Code      string
	Roles     RoleSet
	CreatedAt time.Time
}
