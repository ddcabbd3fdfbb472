package models

import "time"

// SystemGroupName is the reserved name of the built-in administrator group.
// The seeded group carries IsSystem = true; services check the flag, not the name.
const SystemGroupName = "admin"

// Group represents a named role that users belong to.
// A system group (the built-in admin group) implicitly holds every main
// permission and every store feature; its grants are synthesized, never
// stored as permission rows, and the group itself can not be mutated
// or deleted through the administration service.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey"`
	// Name is the unique display name of the group.
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable explanation of the group's purpose.
	Description string `gorm:"size:500"`
	// IsSystem marks protected built-in groups that can not be modified or deleted.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}
