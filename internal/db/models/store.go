package models

import "time"

// Store represents a retail store location.
type Store struct {
	// ID is the unique identifier for the store.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the store.
	Name string `gorm:"size:100;not null"`
	// Active indicates whether the store is operating.
	Active bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the store was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the store was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Store model.
func (Store) TableName() string {
	return "stores"
}
