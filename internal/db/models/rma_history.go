package models

import "time"

// RMAHistory is the append-only audit log of RMA mutations. One row is
// written per transition inside the same transaction; rows are never
// updated or deleted.
type RMAHistory struct {
	// ID is the unique identifier for the history row.
	ID uint `gorm:"primaryKey"`
	// RMAID is the inventory RMA the entry belongs to.
	RMAID uint `gorm:"column:rma_id;not null;index"`
	// Action names the mutation (create, process, complete, fail, update, send_to_store).
	Action string `gorm:"size:30;not null"`
	// OldStatus is the status before the mutation (empty on create).
	OldStatus string `gorm:"size:30"`
	// NewStatus is the status after the mutation.
	NewStatus string `gorm:"size:30"`
	// ChangedFields is a JSON document of changed fields with old/new values.
	ChangedFields string `gorm:"type:text"`
	// Notes holds free-text notes attached to the mutation.
	Notes string `gorm:"type:text"`
	// CreatedBy is the acting user.
	CreatedBy uint64
	// CreatedAt is when the mutation happened (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the RMAHistory model.
func (RMAHistory) TableName() string {
	return "rma_history"
}
