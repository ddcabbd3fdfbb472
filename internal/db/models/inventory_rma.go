package models

import "time"

// InventoryRMA is the inventory-side repair record. It references the
// store-side row it originated from (when any) and carries the repair
// diagnosis, solution and actor attribution per transition.
type InventoryRMA struct {
	// ID is the unique identifier for the inventory RMA.
	ID uint `gorm:"primaryKey"`
	// StoreRMAID links back to the originating store-side row, when any.
	StoreRMAID *uint `gorm:"column:store_rma_id;index"`
	// StoreID is the store the item came from.
	StoreID uint `gorm:"not null;index"`
	// RecordID is the underlying inventory record.
	RecordID uint `gorm:"not null;index"`
	// SerialNumber is a denormalized copy of the device serial number.
	SerialNumber string `gorm:"column:serialnumber;size:100;index"`
	// Model is a denormalized copy of the device model.
	Model string `gorm:"size:100"`
	// Manufacturer is a denormalized copy of the device manufacturer.
	Manufacturer string `gorm:"size:100"`
	// StoreName is a denormalized copy of the store name.
	StoreName string `gorm:"size:100"`
	// IssueDescription is the reported defect.
	IssueDescription string `gorm:"type:text"`
	// Status is the repair stage (receive, process, complete, failed).
	Status string `gorm:"size:30;not null;default:'receive';index"`
	// Diagnosis is recorded when processing starts.
	Diagnosis string `gorm:"type:text"`
	// Solution is recorded when the repair completes.
	Solution string `gorm:"type:text"`
	// FailedReason is recorded when the repair fails.
	FailedReason string `gorm:"type:text"`
	// Notes holds free-text notes.
	Notes string `gorm:"type:text"`
	// CreatedAt is when the item was received at inventory.
	CreatedAt time.Time
	// CreatedBy is the user who received the item.
	CreatedBy uint64
	// ProcessedAt is when processing started.
	ProcessedAt *time.Time
	// ProcessedBy is the user who started processing.
	ProcessedBy *uint64
	// CompletedAt is when the repair completed.
	CompletedAt *time.Time
	// CompletedBy is the user who completed the repair.
	CompletedBy *uint64
	// FailedAt is when the repair was marked failed.
	FailedAt *time.Time
	// FailedBy is the user who marked the repair failed.
	FailedBy *uint64
	// StoreRMA is the associated store-side row.
	StoreRMA *StoreRMA `gorm:"foreignKey:StoreRMAID"`
}

// TableName specifies the database table name for the InventoryRMA model.
func (InventoryRMA) TableName() string {
	return "inventory_rma"
}
