package models

import "time"

// StoreRMA is the store-side record of a defective item reported by a store.
// Its three status fields (StoreStatus, InventoryStatus, LocationType) form
// one state-machine value; the rma package owns every transition and always
// writes all three together.
type StoreRMA struct {
	// ID is the unique identifier for the store RMA.
	ID uint `gorm:"primaryKey"`
	// StoreID is the reporting store.
	StoreID uint `gorm:"not null;index"`
	// RecordID is the underlying inventory record.
	RecordID uint `gorm:"not null;index"`
	// Reason is the defect description supplied by the store.
	Reason string `gorm:"type:text"`
	// Notes holds free-text notes.
	Notes string `gorm:"type:text"`
	// StoreStatus is the store-side stage (pending, sent_to_inventory, completed, failed, sent_to_store).
	StoreStatus string `gorm:"size:30;not null;default:'pending'"`
	// InventoryStatus mirrors the linked inventory RMA stage (empty while at the store).
	InventoryStatus string `gorm:"size:30"`
	// LocationType is where the item physically is ("store" or "inventory").
	LocationType string `gorm:"size:20;not null;default:'store'"`
	// Diagnosis mirrors the inventory-side diagnosis.
	Diagnosis string `gorm:"type:text"`
	// Solution mirrors the inventory-side solution.
	Solution string `gorm:"type:text"`
	// FailedReason mirrors the inventory-side failure reason.
	FailedReason string `gorm:"type:text"`
	// RMADate is when the store reported the defect.
	RMADate time.Time `gorm:"column:rma_date;autoCreateTime"`
	// ReceivedAt is when the item arrived at inventory.
	ReceivedAt *time.Time
	// ProcessedAt is when repair processing started.
	ProcessedAt *time.Time
	// CompletedAt is when the repair completed.
	CompletedAt *time.Time
	// FailedAt is when the repair was marked failed.
	FailedAt *time.Time
	// SentToStoreAt is when the item was returned to store stock.
	SentToStoreAt *time.Time
	// Store is the associated store.
	Store Store `gorm:"foreignKey:StoreID"`
	// Record is the associated inventory record.
	Record InventoryRecord `gorm:"foreignKey:RecordID"`
}

// TableName specifies the database table name for the StoreRMA model.
func (StoreRMA) TableName() string {
	return "store_rma"
}
