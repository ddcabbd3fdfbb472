package models

import "time"

// StoreItem is one device currently held in a store's active stock.
type StoreItem struct {
	// ID is the unique identifier for the stock row.
	ID uint `gorm:"primaryKey"`
	// StoreID is the store holding the item.
	StoreID uint `gorm:"not null;index"`
	// RecordID is the underlying inventory record.
	RecordID uint `gorm:"not null;index"`
	// ReceivedAt is when the item entered the store stock.
	ReceivedAt time.Time
	// Store is the associated store.
	Store Store `gorm:"foreignKey:StoreID"`
	// Record is the associated inventory record.
	Record InventoryRecord `gorm:"foreignKey:RecordID"`
}

// TableName specifies the database table name for the StoreItem model.
func (StoreItem) TableName() string {
	return "store_items"
}

// ItemLocation tracks the last known location of a device by serial number.
// Rows are upserted whenever an item moves.
type ItemLocation struct {
	// SerialNumber identifies the device.
	SerialNumber string `gorm:"column:serialnumber;primaryKey;size:100"`
	// Location is where the item currently is ("store" or "inventory").
	Location string `gorm:"size:20;not null"`
	// StoreID is the store holding the item, when Location is "store".
	StoreID *uint
	// StoreName is a denormalized copy of the store name.
	StoreName string `gorm:"size:100"`
	// UpdatedAt is when the location last changed.
	UpdatedAt time.Time
}

// TableName specifies the database table name for the ItemLocation model.
func (ItemLocation) TableName() string {
	return "item_locations"
}
