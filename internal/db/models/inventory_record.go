package models

import "time"

// InventoryRecord is the underlying device row an RMA refers to.
type InventoryRecord struct {
	// ID is the unique identifier for the record.
	ID uint `gorm:"primaryKey"`
	// SerialNumber identifies the physical device.
	SerialNumber string `gorm:"column:serialnumber;size:100;not null;index"`
	// Model is the device model name.
	Model string `gorm:"size:100"`
	// Manufacturer is the device manufacturer.
	Manufacturer string `gorm:"size:100"`
	// ComputerName is the device host name, when known.
	ComputerName string `gorm:"column:computername;size:100"`
	// IsCurrent marks the latest row for a serial number.
	IsCurrent bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the InventoryRecord model.
func (InventoryRecord) TableName() string {
	return "system_records"
}
