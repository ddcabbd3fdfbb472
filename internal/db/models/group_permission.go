package models

// Main permission keys. These are the only values allowed in
// GroupPermission.PermissionType.
const (
	// PermInventory allows access to the central inventory.
	PermInventory = "inventory"
	// PermInventoryRAM allows access to the RAM inventory view.
	PermInventoryRAM = "inventory_ram"
	// PermInbound allows access to inbound processing.
	PermInbound = "inbound"
	// PermOutbound allows access to outbound processing.
	PermOutbound = "outbound"
	// PermPurchaseOrder allows access to purchase orders.
	PermPurchaseOrder = "purchase_order"
	// PermTagManagement allows managing categories and tags.
	PermTagManagement = "tag_management"
)

// MainPermissionTypes enumerates every main permission key. Absent rows
// default to false when grants are resolved.
var MainPermissionTypes = []string{ //nolint:gochecknoglobals
	PermInventory,
	PermInventoryRAM,
	PermInbound,
	PermOutbound,
	PermPurchaseOrder,
	PermTagManagement,
}

// GroupPermission is one main-permission grant for a group, stored
// row-per-permission-type. This normalized form is the single source of
// truth; the map-shaped main_permissions the API returns is derived.
type GroupPermission struct {
	// ID is the unique identifier for the permission row.
	ID uint `gorm:"primaryKey"`
	// GroupID is the ID of the group this grant belongs to.
	GroupID uint `gorm:"not null;uniqueIndex:idx_group_permission_type"`
	// PermissionType is one of the MainPermissionTypes keys.
	PermissionType string `gorm:"size:50;not null;uniqueIndex:idx_group_permission_type"`
	// PermissionValue is the grant value; absent rows read as false.
	PermissionValue bool `gorm:"not null;default:false"`
	// Group is the associated group. Rows cascade on group delete.
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the GroupPermission model.
func (GroupPermission) TableName() string {
	return "group_permissions"
}
