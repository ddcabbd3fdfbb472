package models

// Store feature keys checked by the store-scoped permission guard.
const (
	// FeatureInventory allows managing a store's stock.
	FeatureInventory = "inventory"
	// FeatureOrders allows managing a store's orders.
	FeatureOrders = "orders"
	// FeatureRMA allows managing a store's RMA intake.
	FeatureRMA = "rma"
	// FeatureOutbound allows store outbound operations.
	FeatureOutbound = "outbound"
	// FeatureView is implicitly granted to every member of a permitted store.
	FeatureView = "view"
	// FeatureBasic is implicitly granted to every member of a permitted store.
	FeatureBasic = "basic"
)

// Features holds the per-store feature grants of a group.
type Features struct {
	// Inventory allows managing the store's stock.
	Inventory bool `gorm:"not null;default:false" json:"inventory"`
	// Orders allows managing the store's orders.
	Orders bool `gorm:"not null;default:false" json:"orders"`
	// RMA allows managing the store's RMA intake.
	RMA bool `gorm:"column:rma;not null;default:false" json:"rma"`
	// Outbound allows store outbound operations.
	Outbound bool `gorm:"not null;default:false" json:"outbound"`
	// BulkSelect allows bulk selection in store tables.
	BulkSelect bool `gorm:"not null;default:false" json:"bulk_select"`
}

// Has reports whether the feature key is granted. The view and basic
// pseudo-features (and an empty key) are granted to any store member.
func (f Features) Has(key string) bool {
	switch key {
	case FeatureView, FeatureBasic, "":
		return true
	case FeatureInventory:
		return f.Inventory
	case FeatureOrders:
		return f.Orders
	case FeatureRMA:
		return f.RMA
	case FeatureOutbound:
		return f.Outbound
	default:
		return false
	}
}

// FullGrant returns a Features value with every feature enabled.
// Used when grants are synthesized for system groups.
func FullGrant() Features {
	return Features{Inventory: true, Orders: true, RMA: true, Outbound: true, BulkSelect: true}
}

// GroupStorePermission grants a group access to one store with a set of
// feature flags. Rows are replaced wholesale on every group update.
type GroupStorePermission struct {
	// ID is the unique identifier for the permission row.
	ID uint `gorm:"primaryKey"`
	// GroupID is the ID of the group this grant belongs to.
	GroupID uint `gorm:"not null;uniqueIndex:idx_group_store"`
	// StoreID is the ID of the store this grant applies to.
	StoreID uint `gorm:"not null;uniqueIndex:idx_group_store"`
	// Features holds the per-feature grant flags.
	Features
	// Group is the associated group. Rows cascade on group delete.
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// Store is the associated store.
	Store Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the GroupStorePermission model.
func (GroupStorePermission) TableName() string {
	return "group_store_permissions"
}
