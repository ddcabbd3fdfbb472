package group

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/cache"
	"github.com/storehub/storehub/internal/db/models"
)

// View is the joined representation of a group the API exchanges:
// the group row plus its derived permission maps.
type View struct {
	ID               uint                     `json:"id"`
	Name             string                   `json:"name"`
	Description      string                   `json:"description"`
	IsSystem         bool                     `json:"is_system"`
	PermittedStores  []uint                   `json:"permitted_stores"`
	MainPermissions  map[string]bool          `json:"main_permissions"`
	StorePermissions map[uint]models.Features `json:"store_permissions"`
}

// Service provides group administration.
type Service struct {
	db    *gorm.DB
	cache *cache.Service
}

// NewService creates a group administration service.
func NewService(db *gorm.DB, c *cache.Service) *Service {
	return &Service{db: db, cache: c}
}

// ListGroups returns every group with its derived permission maps. System
// groups are synthesized with every store and every permission; their
// grants are never read from rows.
func (s *Service) ListGroups() ([]View, error) {
	var (
		groups   []models.Group
		storeIDs []uint
	)

	if err := s.db.Order("id").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	if err := s.db.Model(&models.Store{}).Order("id").Pluck("id", &storeIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}

	views := make([]View, 0, len(groups))

	for i := range groups {
		g := &groups[i]

		if g.IsSystem {
			views = append(views, synthesizeSystemView(g, storeIDs))
			continue
		}

		v, err := s.buildView(s.db, g)
		if err != nil {
			return nil, err
		}

		views = append(views, *v)
	}

	return views, nil
}

// GetGroupWithPermissions returns one group's joined view.
func (s *Service) GetGroupWithPermissions(id uint) (*View, error) {
	var g models.Group

	err := s.db.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load group %d: %w", id, err)
	}

	if g.IsSystem {
		var storeIDs []uint
		if err := s.db.Model(&models.Store{}).Order("id").Pluck("id", &storeIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to load stores: %w", err)
		}

		v := synthesizeSystemView(&g, storeIDs)

		return &v, nil
	}

	return s.buildView(s.db, &g)
}

// CreateGroup persists a new group with its permission rows and returns the
// joined view. Store entries referencing unknown store ids are silently
// dropped; absent main permission keys default to false.
func (s *Service) CreateGroup(in *Input) (*View, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var exists int64
	if err := s.db.Model(&models.Group{}).Where("name = ?", in.Name).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}

	if exists > 0 {
		return nil, ErrDuplicateName
	}

	g := models.Group{Name: in.Name, Description: in.Description}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		if err := s.writeMainPermissions(tx, g.ID, in.MainPermissions); err != nil {
			return err
		}

		return s.writeStorePermissions(tx, g.ID, in.StorePermissions)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return s.GetGroupWithPermissions(g.ID)
}

// UpdateGroup replaces a group's fields and permission rows wholesale.
// A non-empty store permission input revokes every store it omits. On
// commit the store-list cache and the full permission cache are dropped.
func (s *Service) UpdateGroup(id uint, in *Input) (*View, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var g models.Group

	err := s.db.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load group %d: %w", id, err)
	}

	if g.IsSystem || in.Name == models.SystemGroupName {
		return nil, ErrSystemGroup
	}

	if in.Name != g.Name {
		var exists int64
		if err := s.db.Model(&models.Group{}).Where("name = ?", in.Name).Count(&exists).Error; err != nil {
			return nil, fmt.Errorf("failed to check group name: %w", err)
		}

		if exists > 0 {
			return nil, ErrDuplicateName
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"name": in.Name, "description": in.Description}
		if err := tx.Model(&g).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}

		// main permissions replace wholesale
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear main permissions: %w", err)
		}

		if err := s.writeMainPermissions(tx, id, in.MainPermissions); err != nil {
			return err
		}

		// store permissions replace wholesale, but only when the caller sent any
		if len(in.StorePermissions) > 0 {
			if err := tx.Where("group_id = ?", id).Delete(&models.GroupStorePermission{}).Error; err != nil {
				return fmt.Errorf("failed to clear store permissions: %w", err)
			}

			if err := s.writeStorePermissions(tx, id, in.StorePermissions); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return s.GetGroupWithPermissions(id)
}

// UpdateGroupPermissions replaces only the permission rows of a group:
// main permissions wholesale, store grants for the given store ids.
func (s *Service) UpdateGroupPermissions(
	id uint,
	mainPermissions map[string]Flag,
	permittedStores []uint,
	storePermissions []StorePermissionInput,
) (*View, error) {
	var g models.Group

	err := s.db.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load group %d: %w", id, err)
	}

	if g.IsSystem {
		return nil, ErrSystemGroup
	}

	// permitted_stores without explicit feature grants means plain membership
	byStore := make(map[uint]StorePermissionInput, len(storePermissions))
	for _, sp := range storePermissions {
		byStore[sp.StoreID] = sp
	}

	for _, storeID := range permittedStores {
		if _, ok := byStore[storeID]; !ok {
			byStore[storeID] = StorePermissionInput{StoreID: storeID}
		}
	}

	merged := make([]StorePermissionInput, 0, len(byStore))
	for _, sp := range byStore {
		merged = append(merged, sp)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear main permissions: %w", err)
		}

		if err := s.writeMainPermissions(tx, id, mainPermissions); err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.GroupStorePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear store permissions: %w", err)
		}

		return s.writeStorePermissions(tx, id, merged)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate()

	return s.GetGroupWithPermissions(id)
}

// DeleteGroup removes a group; its permission rows cascade.
func (s *Service) DeleteGroup(id uint) error {
	var g models.Group

	err := s.db.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to load group %d: %w", id, err)
	}

	if g.IsSystem {
		return ErrSystemGroup
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// explicit cascade keeps SQLite test databases honest about the FK
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete main permissions: %w", err)
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.GroupStorePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete store permissions: %w", err)
		}

		if err := tx.Delete(&models.Group{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate()

	return nil
}

// writeMainPermissions inserts one row per known permission key. Unknown
// keys in the payload are dropped.
func (s *Service) writeMainPermissions(tx *gorm.DB, groupID uint, perms map[string]Flag) error {
	for _, key := range models.MainPermissionTypes {
		value, ok := perms[key]
		if !ok {
			continue
		}

		row := models.GroupPermission{
			GroupID:         groupID,
			PermissionType:  key,
			PermissionValue: value.Bool(),
		}

		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to write main permission %s: %w", key, err)
		}
	}

	return nil
}

// writeStorePermissions inserts one row per entry whose store id resolves.
// Entries referencing unknown stores are dropped, not failed: the frontend
// may hold a stale store list.
func (s *Service) writeStorePermissions(tx *gorm.DB, groupID uint, perms []StorePermissionInput) error {
	if len(perms) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(perms))
	for _, sp := range perms {
		ids = append(ids, sp.StoreID)
	}

	var known []uint
	if err := tx.Model(&models.Store{}).Where("id IN ?", ids).Pluck("id", &known).Error; err != nil {
		return fmt.Errorf("failed to validate store ids: %w", err)
	}

	knownSet := make(map[uint]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}

	for _, sp := range perms {
		if !knownSet[sp.StoreID] {
			log.Warn().Uint("group_id", groupID).Uint("store_id", sp.StoreID).
				Msg("dropping permission entry for unknown store")

			continue
		}

		row := models.GroupStorePermission{
			GroupID: groupID,
			StoreID: sp.StoreID,
			Features: models.Features{
				Inventory:  sp.Inventory.Bool(),
				Orders:     sp.Orders.Bool(),
				RMA:        sp.RMA.Bool(),
				Outbound:   sp.Outbound.Bool(),
				BulkSelect: sp.BulkSelect.Bool(),
			},
		}

		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to write store permission for store %d: %w", sp.StoreID, err)
		}
	}

	return nil
}

// buildView assembles the derived permission maps for a non-system group.
func (s *Service) buildView(db *gorm.DB, g *models.Group) (*View, error) {
	v := &View{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		IsSystem:         g.IsSystem,
		PermittedStores:  []uint{},
		MainPermissions:  make(map[string]bool, len(models.MainPermissionTypes)),
		StorePermissions: make(map[uint]models.Features),
	}

	for _, key := range models.MainPermissionTypes {
		v.MainPermissions[key] = false
	}

	var mains []models.GroupPermission
	if err := db.Where("group_id = ?", g.ID).Find(&mains).Error; err != nil {
		return nil, fmt.Errorf("failed to load main permissions: %w", err)
	}

	for _, p := range mains {
		v.MainPermissions[p.PermissionType] = p.PermissionValue
	}

	var grants []models.GroupStorePermission
	if err := db.Where("group_id = ?", g.ID).Order("store_id").Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to load store permissions: %w", err)
	}

	for _, sp := range grants {
		v.PermittedStores = append(v.PermittedStores, sp.StoreID)
		v.StorePermissions[sp.StoreID] = sp.Features
	}

	return v, nil
}

func synthesizeSystemView(g *models.Group, storeIDs []uint) View {
	v := View{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		IsSystem:         true,
		PermittedStores:  append([]uint{}, storeIDs...),
		MainPermissions:  make(map[string]bool, len(models.MainPermissionTypes)),
		StorePermissions: make(map[uint]models.Features, len(storeIDs)),
	}

	for _, key := range models.MainPermissionTypes {
		v.MainPermissions[key] = true
	}

	for _, id := range storeIDs {
		v.StorePermissions[id] = models.FullGrant()
	}

	return v
}

// invalidate drops every cache a permission write can affect.
func (s *Service) invalidate() {
	s.cache.ClearStoreListCache()
	s.cache.ClearAllPermissionsCache()
}
