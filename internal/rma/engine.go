package rma

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storehub/storehub/internal/db/models"
)

// Actor identifies who drives a transition. System is true for members
// of the built-in admin group; deletions are restricted to them.
type Actor struct {
	ID     uint64
	System bool
}

// UpdateInput is a partial update of an inventory RMA. Nil fields are
// left unchanged. Diagnosis and Solution may only change while the item
// is in process status; Notes may change at any stage.
type UpdateInput struct {
	Diagnosis *string `json:"diagnosis"`
	Solution  *string `json:"solution"`
	Notes     *string `json:"notes"`
}

// Engine drives the RMA lifecycle. Every transition runs in one
// transaction: it locks the row being moved, applies the event through
// State.Apply, writes both sides of the mirror and appends one history
// row.
type Engine struct {
	db *gorm.DB
}

// NewEngine returns an Engine backed by the given database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite
// serializes writers at the database level and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	return tx
}

// CreateItem opens a store-side RMA for a device in the store's stock.
// The item stays in stock until it is sent to inventory.
func (e *Engine) CreateItem(storeID, recordID uint, reason, notes string) (*models.StoreRMA, error) {
	var item models.StoreRMA

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var stock models.StoreItem
		if err := tx.Where("store_id = ? AND record_id = ?", storeID, recordID).
			First(&stock).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}

			return errors.Wrap(err, "loading store stock")
		}

		// one live RMA per device: terminal rows (sent_to_store, failed) don't count
		var open int64
		if err := tx.Model(&models.StoreRMA{}).
			Where("store_id = ? AND record_id = ? AND store_status NOT IN ?",
				storeID, recordID, []string{StoreSentToStore, StoreFailed}).
			Count(&open).Error; err != nil {
			return errors.Wrap(err, "checking open RMAs")
		}
		if open > 0 {
			return ErrOpenRMAExists
		}

		item = models.StoreRMA{
			StoreID:      storeID,
			RecordID:     recordID,
			Reason:       reason,
			Notes:        notes,
			StoreStatus:  StorePending,
			LocationType: LocationStore,
		}

		if err := tx.Create(&item).Error; err != nil {
			return errors.Wrap(err, "creating store RMA")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// SendToInventory hands a pending store RMA over to inventory: the item
// leaves the store's stock, an inventory-side row is opened in receive
// status and the location moves to inventory.
func (e *Engine) SendToInventory(storeID, rmaID uint, actor Actor) (*models.StoreRMA, error) {
	var item models.StoreRMA

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Record").Preload("Store").
			Where("id = ? AND store_id = ?", rmaID, storeID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return errors.Wrap(err, "loading store RMA")
		}

		next, err := stateOf(&item).Apply(EventSendToInventory)
		if err != nil {
			return err
		}

		now := time.Now()

		inv := models.InventoryRMA{
			StoreRMAID:       &item.ID,
			StoreID:          item.StoreID,
			RecordID:         item.RecordID,
			SerialNumber:     item.Record.SerialNumber,
			Model:            item.Record.Model,
			Manufacturer:     item.Record.Manufacturer,
			StoreName:        item.Store.Name,
			IssueDescription: item.Reason,
			Status:           next.Inventory,
			Notes:            item.Notes,
			CreatedBy:        actor.ID,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return errors.Wrap(err, "creating inventory RMA")
		}

		item.StoreStatus = next.Store
		item.InventoryStatus = next.Inventory
		item.LocationType = next.Location
		item.ReceivedAt = &now
		if err := tx.Save(&item).Error; err != nil {
			return errors.Wrap(err, "updating store RMA")
		}

		if err := tx.Where("store_id = ? AND record_id = ?", item.StoreID, item.RecordID).
			Delete(&models.StoreItem{}).Error; err != nil {
			return errors.Wrap(err, "removing store stock")
		}

		if err := upsertLocation(tx, item.Record.SerialNumber, LocationInventory, nil, ""); err != nil {
			return err
		}

		return appendHistory(tx, inv.ID, EventSendToInventory, "", next.Inventory, nil, item.Notes, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// ProcessItem moves an inventory RMA from receive to process and records
// the diagnosis.
func (e *Engine) ProcessItem(id uint, actor Actor, diagnosis string) (*models.InventoryRMA, error) {
	if diagnosis == "" {
		return nil, ErrDiagnosisRequired
	}

	return e.transition(id, EventProcess, func(inv *models.InventoryRMA, store *models.StoreRMA, now time.Time) map[string]any {
		inv.Diagnosis = diagnosis
		inv.ProcessedAt = &now
		inv.ProcessedBy = &actor.ID
		if store != nil {
			store.Diagnosis = diagnosis
			store.ProcessedAt = &now
		}

		return map[string]any{"diagnosis": diagnosis}
	}, actor)
}

// CompleteItem moves an inventory RMA from process to complete and
// records the solution.
func (e *Engine) CompleteItem(id uint, actor Actor, solution string) (*models.InventoryRMA, error) {
	if solution == "" {
		return nil, ErrSolutionRequired
	}

	return e.transition(id, EventComplete, func(inv *models.InventoryRMA, store *models.StoreRMA, now time.Time) map[string]any {
		inv.Solution = solution
		inv.CompletedAt = &now
		inv.CompletedBy = &actor.ID
		if store != nil {
			store.Solution = solution
			store.CompletedAt = &now
		}

		return map[string]any{"solution": solution}
	}, actor)
}

// FailItem marks an inventory RMA as failed from receive or process
// status and records the failure reason.
func (e *Engine) FailItem(id uint, actor Actor, reason string) (*models.InventoryRMA, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	return e.transition(id, EventFail, func(inv *models.InventoryRMA, store *models.StoreRMA, now time.Time) map[string]any {
		inv.FailedReason = reason
		inv.FailedAt = &now
		inv.FailedBy = &actor.ID
		if store != nil {
			store.FailedReason = reason
			store.FailedAt = &now
		}

		return map[string]any{"failed_reason": reason}
	}, actor)
}

// SendToStore returns a completed RMA item to the store's stock. The
// stock row is recreated and the location moves back to the store.
func (e *Engine) SendToStore(storeID, rmaID uint, actor Actor) (*models.StoreRMA, error) {
	var item models.StoreRMA

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Record").Preload("Store").
			Where("id = ? AND store_id = ?", rmaID, storeID).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return errors.Wrap(err, "loading store RMA")
		}

		next, err := stateOf(&item).Apply(EventSendToStore)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.StoreItem{}).
			Where("store_id = ? AND record_id = ?", item.StoreID, item.RecordID).
			Count(&existing).Error; err != nil {
			return errors.Wrap(err, "checking store stock")
		}
		if existing > 0 {
			return ErrAlreadyInStock
		}

		now := time.Now()

		stock := models.StoreItem{
			StoreID:    item.StoreID,
			RecordID:   item.RecordID,
			ReceivedAt: now,
		}
		if err := tx.Create(&stock).Error; err != nil {
			return errors.Wrap(err, "restoring store stock")
		}

		item.StoreStatus = next.Store
		item.InventoryStatus = next.Inventory
		item.LocationType = next.Location
		item.SentToStoreAt = &now
		if err := tx.Save(&item).Error; err != nil {
			return errors.Wrap(err, "updating store RMA")
		}

		if err := upsertLocation(tx, item.Record.SerialNumber, LocationStore, &item.StoreID, item.Store.Name); err != nil {
			return err
		}

		var inv models.InventoryRMA
		if err := tx.Where("store_rma_id = ?", item.ID).First(&inv).Error; err == nil {
			return appendHistory(tx, inv.ID, EventSendToStore, inv.Status, inv.Status, nil, "", actor.ID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(err, "loading inventory RMA")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// UpdateItem patches an inventory RMA. Diagnosis and solution are only
// writable while the item is in process status.
func (e *Engine) UpdateItem(id uint, actor Actor, input UpdateInput) (*models.InventoryRMA, error) {
	var item models.InventoryRMA

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return errors.Wrap(err, "loading inventory RMA")
		}

		if (input.Diagnosis != nil || input.Solution != nil) && item.Status != InventoryProcess {
			return ErrUpdateRestricted
		}

		changed := map[string]any{}
		if input.Diagnosis != nil && *input.Diagnosis != item.Diagnosis {
			changed["diagnosis"] = map[string]string{"old": item.Diagnosis, "new": *input.Diagnosis}
			item.Diagnosis = *input.Diagnosis
		}
		if input.Solution != nil && *input.Solution != item.Solution {
			changed["solution"] = map[string]string{"old": item.Solution, "new": *input.Solution}
			item.Solution = *input.Solution
		}
		if input.Notes != nil && *input.Notes != item.Notes {
			changed["notes"] = map[string]string{"old": item.Notes, "new": *input.Notes}
			item.Notes = *input.Notes
		}

		if len(changed) == 0 {
			return nil
		}

		if err := tx.Save(&item).Error; err != nil {
			return errors.Wrap(err, "updating inventory RMA")
		}

		if item.StoreRMAID != nil {
			mirror := map[string]any{}
			if input.Diagnosis != nil {
				mirror["diagnosis"] = item.Diagnosis
			}
			if input.Solution != nil {
				mirror["solution"] = item.Solution
			}
			if len(mirror) > 0 {
				if err := tx.Model(&models.StoreRMA{}).Where("id = ?", *item.StoreRMAID).
					Updates(mirror).Error; err != nil {
					return errors.Wrap(err, "mirroring store RMA")
				}
			}
		}

		return appendHistory(tx, item.ID, "update", item.Status, item.Status, changed, "", actor.ID)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// DeleteItem removes an inventory RMA. Only admin users may delete;
// history rows are kept for audit.
func (e *Engine) DeleteItem(id uint, actor Actor) error {
	if !actor.System {
		return ErrAdminOnly
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryRMA
		if err := lockForUpdate(tx).First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return errors.Wrap(err, "loading inventory RMA")
		}

		if err := appendHistory(tx, item.ID, "delete", item.Status, "", nil, "", actor.ID); err != nil {
			return err
		}

		if err := tx.Delete(&item).Error; err != nil {
			return errors.Wrap(err, "deleting inventory RMA")
		}

		return nil
	})
}

// transition runs one inventory-side event: lock, apply, mutate both
// sides through fill, save and append history.
func (e *Engine) transition(id uint, event string, fill func(*models.InventoryRMA, *models.StoreRMA, time.Time) map[string]any, actor Actor) (*models.InventoryRMA, error) {
	var item models.InventoryRMA

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return errors.Wrap(err, "loading inventory RMA")
		}

		var store *models.StoreRMA
		if item.StoreRMAID != nil {
			store = &models.StoreRMA{}
			if err := tx.First(store, *item.StoreRMAID).Error; err != nil {
				return errors.Wrap(err, "loading store RMA")
			}
		}

		cur := State{Store: StoreSentToInventory, Inventory: item.Status, Location: LocationInventory}
		if store != nil {
			cur = State{Store: store.StoreStatus, Inventory: store.InventoryStatus, Location: store.LocationType}
		}

		next, err := cur.Apply(event)
		if err != nil {
			return err
		}

		old := item.Status
		now := time.Now()

		changed := fill(&item, store, now)
		item.Status = next.Inventory

		if err := tx.Save(&item).Error; err != nil {
			return errors.Wrap(err, "updating inventory RMA")
		}

		if store != nil {
			store.StoreStatus = next.Store
			store.InventoryStatus = next.Inventory
			store.LocationType = next.Location
			if err := tx.Save(store).Error; err != nil {
				return errors.Wrap(err, "updating store RMA")
			}
		}

		return appendHistory(tx, item.ID, event, old, next.Inventory, changed, "", actor.ID)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// stateOf reads the state triple off a store-side row.
func stateOf(item *models.StoreRMA) State {
	return State{Store: item.StoreStatus, Inventory: item.InventoryStatus, Location: item.LocationType}
}

// appendHistory writes one audit row for a transition.
func appendHistory(tx *gorm.DB, rmaID uint, action, oldStatus, newStatus string, changed map[string]any, notes string, actor uint64) error {
	var fields string
	if len(changed) > 0 {
		raw, err := json.Marshal(changed)
		if err != nil {
			return errors.Wrap(err, "encoding changed fields")
		}
		fields = string(raw)
	}

	entry := models.RMAHistory{
		RMAID:         rmaID,
		Action:        action,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		ChangedFields: fields,
		Notes:         notes,
		CreatedBy:     actor,
	}

	return errors.Wrap(tx.Create(&entry).Error, "appending RMA history")
}

// upsertLocation records the last known location of a device.
func upsertLocation(tx *gorm.DB, serial, location string, storeID *uint, storeName string) error {
	loc := models.ItemLocation{
		SerialNumber: serial,
		Location:     location,
		StoreID:      storeID,
		StoreName:    storeName,
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "serialnumber"}},
		UpdateAll: true,
	}).Create(&loc).Error

	return errors.Wrap(err, "updating item location")
}
