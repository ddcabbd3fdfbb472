package rma

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/db/models"
)

// ListStoreItems returns all store-side RMA rows of one store, newest
// first, with the device record preloaded.
func (e *Engine) ListStoreItems(storeID uint) ([]models.StoreRMA, error) {
	var items []models.StoreRMA

	err := e.db.Preload("Record").
		Where("store_id = ?", storeID).
		Order("rma_date DESC").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing store RMAs")
	}

	return items, nil
}

// GetStoreItem returns one store-side RMA row scoped to its store.
func (e *Engine) GetStoreItem(storeID, rmaID uint) (*models.StoreRMA, error) {
	var item models.StoreRMA

	err := e.db.Preload("Record").Preload("Store").
		Where("id = ? AND store_id = ?", rmaID, storeID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "loading store RMA")
	}

	return &item, nil
}

// ListInventoryItems returns inventory-side RMA rows, optionally
// filtered by status, newest first with offset pagination.
func (e *Engine) ListInventoryItems(status string, page, limit int) ([]models.InventoryRMA, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := e.db.Model(&models.InventoryRMA{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "counting inventory RMAs")
	}

	var items []models.InventoryRMA
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing inventory RMAs")
	}

	return items, total, nil
}

// GetInventoryItem returns one inventory-side RMA row.
func (e *Engine) GetInventoryItem(id uint) (*models.InventoryRMA, error) {
	var item models.InventoryRMA

	err := e.db.First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "loading inventory RMA")
	}

	return &item, nil
}

// GetHistory returns the audit trail of one inventory RMA, oldest first.
func (e *Engine) GetHistory(id uint) ([]models.RMAHistory, error) {
	var entries []models.RMAHistory

	err := e.db.Where("rma_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "loading RMA history")
	}

	return entries, nil
}
