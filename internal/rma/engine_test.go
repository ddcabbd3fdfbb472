package rma

import (
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Store{},
		&models.InventoryRecord{},
		&models.StoreItem{},
		&models.ItemLocation{},
		&models.StoreRMA{},
		&models.InventoryRMA{},
		&models.RMAHistory{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedStock creates a store, a device record and a stock row linking them.
func seedStock(t *testing.T, db *gorm.DB) (store models.Store, record models.InventoryRecord) {
	t.Helper()

	store = models.Store{Name: "Downtown", Active: true}
	require.NoError(t, db.Create(&store).Error)

	record = models.InventoryRecord{
		SerialNumber: "SN-1001",
		Model:        "ThinkPad T14",
		Manufacturer: "Lenovo",
		IsCurrent:    true,
	}
	require.NoError(t, db.Create(&record).Error)

	require.NoError(t, db.Create(&models.StoreItem{
		StoreID:  store.ID,
		RecordID: record.ID,
	}).Error)

	return store, record
}

var (
	clerk = Actor{ID: 7}
	admin = Actor{ID: 1, System: true}
)

func TestCreateItem(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, record := seedStock(t, db)

	item, err := engine.CreateItem(store.ID, record.ID, "screen flickers", "customer report")
	require.NoError(t, err)

	assert.Equal(t, StorePending, item.StoreStatus)
	assert.Equal(t, "", item.InventoryStatus)
	assert.Equal(t, LocationStore, item.LocationType)
	assert.Equal(t, "screen flickers", item.Reason)

	// the item stays in stock while pending
	var stock int64
	require.NoError(t, db.Model(&models.StoreItem{}).
		Where("store_id = ? AND record_id = ?", store.ID, record.ID).Count(&stock).Error)
	assert.EqualValues(t, 1, stock)
}

func TestCreateItemUnknownDevice(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, _ := seedStock(t, db)

	_, err := engine.CreateItem(store.ID, 9999, "broken", "")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCreateItemRejectsOpenRMA(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, record := seedStock(t, db)

	item, err := engine.CreateItem(store.ID, record.ID, "screen flickers", "")
	require.NoError(t, err)

	// the first RMA is still pending, a second intake for the same device is rejected
	_, err = engine.CreateItem(store.ID, record.ID, "also broken", "")
	assert.ErrorIs(t, err, ErrOpenRMAExists)

	var open int64
	require.NoError(t, db.Model(&models.StoreRMA{}).
		Where("store_id = ? AND record_id = ?", store.ID, record.ID).Count(&open).Error)
	assert.EqualValues(t, 1, open)

	// drive the first RMA to a terminal state and the device back into stock
	_, err = engine.SendToInventory(store.ID, item.ID, clerk)
	require.NoError(t, err)

	var inv models.InventoryRMA
	require.NoError(t, db.Where("store_rma_id = ?", item.ID).First(&inv).Error)

	_, err = engine.ProcessItem(inv.ID, clerk, "dead PSU")
	require.NoError(t, err)
	_, err = engine.CompleteItem(inv.ID, clerk, "replaced PSU")
	require.NoError(t, err)
	_, err = engine.SendToStore(store.ID, item.ID, clerk)
	require.NoError(t, err)

	// terminal rows don't block a fresh intake
	_, err = engine.CreateItem(store.ID, record.ID, "broke again", "")
	assert.NoError(t, err)
}

func TestSendToInventory(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, record := seedStock(t, db)

	item, err := engine.CreateItem(store.ID, record.ID, "screen flickers", "")
	require.NoError(t, err)

	sent, err := engine.SendToInventory(store.ID, item.ID, clerk)
	require.NoError(t, err)

	assert.Equal(t, StoreSentToInventory, sent.StoreStatus)
	assert.Equal(t, InventoryReceive, sent.InventoryStatus)
	assert.Equal(t, LocationInventory, sent.LocationType)
	require.NotNil(t, sent.ReceivedAt)

	// stock row is gone
	var stock int64
	require.NoError(t, db.Model(&models.StoreItem{}).
		Where("store_id = ? AND record_id = ?", store.ID, record.ID).Count(&stock).Error)
	assert.EqualValues(t, 0, stock)

	// inventory row opened with denormalized device data
	var inv models.InventoryRMA
	require.NoError(t, db.Where("store_rma_id = ?", item.ID).First(&inv).Error)
	assert.Equal(t, InventoryReceive, inv.Status)
	assert.Equal(t, "SN-1001", inv.SerialNumber)
	assert.Equal(t, "Downtown", inv.StoreName)
	assert.Equal(t, "screen flickers", inv.IssueDescription)
	assert.Equal(t, clerk.ID, inv.CreatedBy)

	// location tracks the move
	var loc models.ItemLocation
	require.NoError(t, db.First(&loc, "serialnumber = ?", "SN-1001").Error)
	assert.Equal(t, LocationInventory, loc.Location)

	// one history row for the hand-off
	history, err := engine.GetHistory(inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, EventSendToInventory, history[0].Action)
	assert.Equal(t, "", history[0].OldStatus)
	assert.Equal(t, InventoryReceive, history[0].NewStatus)
}

func TestSendToInventoryRequiresPending(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, record := seedStock(t, db)

	item, err := engine.CreateItem(store.ID, record.ID, "broken", "")
	require.NoError(t, err)

	_, err = engine.SendToInventory(store.ID, item.ID, clerk)
	require.NoError(t, err)

	_, err = engine.SendToInventory(store.ID, item.ID, clerk)
	require.Error(t, err)
	assert.True(t, IsInvalidTransition(err))
	assert.EqualError(t, err, "Invalid status transition from sent_to_inventory to sent_to_inventory")
}

func TestSendToInventoryScopedToStore(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, record := seedStock(t, db)

	other := models.Store{Name: "Uptown", Active: true}
	require.NoError(t, db.Create(&other).Error)

	item, err := engine.CreateItem(store.ID, record.ID, "broken", "")
	require.NoError(t, err)

	_, err = engine.SendToInventory(other.ID, item.ID, clerk)
	assert.ErrorIs(t, err, ErrNotFound)
}

// receivedItem drives a fresh RMA to receive status and returns the
// inventory-side row.
func receivedItem(t *testing.T, db *gorm.DB, engine *Engine) (models.Store, models.InventoryRMA) {
	t.Helper()

	store, record := seedStock(t, db)

	item, err := engine.CreateItem(store.ID, record.ID, "screen flickers", "")
	require.NoError(t, err)

	_, err = engine.SendToInventory(store.ID, item.ID, clerk)
	require.NoError(t, err)

	var inv models.InventoryRMA
	require.NoError(t, db.Where("store_rma_id = ?", item.ID).First(&inv).Error)

	return store, inv
}

func TestProcessItem(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	got, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.NoError(t, err)

	assert.Equal(t, InventoryProcess, got.Status)
	assert.Equal(t, "bad display cable", got.Diagnosis)
	require.NotNil(t, got.ProcessedAt)
	require.NotNil(t, got.ProcessedBy)
	assert.Equal(t, clerk.ID, *got.ProcessedBy)

	// diagnosis and status are mirrored on the store side
	var store models.StoreRMA
	require.NoError(t, db.First(&store, *got.StoreRMAID).Error)
	assert.Equal(t, InventoryProcess, store.InventoryStatus)
	assert.Equal(t, "bad display cable", store.Diagnosis)
	assert.Equal(t, StoreSentToInventory, store.StoreStatus)
}

func TestProcessItemRequiresDiagnosis(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(inv.ID, clerk, "")
	assert.ErrorIs(t, err, ErrDiagnosisRequired)
}

func TestProcessItemTwice(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.NoError(t, err)

	_, err = engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.Error(t, err)
	assert.EqualError(t, err, "Can only process RMA items in receive status")
}

func TestProcessItemConcurrent(t *testing.T) {
	db := setupTestDB(t)

	// a single connection serializes the two transactions, standing in for
	// the row lock the postgres dialect takes
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	errs := make(chan error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}

		require.True(t, IsInvalidTransition(err), "unexpected error: %v", err)
		rejected++
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)

	// one history row for the hand-off plus one for the single process
	history, err := engine.GetHistory(inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCompleteItem(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.NoError(t, err)

	got, err := engine.CompleteItem(inv.ID, clerk, "replaced cable")
	require.NoError(t, err)

	assert.Equal(t, InventoryComplete, got.Status)
	assert.Equal(t, "replaced cable", got.Solution)

	var store models.StoreRMA
	require.NoError(t, db.First(&store, *got.StoreRMAID).Error)
	assert.Equal(t, StoreCompleted, store.StoreStatus)
	assert.Equal(t, InventoryComplete, store.InventoryStatus)
	assert.Equal(t, "replaced cable", store.Solution)
	// still physically at inventory until sent back
	assert.Equal(t, LocationInventory, store.LocationType)
}

func TestCompleteItemBeforeProcessing(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	_, err := engine.CompleteItem(inv.ID, clerk, "replaced cable")
	require.Error(t, err)
	assert.EqualError(t, err, "Can only complete RMA items in process status")
}

func TestFailItem(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)

	t.Run("from receive", func(t *testing.T) {
		_, inv := receivedItem(t, db, engine)

		got, err := engine.FailItem(inv.ID, clerk, "water damage, beyond repair")
		require.NoError(t, err)

		assert.Equal(t, InventoryFailed, got.Status)
		assert.Equal(t, "water damage, beyond repair", got.FailedReason)

		var store models.StoreRMA
		require.NoError(t, db.First(&store, *got.StoreRMAID).Error)
		assert.Equal(t, StoreFailed, store.StoreStatus)
	})

	t.Run("from process", func(t *testing.T) {
		_, inv := receivedItem(t, db, engine)

		_, err := engine.ProcessItem(inv.ID, clerk, "mainboard dead")
		require.NoError(t, err)

		got, err := engine.FailItem(inv.ID, clerk, "no spare parts")
		require.NoError(t, err)
		assert.Equal(t, InventoryFailed, got.Status)
	})

	t.Run("from complete", func(t *testing.T) {
		_, inv := receivedItem(t, db, engine)

		_, err := engine.ProcessItem(inv.ID, clerk, "mainboard dead")
		require.NoError(t, err)
		_, err = engine.CompleteItem(inv.ID, clerk, "swapped mainboard")
		require.NoError(t, err)

		_, err = engine.FailItem(inv.ID, clerk, "changed my mind")
		require.Error(t, err)
		assert.EqualError(t, err, "Can only fail RMA items in receive or process status")
	})

	t.Run("requires reason", func(t *testing.T) {
		_, inv := receivedItem(t, db, engine)

		_, err := engine.FailItem(inv.ID, clerk, "")
		assert.ErrorIs(t, err, ErrReasonRequired)
	})
}

func TestSendToStore(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, inv := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.NoError(t, err)
	_, err = engine.CompleteItem(inv.ID, clerk, "replaced cable")
	require.NoError(t, err)

	got, err := engine.SendToStore(store.ID, *inv.StoreRMAID, clerk)
	require.NoError(t, err)

	assert.Equal(t, StoreSentToStore, got.StoreStatus)
	assert.Equal(t, InventoryComplete, got.InventoryStatus)
	assert.Equal(t, LocationStore, got.LocationType)
	require.NotNil(t, got.SentToStoreAt)

	// stock row is back
	var stock int64
	require.NoError(t, db.Model(&models.StoreItem{}).
		Where("store_id = ? AND record_id = ?", got.StoreID, got.RecordID).Count(&stock).Error)
	assert.EqualValues(t, 1, stock)

	// location follows
	var loc models.ItemLocation
	require.NoError(t, db.First(&loc, "serialnumber = ?", "SN-1001").Error)
	assert.Equal(t, LocationStore, loc.Location)
	require.NotNil(t, loc.StoreID)
	assert.Equal(t, got.StoreID, *loc.StoreID)
}

func TestSendToStoreRequiresCompleted(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, inv := receivedItem(t, db, engine)

	_, err := engine.SendToStore(store.ID, *inv.StoreRMAID, clerk)
	require.Error(t, err)
	assert.EqualError(t, err, "Only completed RMA items can be sent back to store inventory")
}

func TestSendToStoreItemAlreadyInStock(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, inv := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.NoError(t, err)
	_, err = engine.CompleteItem(inv.ID, clerk, "replaced cable")
	require.NoError(t, err)

	// the device reappeared in stock, e.g. through a manual correction
	require.NoError(t, db.Create(&models.StoreItem{
		StoreID:  store.ID,
		RecordID: inv.RecordID,
	}).Error)

	_, err = engine.SendToStore(store.ID, *inv.StoreRMAID, clerk)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyInStock)

	// the rejected transition changed nothing
	var item models.StoreRMA
	require.NoError(t, db.First(&item, *inv.StoreRMAID).Error)
	assert.Equal(t, StoreCompleted, item.StoreStatus)
	assert.Equal(t, LocationInventory, item.LocationType)
}

func TestUpdateItem(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	t.Run("diagnosis outside processing", func(t *testing.T) {
		diag := "guessing"
		_, err := engine.UpdateItem(inv.ID, clerk, UpdateInput{Diagnosis: &diag})
		assert.ErrorIs(t, err, ErrUpdateRestricted)
	})

	t.Run("notes at any stage", func(t *testing.T) {
		notes := "customer called twice"
		got, err := engine.UpdateItem(inv.ID, clerk, UpdateInput{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, got.Notes)
	})

	t.Run("diagnosis during processing", func(t *testing.T) {
		_, err := engine.ProcessItem(inv.ID, clerk, "first guess")
		require.NoError(t, err)

		diag := "second guess"
		got, err := engine.UpdateItem(inv.ID, clerk, UpdateInput{Diagnosis: &diag})
		require.NoError(t, err)
		assert.Equal(t, diag, got.Diagnosis)

		// mirrored on the store side
		var store models.StoreRMA
		require.NoError(t, db.First(&store, *got.StoreRMAID).Error)
		assert.Equal(t, diag, store.Diagnosis)

		// the change is recorded with old and new values
		history, err := engine.GetHistory(inv.ID)
		require.NoError(t, err)
		last := history[len(history)-1]
		assert.Equal(t, "update", last.Action)
		assert.Contains(t, last.ChangedFields, "first guess")
		assert.Contains(t, last.ChangedFields, "second guess")
	})
}

func TestDeleteItem(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	_, inv := receivedItem(t, db, engine)

	err := engine.DeleteItem(inv.ID, clerk)
	assert.ErrorIs(t, err, ErrAdminOnly)

	require.NoError(t, engine.DeleteItem(inv.ID, admin))

	_, err = engine.GetInventoryItem(inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the audit trail survives the deletion
	history, err := engine.GetHistory(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "delete", history[len(history)-1].Action)
}

func TestHistoryCoversFullLifecycle(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	store, inv := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(inv.ID, clerk, "bad display cable")
	require.NoError(t, err)
	_, err = engine.CompleteItem(inv.ID, clerk, "replaced cable")
	require.NoError(t, err)
	_, err = engine.SendToStore(store.ID, *inv.StoreRMAID, clerk)
	require.NoError(t, err)

	history, err := engine.GetHistory(inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)

	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}

	assert.Equal(t, []string{
		EventSendToInventory,
		EventProcess,
		EventComplete,
		EventSendToStore,
	}, actions)
}

func TestListInventoryItems(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)

	_, first := receivedItem(t, db, engine)
	_, second := receivedItem(t, db, engine)

	_, err := engine.ProcessItem(second.ID, clerk, "dead battery")
	require.NoError(t, err)

	all, total, err := engine.ListInventoryItems("", 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	receiving, total, err := engine.ListInventoryItems(InventoryReceive, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, receiving, 1)
	assert.Equal(t, first.ID, receiving[0].ID)
}
