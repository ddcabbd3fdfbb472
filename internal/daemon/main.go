// Package daemon wires the process together: database, migrations, seed
// data, cache and the web service.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/cache"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/dsn"
	"github.com/storehub/storehub/internal/db/models"
	"github.com/storehub/storehub/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormpostgres.Open(dsn.Create(cfg))

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupPermission{},
		&models.GroupStorePermission{},
		&models.Store{},
		&models.InventoryRecord{},
		&models.StoreItem{},
		&models.ItemLocation{},
		&models.StoreRMA{},
		&models.InventoryRMA{},
		&models.RMAHistory{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	return &Daemon{
		webService: web.New(cfg, db, cache.New(cache.DefaultTokenTTL)),
		cfg:        cfg,
	}
}
