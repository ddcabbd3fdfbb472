package daemon

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rs/zerolog/log"

	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/models"
)

// seed creates the built-in admin group and the initial admin user when
// the database is empty. The admin group carries IsSystem and gets every
// permission synthesized at resolve time; no permission rows are written
// for it.
func seed(_ *config.Config, db *gorm.DB) {
	var admin models.Group

	err := db.Where("name = ?", models.SystemGroupName).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		admin = models.Group{
			Name:        models.SystemGroupName,
			Description: "Built-in administrator group",
			IsSystem:    true,
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin group")
		}
	} else if err != nil {
		log.Fatal().Err(err).Msg("failed to read admin group")
	}

	var stores int64
	db.Model(&models.Store{}).Count(&stores)

	if stores == 0 {
		if err := db.Create(&models.Store{Name: "Main Store", Active: true}).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to seed initial store")
		}
	}

	var count int64
	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		// change the password after the first login
		db.Create(
			&models.User{
				Username: "admin",
				Password: models.HashPassword("changeme"),
				Active:   true,
				GroupID:  &admin.ID,
			},
		)

		log.Info().Msg("seeded initial admin user")
	}
}
