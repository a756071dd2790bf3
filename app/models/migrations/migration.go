package migrations

import (
	"github.com/Rakhulsr/storefront/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.PricingSettings{},
		&models.Order{},
		&models.OrderItem{},
	)
}
