package seeders

import (
	"fmt"
	"log"

	"github.com/Rakhulsr/storefront/app/db/fakers"
	"github.com/Rakhulsr/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultCategories = []string{"Kitchen", "Living Room", "Garden", "Stationery"}

type Options struct {
	AdminEmail          string
	AdminPassword       string
	ProductsPerCategory int
	Customers           int
}

// DBSeed fills an empty store with demo data. Running it twice keeps a single
// admin, category set and settings row but adds more products and customers.
func DBSeed(db *gorm.DB, opts Options) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(models.DefaultPricingSettings()).Error; err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}

		if opts.AdminEmail != "" {
			admin, err := fakers.AdminUser(opts.AdminEmail, opts.AdminPassword)
			if err != nil {
				return err
			}
			if err := tx.Where("email = ?", admin.Email).FirstOrCreate(admin).Error; err != nil {
				return fmt.Errorf("failed to seed admin: %w", err)
			}
			log.Printf("INFO: seeder: admin %s ready", admin.Email)
		}

		for i := 0; i < opts.Customers; i++ {
			customer, err := fakers.CustomerFaker("password123")
			if err != nil {
				return err
			}
			if err := tx.Where("email = ?", customer.Email).FirstOrCreate(customer).Error; err != nil {
				return fmt.Errorf("failed to seed customer: %w", err)
			}
		}

		for _, name := range defaultCategories {
			category := fakers.CategoryFaker(name)
			if err := tx.Where("slug = ?", category.Slug).FirstOrCreate(category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", name, err)
			}
			for i := 0; i < opts.ProductsPerCategory; i++ {
				if err := tx.Create(fakers.ProductFaker(category)).Error; err != nil {
					return fmt.Errorf("failed to seed product: %w", err)
				}
			}
		}

		log.Printf("INFO: seeder: %d categories, %d products each", len(defaultCategories), opts.ProductsPerCategory)
		return nil
	})
}
