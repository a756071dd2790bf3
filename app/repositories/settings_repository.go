package repositories

import (
	"context"
	"errors"

	"github.com/Rakhulsr/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.PricingSettings, error)
	Save(ctx context.Context, settings *models.PricingSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get loads the settings row, creating it with defaults on first use. The row
// id is fixed so concurrent first reads converge on the same record.
func (r *settingsRepository) Get(ctx context.Context) (*models.PricingSettings, error) {
	var settings models.PricingSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", models.PricingSettingsID).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := models.DefaultPricingSettings()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(defaults).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).First(&settings, "id = ?", models.PricingSettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.PricingSettings) error {
	settings.ID = models.PricingSettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
