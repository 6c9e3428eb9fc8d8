package repositories

import (
	"context"
	"errors"
	"fmt"

	domainerrors "consortial/internal/errors"
	"consortial/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BandRepository defines the database operations for fee bands.
type BandRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Band, error)
	Create(ctx context.Context, band *models.Band) error
	Update(ctx context.Context, band *models.Band) error

	// FindDuplicate returns the latest band matching the dedup key, or nil.
	FindDuplicate(ctx context.Context, key models.DedupKey) (*models.Band, error)
	// ListBase returns every base band, newest first, with its dimensions loaded.
	ListBase(ctx context.Context) ([]models.Band, error)

	ExecuteInTransaction(ctx context.Context, fn func(BandRepository) error) error
}

type bandRepository struct {
	db *gorm.DB
}

func NewBandRepository(db *gorm.DB) BandRepository {
	return &bandRepository{db: db}
}

// preloadBand loads a band's dimensions; prefix addresses a nested band
// association such as "Band.".
func preloadBand(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix + "Size").
		Preload(prefix + "Level").
		Preload(prefix + "Currency").
		Preload(prefix + "BillingAgent")
}

func (r *bandRepository) GetByID(ctx context.Context, id uint) (*models.Band, error) {
	var band models.Band
	if err := preloadBand(r.db.WithContext(ctx), "").First(&band, id).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrBandNotFound.Withf("id %d", id), "get band")
	}
	return &band, nil
}

func (r *bandRepository) Create(ctx context.Context, band *models.Band) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(band).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateBand
	}
	if err != nil {
		return fmt.Errorf("failed to create band: %w", err)
	}
	return nil
}

func (r *bandRepository) Update(ctx context.Context, band *models.Band) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(band)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateBand
	}
	if result.Error != nil {
		return fmt.Errorf("failed to update band: %w", result.Error)
	}
	return nil
}

func (r *bandRepository) FindDuplicate(ctx context.Context, key models.DedupKey) (*models.Band, error) {
	q := r.db.WithContext(ctx).Where(
		"size_id = ? AND level_id = ? AND country = ? AND currency_id = ? AND category = ? AND warnings = ? AND year = ?",
		key.SizeID, key.LevelID, key.Country, key.CurrencyID, key.Category, key.Warnings, key.Year,
	)
	if key.BillingAgentID == nil {
		q = q.Where("billing_agent_id IS NULL")
	} else {
		q = q.Where("billing_agent_id = ?", *key.BillingAgentID)
	}
	if key.Fee == nil {
		q = q.Where("fee IS NULL")
	} else {
		q = q.Where("fee = ?", *key.Fee)
	}

	var band models.Band
	err := preloadBand(q, "").Order("datetime DESC").Order("id DESC").First(&band).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up duplicate band: %w", err)
	}
	return &band, nil
}

func (r *bandRepository) ListBase(ctx context.Context) ([]models.Band, error) {
	var bands []models.Band
	err := preloadBand(r.db.WithContext(ctx), "").
		Where("category = ?", models.CategoryBase).
		Order("datetime DESC").
		Order("id DESC").
		Find(&bands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list base bands: %w", err)
	}
	return bands, nil
}

func (r *bandRepository) ExecuteInTransaction(ctx context.Context, fn func(BandRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&bandRepository{db: tx})
	})
}
