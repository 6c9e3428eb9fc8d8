package repositories

import (
	"context"
	"fmt"

	domainerrors "consortial/internal/errors"
	"consortial/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupporterRepository defines the database operations for supporters and
// their band history.
type SupporterRepository interface {
	Create(ctx context.Context, supporter *models.Supporter) error
	GetByID(ctx context.Context, id uint) (*models.Supporter, error)
	List(ctx context.Context, offset, limit int) ([]models.Supporter, int64, error)
	// ListAll returns every supporter with current and prospective bands loaded.
	ListAll(ctx context.Context) ([]models.Supporter, error)

	// AssignBand moves the supporter onto a band. A replaced band is appended
	// to the supporter's history and any pending prospective band is dropped.
	AssignBand(ctx context.Context, supporterID, bandID uint) error
	SetProspectiveBand(ctx context.Context, supporterID uint, bandID *uint) error
	// History returns the supporter's previous bands, newest first.
	History(ctx context.Context, supporterID uint) ([]models.OldBand, error)
}

type supporterRepository struct {
	db *gorm.DB
}

func NewSupporterRepository(db *gorm.DB) SupporterRepository {
	return &supporterRepository{db: db}
}

func preloadSupporter(db *gorm.DB) *gorm.DB {
	return preloadBand(preloadBand(db, "Band."), "ProspectiveBand.")
}

func (r *supporterRepository) Create(ctx context.Context, supporter *models.Supporter) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(supporter).Error; err != nil {
		return fmt.Errorf("failed to create supporter: %w", err)
	}
	return nil
}

func (r *supporterRepository) GetByID(ctx context.Context, id uint) (*models.Supporter, error) {
	var supporter models.Supporter
	if err := preloadSupporter(r.db.WithContext(ctx)).First(&supporter, id).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrSupporterNotFound.Withf("id %d", id), "get supporter")
	}
	return &supporter, nil
}

func (r *supporterRepository) List(ctx context.Context, offset, limit int) ([]models.Supporter, int64, error) {
	var (
		supporters []models.Supporter
		total      int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Supporter{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count supporters: %w", err)
	}
	err := preloadBand(db, "Band.").
		Order("name").
		Offset(offset).
		Limit(limit).
		Find(&supporters).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list supporters: %w", err)
	}
	return supporters, total, nil
}

func (r *supporterRepository) ListAll(ctx context.Context) ([]models.Supporter, error) {
	var supporters []models.Supporter
	if err := preloadSupporter(r.db.WithContext(ctx)).Order("id").Find(&supporters).Error; err != nil {
		return nil, fmt.Errorf("failed to list supporters: %w", err)
	}
	return supporters, nil
}

func (r *supporterRepository) AssignBand(ctx context.Context, supporterID, bandID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Supporter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "band_id").
			First(&current, supporterID).Error
		if err != nil {
			return notFound(err, domainerrors.ErrSupporterNotFound.Withf("id %d", supporterID), "get supporter")
		}

		if current.BandID != nil && *current.BandID != bandID {
			old := models.OldBand{SupporterID: supporterID, BandID: *current.BandID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&old).Error; err != nil {
				return fmt.Errorf("failed to record band history: %w", err)
			}
		}

		err = tx.Model(&models.Supporter{}).
			Where("id = ?", supporterID).
			Updates(map[string]interface{}{
				"band_id":             bandID,
				"prospective_band_id": nil,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to assign band: %w", err)
		}
		return nil
	})
}

func (r *supporterRepository) SetProspectiveBand(ctx context.Context, supporterID uint, bandID *uint) error {
	result := r.db.WithContext(ctx).Model(&models.Supporter{}).
		Where("id = ?", supporterID).
		Update("prospective_band_id", bandID)
	if result.Error != nil {
		return fmt.Errorf("failed to set prospective band: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSupporterNotFound.Withf("id %d", supporterID)
	}
	return nil
}

func (r *supporterRepository) History(ctx context.Context, supporterID uint) ([]models.OldBand, error) {
	var history []models.OldBand
	err := preloadBand(r.db.WithContext(ctx), "Band.").
		Where("supporter_id = ?", supporterID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get band history: %w", err)
	}
	return history, nil
}
