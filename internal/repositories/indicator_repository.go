package repositories

import (
	"context"
	"errors"
	"fmt"

	"consortial/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IndicatorRepository persists World Bank indicator snapshots.
type IndicatorRepository interface {
	// Get returns nil when no snapshot was saved for the indicator and year.
	Get(ctx context.Context, indicator string, year int) (*models.IndicatorSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.IndicatorSnapshot) error
}

type indicatorRepository struct {
	db *gorm.DB
}

func NewIndicatorRepository(db *gorm.DB) IndicatorRepository {
	return &indicatorRepository{db: db}
}

func (r *indicatorRepository) Get(ctx context.Context, indicator string, year int) (*models.IndicatorSnapshot, error) {
	var snapshot models.IndicatorSnapshot
	err := r.db.WithContext(ctx).
		Where("indicator = ? AND year = ?", indicator, year).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s snapshot for %d: %w", indicator, year, err)
	}
	return &snapshot, nil
}

func (r *indicatorRepository) Upsert(ctx context.Context, snapshot *models.IndicatorSnapshot) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "indicator"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "fetched_at"}),
	}).Create(snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot for %d: %w", snapshot.Indicator, snapshot.Year, err)
	}
	return nil
}
