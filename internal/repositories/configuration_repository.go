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

// SizeRepository defines the database operations for supporter sizes.
type SizeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.SupporterSize, error)
	GetByName(ctx context.Context, name string) (*models.SupporterSize, error)
	List(ctx context.Context) ([]models.SupporterSize, error)
	Upsert(ctx context.Context, size *models.SupporterSize) error
}

// LevelRepository defines the database operations for support levels.
type LevelRepository interface {
	GetByID(ctx context.Context, id uint) (*models.SupportLevel, error)
	GetByName(ctx context.Context, name string) (*models.SupportLevel, error)
	List(ctx context.Context) ([]models.SupportLevel, error)
	Count(ctx context.Context) (int64, error)
	Default(ctx context.Context) (*models.SupportLevel, error)
	SetDefault(ctx context.Context, id uint) (*models.SupportLevel, error)
	Upsert(ctx context.Context, level *models.SupportLevel) error
}

// CurrencyRepository defines the database operations for currencies.
type CurrencyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Currency, error)
	GetByCode(ctx context.Context, code string) (*models.Currency, error)
	List(ctx context.Context) ([]models.Currency, error)
	Upsert(ctx context.Context, currency *models.Currency) error
}

type sizeRepository struct {
	db *gorm.DB
}

func NewSizeRepository(db *gorm.DB) SizeRepository {
	return &sizeRepository{db: db}
}

func (r *sizeRepository) GetByID(ctx context.Context, id uint) (*models.SupporterSize, error) {
	var size models.SupporterSize
	if err := r.db.WithContext(ctx).First(&size, id).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrSizeNotFound.Withf("id %d", id), "get size")
	}
	return &size, nil
}

func (r *sizeRepository) GetByName(ctx context.Context, name string) (*models.SupporterSize, error) {
	var size models.SupporterSize
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&size).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrSizeNotFound.Withf("%q", name), "get size")
	}
	return &size, nil
}

func (r *sizeRepository) List(ctx context.Context) ([]models.SupporterSize, error) {
	var sizes []models.SupporterSize
	if err := r.db.WithContext(ctx).Order("name").Find(&sizes).Error; err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	return sizes, nil
}

func (r *sizeRepository) Upsert(ctx context.Context, size *models.SupporterSize) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "multiplier", "updated_at"}),
	}).Create(size).Error
	if err != nil {
		return fmt.Errorf("failed to upsert size: %w", err)
	}
	return nil
}

type levelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) LevelRepository {
	return &levelRepository{db: db}
}

func (r *levelRepository) GetByID(ctx context.Context, id uint) (*models.SupportLevel, error) {
	var level models.SupportLevel
	if err := r.db.WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrLevelNotFound.Withf("id %d", id), "get level")
	}
	return &level, nil
}

func (r *levelRepository) GetByName(ctx context.Context, name string) (*models.SupportLevel, error) {
	var level models.SupportLevel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&level).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrLevelNotFound.Withf("%q", name), "get level")
	}
	return &level, nil
}

func (r *levelRepository) List(ctx context.Context) ([]models.SupportLevel, error) {
	var levels []models.SupportLevel
	if err := r.db.WithContext(ctx).Order("sort_order").Order("name").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return levels, nil
}

func (r *levelRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SupportLevel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count levels: %w", err)
	}
	return count, nil
}

func (r *levelRepository) Default(ctx context.Context) (*models.SupportLevel, error) {
	var level models.SupportLevel
	if err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&level).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrNoDefaultLevel, "get default level")
	}
	return &level, nil
}

// SetDefault makes the level the only default inside one transaction.
func (r *levelRepository) SetDefault(ctx context.Context, id uint) (*models.SupportLevel, error) {
	var level models.SupportLevel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&level, id).Error; err != nil {
			return notFound(err, domainerrors.ErrLevelNotFound.Withf("id %d", id), "get level")
		}
		if err := tx.Model(&models.SupportLevel{}).
			Where("id <> ? AND is_default = ?", id, true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default level: %w", err)
		}
		if err := tx.Model(&level).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default level: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	level.Default = true
	return &level, nil
}

func (r *levelRepository) Upsert(ctx context.Context, level *models.SupportLevel) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"sort_order", "updated_at"}),
	}).Create(level).Error
	if err != nil {
		return fmt.Errorf("failed to upsert level: %w", err)
	}
	return nil
}

type currencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) GetByID(ctx context.Context, id uint) (*models.Currency, error) {
	var currency models.Currency
	if err := r.db.WithContext(ctx).First(&currency, id).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrCurrencyNotFound.Withf("id %d", id), "get currency")
	}
	return &currency, nil
}

func (r *currencyRepository) GetByCode(ctx context.Context, code string) (*models.Currency, error) {
	var currency models.Currency
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&currency).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainerrors.ErrCurrencyNotFound.Withf("%q", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &currency, nil
}

func (r *currencyRepository) List(ctx context.Context) ([]models.Currency, error) {
	var currencies []models.Currency
	if err := r.db.WithContext(ctx).Order("code").Find(&currencies).Error; err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}

func (r *currencyRepository) Upsert(ctx context.Context, currency *models.Currency) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"symbol", "region", "updated_at"}),
	}).Create(currency).Error
	if err != nil {
		return fmt.Errorf("failed to upsert currency: %w", err)
	}
	return nil
}
