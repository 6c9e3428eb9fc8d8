package supporter

import (
	"context"

	"consortial/internal/models"
	"consortial/internal/repositories"
	"consortial/internal/services/band"
)

// BandResolver turns band input into a stored or previewed band.
type BandResolver interface {
	Resolve(ctx context.Context, in band.Input, existing *models.Band, commit bool) (*models.Band, error)
}

// DefaultLevelProvider returns the level used when a caller does not pick one.
type DefaultLevelProvider interface {
	Default(ctx context.Context) (*models.SupportLevel, error)
}

// Repositories groups the data access the supporter service needs.
type Repositories struct {
	Supporters repositories.SupporterRepository
	Sizes      repositories.SizeRepository
	Levels     repositories.LevelRepository
	Currencies repositories.CurrencyRepository
}
