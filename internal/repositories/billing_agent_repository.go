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

// BillingAgentRepository defines the database operations for billing agents.
type BillingAgentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.BillingAgent, error)
	List(ctx context.Context) ([]models.BillingAgent, error)
	// FindByCountry returns nil when no agent is scoped to the country.
	FindByCountry(ctx context.Context, country string) (*models.BillingAgent, error)
	// FindDefault returns nil when no agent holds the default flag.
	FindDefault(ctx context.Context) (*models.BillingAgent, error)
	// Countries lists the distinct countries that have their own agent.
	Countries(ctx context.Context) ([]string, error)
	SetDefault(ctx context.Context, id uint) (*models.BillingAgent, error)
	Save(ctx context.Context, agent *models.BillingAgent) error
}

type billingAgentRepository struct {
	db *gorm.DB
}

func NewBillingAgentRepository(db *gorm.DB) BillingAgentRepository {
	return &billingAgentRepository{db: db}
}

func (r *billingAgentRepository) GetByID(ctx context.Context, id uint) (*models.BillingAgent, error) {
	var agent models.BillingAgent
	if err := r.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrBillingAgentNotFound.Withf("id %d", id), "get billing agent")
	}
	return &agent, nil
}

func (r *billingAgentRepository) List(ctx context.Context) ([]models.BillingAgent, error) {
	var agents []models.BillingAgent
	if err := r.db.WithContext(ctx).Order("name").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to list billing agents: %w", err)
	}
	return agents, nil
}

func (r *billingAgentRepository) FindByCountry(ctx context.Context, country string) (*models.BillingAgent, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("country = ?", country))
}

func (r *billingAgentRepository) FindDefault(ctx context.Context) (*models.BillingAgent, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("is_default = ?", true))
}

func (r *billingAgentRepository) findOne(ctx context.Context, q *gorm.DB) (*models.BillingAgent, error) {
	var agent models.BillingAgent
	err := q.Order("id").First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find billing agent: %w", err)
	}
	return &agent, nil
}

func (r *billingAgentRepository) Countries(ctx context.Context) ([]string, error) {
	var countries []string
	err := r.db.WithContext(ctx).Model(&models.BillingAgent{}).
		Where("country IS NOT NULL AND country <> ''").
		Distinct().
		Order("country").
		Pluck("country", &countries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list billing agent countries: %w", err)
	}
	return countries, nil
}

// SetDefault makes the agent the only default and removes its country scope,
// since the default agent serves every country without its own agent.
func (r *billingAgentRepository) SetDefault(ctx context.Context, id uint) (*models.BillingAgent, error) {
	var agent models.BillingAgent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agent, id).Error; err != nil {
			return notFound(err, domainerrors.ErrBillingAgentNotFound.Withf("id %d", id), "get billing agent")
		}
		if err := tx.Model(&models.BillingAgent{}).
			Where("id <> ? AND is_default = ?", id, true).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default billing agent: %w", err)
		}
		if err := tx.Model(&agent).Updates(map[string]interface{}{
			"is_default": true,
			"country":    nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to set default billing agent: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	agent.Default = true
	agent.Country = nil
	return &agent, nil
}

// Save creates the agent or, for an existing name, updates it in place.
func (r *billingAgentRepository) Save(ctx context.Context, agent *models.BillingAgent) error {
	err := r.db.WithContext(ctx).
		Where(models.BillingAgent{Name: agent.Name}).
		Assign(map[string]interface{}{
			"country":      agent.Country,
			"redirect_url": agent.RedirectURL,
		}).
		FirstOrCreate(agent).Error
	if err != nil {
		return fmt.Errorf("failed to save billing agent: %w", err)
	}
	return nil
}
