// Package billing decides which billing agent collects a supporter's fee.
package billing

import (
	"context"

	"consortial/internal/country"
	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/repositories"

	"github.com/sirupsen/logrus"
)

type Resolver struct {
	agents repositories.BillingAgentRepository
	log    *logrus.Logger
}

func NewResolver(agents repositories.BillingAgentRepository, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{agents: agents, log: log}
}

// Resolve returns the agent scoped to the country, or the default agent.
// A missing default agent is a configuration error.
func (r *Resolver) Resolve(ctx context.Context, countryCode string) (*models.BillingAgent, error) {
	countryCode = country.Normalize(countryCode)
	if countryCode != "" {
		agent, err := r.agents.FindByCountry(ctx, countryCode)
		if err != nil {
			return nil, err
		}
		if agent != nil {
			return agent, nil
		}
	}

	agent, err := r.agents.FindDefault(ctx)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		r.log.WithField("country", countryCode).Error("no default billing agent configured")
		return nil, domainerrors.ErrNoDefaultBillingAgent
	}
	return agent, nil
}

// SetDefault makes the agent the single default agent.
func (r *Resolver) SetDefault(ctx context.Context, id uint) (*models.BillingAgent, error) {
	agent, err := r.agents.SetDefault(ctx, id)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"agent_id": agent.ID, "name": agent.Name}).Info("default billing agent changed")
	return agent, nil
}
