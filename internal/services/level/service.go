// Package level manages support levels and the single default level.
package level

import (
	"context"

	"consortial/internal/models"
	"consortial/internal/repositories"

	"github.com/sirupsen/logrus"
)

type Service struct {
	levels repositories.LevelRepository
	log    *logrus.Logger
}

func NewService(levels repositories.LevelRepository, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{levels: levels, log: log}
}

func (s *Service) List(ctx context.Context) ([]models.SupportLevel, error) {
	return s.levels.List(ctx)
}

// Default returns the default level, or ErrNoDefaultLevel when none is set.
func (s *Service) Default(ctx context.Context) (*models.SupportLevel, error) {
	level, err := s.levels.Default(ctx)
	if err != nil {
		s.log.WithError(err).Error("default support level lookup failed")
		return nil, err
	}
	return level, nil
}

// SetDefault makes the level the only default level.
func (s *Service) SetDefault(ctx context.Context, id uint) (*models.SupportLevel, error) {
	level, err := s.levels.SetDefault(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"level_id": level.ID, "name": level.Name}).Info("default support level changed")
	return level, nil
}
