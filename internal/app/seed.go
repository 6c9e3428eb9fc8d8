package app

import (
	"context"
	"fmt"
	"strings"

	"consortial/internal/config"
	"consortial/internal/country"
	"consortial/internal/models"
	"consortial/internal/services/band"
)

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	Sizes         int
	Levels        int
	Currencies    int
	BillingAgents int
	BaseBands     int
	Unchanged     int
}

// ApplySeed loads configuration data. Dimensions are matched by name or code
// so a seed can be applied again; a base band is only versioned when its fee
// differs from the latest one.
func (s *Services) ApplySeed(ctx context.Context, seed *config.Seed) (*SeedResult, error) {
	result := &SeedResult{}
	sizes := map[string]uint{}
	levels := map[string]uint{}
	currencies := map[string]uint{}

	for i, in := range seed.Sizes {
		size := &models.SupporterSize{
			Name:        in.Name,
			Description: in.Description,
			Multiplier:  seed.SizeMultiplier(i),
		}
		if err := s.Repos.Sizes.Upsert(ctx, size); err != nil {
			return nil, err
		}
		sizes[size.Name] = size.ID
		result.Sizes++
	}

	var defaultLevel uint
	for _, in := range seed.Levels {
		level := &models.SupportLevel{Name: in.Name, Order: in.Order}
		if err := s.Repos.Levels.Upsert(ctx, level); err != nil {
			return nil, err
		}
		levels[level.Name] = level.ID
		if in.Default {
			defaultLevel = level.ID
		}
		result.Levels++
	}
	if defaultLevel != 0 {
		if _, err := s.Levels.SetDefault(ctx, defaultLevel); err != nil {
			return nil, err
		}
	}

	for _, in := range seed.Currencies {
		currency := &models.Currency{
			Code:   strings.ToUpper(in.Code),
			Symbol: in.Symbol,
			Region: strings.ToUpper(in.Region),
		}
		if err := s.Repos.Currencies.Upsert(ctx, currency); err != nil {
			return nil, err
		}
		currencies[currency.Code] = currency.ID
		result.Currencies++
	}

	var defaultAgent uint
	for _, in := range seed.BillingAgents {
		agent := &models.BillingAgent{Name: in.Name, RedirectURL: in.RedirectURL}
		if in.Country != "" {
			code := country.Normalize(in.Country)
			agent.Country = &code
		}
		if err := s.Repos.Agents.Save(ctx, agent); err != nil {
			return nil, err
		}
		if in.Default {
			defaultAgent = agent.ID
		}
		result.BillingAgents++
	}
	if defaultAgent != 0 {
		if _, err := s.Agents.SetDefault(ctx, defaultAgent); err != nil {
			return nil, err
		}
	}

	existing, err := s.Repos.Bands.ListBase(ctx)
	if err != nil {
		return nil, err
	}
	for _, in := range seed.BaseBands {
		input := band.Input{
			SizeID:     sizes[in.Size],
			LevelID:    levels[in.Level],
			Country:    in.Country,
			CurrencyID: currencies[strings.ToUpper(in.Currency)],
			Category:   models.CategoryBase,
			Fee:        intPtr(in.Fee),
		}
		if input.SizeID == 0 || input.LevelID == 0 || input.CurrencyID == 0 {
			return nil, fmt.Errorf("base band %s/%s/%s/%s refers to an unknown size, level or currency",
				in.Level, in.Size, in.Country, in.Currency)
		}
		if latest := latestBase(existing, input); latest != nil && latest.FeeValue() == in.Fee {
			result.Unchanged++
			continue
		}
		if _, err := s.Bands.Resolve(ctx, input, nil, true); err != nil {
			return nil, fmt.Errorf("base band %s/%s/%s: %w", in.Level, in.Size, in.Country, err)
		}
		result.BaseBands++
	}
	return result, nil
}

// latestBase returns the newest base band with the input's dimensions.
// bands are ordered newest first.
func latestBase(bands []models.Band, in band.Input) *models.Band {
	code := country.Normalize(in.Country)
	for i := range bands {
		b := &bands[i]
		if b.SizeID == in.SizeID && b.LevelID == in.LevelID && b.Country == code && b.CurrencyID == in.CurrencyID {
			return b
		}
	}
	return nil
}

func intPtr(i int) *int { return &i }
