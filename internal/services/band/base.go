// Package band calculates supporter fees and resolves them into persisted
// bands.
package band

import (
	"context"

	"consortial/internal/models"
	"consortial/internal/repositories"
)

// BaseResolver finds the base band a fee is scaled from.
type BaseResolver struct {
	bands  repositories.BandRepository
	agents repositories.BillingAgentRepository
	levels repositories.LevelRepository
}

func NewBaseResolver(
	bands repositories.BandRepository,
	agents repositories.BillingAgentRepository,
	levels repositories.LevelRepository,
) *BaseResolver {
	return &BaseResolver{bands: bands, agents: agents, levels: levels}
}

// baseSet is a loaded view of every base band and the data the fallback
// chain needs.
type baseSet struct {
	bases          []models.Band
	agentCountries map[string]bool
	levelCount     int
}

func (r *BaseResolver) load(ctx context.Context) (*baseSet, error) {
	bases, err := r.bands.ListBase(ctx)
	if err != nil {
		return nil, err
	}
	countries, err := r.agents.Countries(ctx)
	if err != nil {
		return nil, err
	}
	count, err := r.levels.Count(ctx)
	if err != nil {
		return nil, err
	}
	set := &baseSet{
		bases:          bases,
		agentCountries: make(map[string]bool, len(countries)),
		levelCount:     int(count),
	}
	for _, c := range countries {
		set.agentCountries[c] = true
	}
	return set, nil
}

// GetBaseBand returns the latest base band for the level and country, or nil
// when no base band exists at all. level and country are both optional.
//
// Country bases are only used when the country has a base for every level;
// otherwise the bases of countries with their own billing agent are set aside.
// The level filter applies when a surviving base has that level, or when
// every agent country has a base for it. If the filters leave nothing the
// latest base of any kind is returned.
func (r *BaseResolver) GetBaseBand(ctx context.Context, level *models.SupportLevel, country string) (*models.Band, error) {
	set, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	var levelID uint
	if level != nil {
		levelID = level.ID
	}
	return set.resolve(levelID, country), nil
}

func (s *baseSet) resolve(levelID uint, country string) *models.Band {
	if len(s.bases) == 0 {
		return nil
	}

	candidates := s.bases
	countryBases := filterBands(s.bases, func(b models.Band) bool { return b.Country == country })
	if country != "" && len(countryBases) > 0 && distinctLevels(countryBases) == s.levelCount {
		candidates = countryBases
	} else {
		candidates = filterBands(s.bases, func(b models.Band) bool { return !s.agentCountries[b.Country] })
	}

	if levelID != 0 {
		byLevel := func(b models.Band) bool { return b.LevelID == levelID }
		if survivors := filterBands(candidates, byLevel); len(survivors) > 0 {
			candidates = survivors
		} else if s.agentCountriesCovered(levelID) {
			candidates = filterBands(s.bases, func(b models.Band) bool {
				return b.LevelID == levelID && s.agentCountries[b.Country]
			})
		}
	}

	if latest := latestBand(candidates); latest != nil {
		return latest
	}
	return latestBand(s.bases)
}

// agentCountriesCovered reports whether every country with its own billing
// agent has a base band for the level.
func (s *baseSet) agentCountriesCovered(levelID uint) bool {
	if len(s.agentCountries) == 0 {
		return false
	}
	covered := map[string]bool{}
	for _, b := range s.bases {
		if b.LevelID == levelID && s.agentCountries[b.Country] {
			covered[b.Country] = true
		}
	}
	return len(covered) == len(s.agentCountries)
}

// GetBaseBands returns the distinct base bands in effect for each level,
// both for every country with its own agent and for all other countries.
func (r *BaseResolver) GetBaseBands(ctx context.Context) ([]models.Band, error) {
	set, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	levels, err := r.levels.List(ctx)
	if err != nil {
		return nil, err
	}
	countries, err := r.agents.Countries(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[uint]bool{}
	var out []models.Band
	add := func(b *models.Band) {
		if b != nil && !seen[b.ID] {
			seen[b.ID] = true
			out = append(out, *b)
		}
	}
	for _, level := range levels {
		for _, c := range countries {
			add(set.resolve(level.ID, c))
		}
		add(set.resolve(level.ID, ""))
	}
	return out, nil
}

func filterBands(bands []models.Band, keep func(models.Band) bool) []models.Band {
	var out []models.Band
	for _, b := range bands {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func distinctLevels(bands []models.Band) int {
	levels := map[uint]bool{}
	for _, b := range bands {
		levels[b.LevelID] = true
	}
	return len(levels)
}

func latestBand(bands []models.Band) *models.Band {
	var latest *models.Band
	for i := range bands {
		b := &bands[i]
		if latest == nil || b.Datetime.After(latest.Datetime) ||
			(b.Datetime.Equal(latest.Datetime) && b.ID > latest.ID) {
			latest = b
		}
	}
	if latest == nil {
		return nil
	}
	out := *latest
	return &out
}
