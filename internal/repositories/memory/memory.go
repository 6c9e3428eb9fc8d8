// Package memory implements the repository interfaces in memory for service
// and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/repositories"
)

// Store holds every table. Repository views share it so that bands can be
// returned with their dimensions loaded.
type Store struct {
	mu         sync.Mutex
	nextID     uint
	sizes      map[uint]models.SupporterSize
	levels     map[uint]models.SupportLevel
	currencies map[uint]models.Currency
	agents     map[uint]models.BillingAgent
	bands      map[uint]models.Band
	supporters map[uint]models.Supporter
	oldBands   []models.OldBand
	snapshots  map[string]models.IndicatorSnapshot

	// BeforeBandCreate runs before a band is inserted, outside the lock.
	BeforeBandCreate func(band *models.Band)
}

func New() *Store {
	return &Store{
		sizes:      map[uint]models.SupporterSize{},
		levels:     map[uint]models.SupportLevel{},
		currencies: map[uint]models.Currency{},
		agents:     map[uint]models.BillingAgent{},
		bands:      map[uint]models.Band{},
		supporters: map[uint]models.Supporter{},
		snapshots:  map[string]models.IndicatorSnapshot{},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// AddSize stores a size and returns it with its ID set.
func (s *Store) AddSize(size models.SupporterSize) *models.SupporterSize {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size.ID == 0 {
		size.ID = s.id()
	}
	s.sizes[size.ID] = size
	return &size
}

func (s *Store) AddLevel(level models.SupportLevel) *models.SupportLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level.ID == 0 {
		level.ID = s.id()
	}
	s.levels[level.ID] = level
	return &level
}

func (s *Store) AddCurrency(currency models.Currency) *models.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	if currency.ID == 0 {
		currency.ID = s.id()
	}
	s.currencies[currency.ID] = currency
	return &currency
}

func (s *Store) AddAgent(agent models.BillingAgent) *models.BillingAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agent.ID == 0 {
		agent.ID = s.id()
	}
	s.agents[agent.ID] = agent
	return &agent
}

// AddBand stores a band as given, keeping its Datetime when set.
func (s *Store) AddBand(band models.Band) *models.Band {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertBand(&band)
	return s.hydrate(band)
}

func (s *Store) AddSupporter(supporter models.Supporter) *models.Supporter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if supporter.ID == 0 {
		supporter.ID = s.id()
	}
	supporter.Band = nil
	supporter.ProspectiveBand = nil
	s.supporters[supporter.ID] = supporter
	return &supporter
}

// BandCount returns the number of stored bands.
func (s *Store) BandCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bands)
}

func (s *Store) insertBand(band *models.Band) {
	if band.ID == 0 {
		band.ID = s.id()
	}
	if band.Datetime.IsZero() {
		band.Datetime = time.Now()
	}
	band.Year = band.Datetime.Year()
	stored := *band
	stored.Size, stored.Level, stored.Currency, stored.BillingAgent = nil, nil, nil, nil
	s.bands[band.ID] = stored
}

func (s *Store) hydrate(band models.Band) *models.Band {
	if size, ok := s.sizes[band.SizeID]; ok {
		band.Size = &size
	}
	if level, ok := s.levels[band.LevelID]; ok {
		band.Level = &level
	}
	if currency, ok := s.currencies[band.CurrencyID]; ok {
		band.Currency = &currency
	}
	band.BillingAgent = nil
	if band.BillingAgentID != nil {
		if agent, ok := s.agents[*band.BillingAgentID]; ok {
			band.BillingAgent = &agent
		}
	}
	return &band
}

func (s *Store) hydrateSupporter(supporter models.Supporter) *models.Supporter {
	supporter.Band, supporter.ProspectiveBand = nil, nil
	if supporter.BandID != nil {
		if band, ok := s.bands[*supporter.BandID]; ok {
			supporter.Band = s.hydrate(band)
		}
	}
	if supporter.ProspectiveBandID != nil {
		if band, ok := s.bands[*supporter.ProspectiveBandID]; ok {
			supporter.ProspectiveBand = s.hydrate(band)
		}
	}
	return &supporter
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Repository views

func (s *Store) Sizes() repositories.SizeRepository           { return &sizeRepo{s} }
func (s *Store) Levels() repositories.LevelRepository         { return &levelRepo{s} }
func (s *Store) Currencies() repositories.CurrencyRepository  { return &currencyRepo{s} }
func (s *Store) Agents() repositories.BillingAgentRepository  { return &agentRepo{s} }
func (s *Store) Bands() repositories.BandRepository           { return &bandRepo{s} }
func (s *Store) Supporters() repositories.SupporterRepository { return &supporterRepo{s} }
func (s *Store) Indicators() repositories.IndicatorRepository { return &indicatorRepo{s} }

type sizeRepo struct{ s *Store }

func (r *sizeRepo) GetByID(_ context.Context, id uint) (*models.SupporterSize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	size, ok := r.s.sizes[id]
	if !ok {
		return nil, domainerrors.ErrSizeNotFound.Withf("id %d", id)
	}
	return &size, nil
}

func (r *sizeRepo) GetByName(_ context.Context, name string) (*models.SupporterSize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, size := range r.s.sizes {
		if size.Name == name {
			return &size, nil
		}
	}
	return nil, domainerrors.ErrSizeNotFound.Withf("%q", name)
}

func (r *sizeRepo) List(_ context.Context) ([]models.SupporterSize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.SupporterSize, 0, len(r.s.sizes))
	for _, id := range sortedIDs(r.s.sizes) {
		out = append(out, r.s.sizes[id])
	}
	return out, nil
}

func (r *sizeRepo) Upsert(_ context.Context, size *models.SupporterSize) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.sizes {
		if existing.Name == size.Name {
			size.ID = id
		}
	}
	if size.ID == 0 {
		size.ID = r.s.id()
	}
	r.s.sizes[size.ID] = *size
	return nil
}

type levelRepo struct{ s *Store }

func (r *levelRepo) GetByID(_ context.Context, id uint) (*models.SupportLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	level, ok := r.s.levels[id]
	if !ok {
		return nil, domainerrors.ErrLevelNotFound.Withf("id %d", id)
	}
	return &level, nil
}

func (r *levelRepo) GetByName(_ context.Context, name string) (*models.SupportLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, level := range r.s.levels {
		if level.Name == name {
			return &level, nil
		}
	}
	return nil, domainerrors.ErrLevelNotFound.Withf("%q", name)
}

func (r *levelRepo) List(_ context.Context) ([]models.SupportLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.SupportLevel, 0, len(r.s.levels))
	for _, id := range sortedIDs(r.s.levels) {
		out = append(out, r.s.levels[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *levelRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.levels)), nil
}

func (r *levelRepo) Default(_ context.Context) (*models.SupportLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.levels) {
		if level := r.s.levels[id]; level.Default {
			return &level, nil
		}
	}
	return nil, domainerrors.ErrNoDefaultLevel
}

func (r *levelRepo) SetDefault(_ context.Context, id uint) (*models.SupportLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	level, ok := r.s.levels[id]
	if !ok {
		return nil, domainerrors.ErrLevelNotFound.Withf("id %d", id)
	}
	for otherID, other := range r.s.levels {
		other.Default = otherID == id
		r.s.levels[otherID] = other
	}
	level.Default = true
	return &level, nil
}

func (r *levelRepo) Upsert(_ context.Context, level *models.SupportLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.levels {
		if existing.Name == level.Name {
			level.ID = id
			level.Default = existing.Default
		}
	}
	if level.ID == 0 {
		level.ID = r.s.id()
	}
	r.s.levels[level.ID] = *level
	return nil
}

type currencyRepo struct{ s *Store }

func (r *currencyRepo) GetByID(_ context.Context, id uint) (*models.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	currency, ok := r.s.currencies[id]
	if !ok {
		return nil, domainerrors.ErrCurrencyNotFound.Withf("id %d", id)
	}
	return &currency, nil
}

func (r *currencyRepo) GetByCode(_ context.Context, code string) (*models.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, currency := range r.s.currencies {
		if currency.Code == code {
			return &currency, nil
		}
	}
	return nil, domainerrors.ErrCurrencyNotFound.Withf("%q", code)
}

func (r *currencyRepo) List(_ context.Context) ([]models.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Currency, 0, len(r.s.currencies))
	for _, id := range sortedIDs(r.s.currencies) {
		out = append(out, r.s.currencies[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *currencyRepo) Upsert(_ context.Context, currency *models.Currency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.currencies {
		if existing.Code == currency.Code {
			currency.ID = id
		}
	}
	if currency.ID == 0 {
		currency.ID = r.s.id()
	}
	r.s.currencies[currency.ID] = *currency
	return nil
}

type agentRepo struct{ s *Store }

func (r *agentRepo) GetByID(_ context.Context, id uint) (*models.BillingAgent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	agent, ok := r.s.agents[id]
	if !ok {
		return nil, domainerrors.ErrBillingAgentNotFound.Withf("id %d", id)
	}
	return &agent, nil
}

func (r *agentRepo) List(_ context.Context) ([]models.BillingAgent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.BillingAgent, 0, len(r.s.agents))
	for _, id := range sortedIDs(r.s.agents) {
		out = append(out, r.s.agents[id])
	}
	return out, nil
}

func (r *agentRepo) FindByCountry(_ context.Context, country string) (*models.BillingAgent, error) {
	if country == "" {
		return nil, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.agents) {
		if agent := r.s.agents[id]; agent.CountryCode() == country {
			return &agent, nil
		}
	}
	return nil, nil
}

func (r *agentRepo) FindDefault(_ context.Context) (*models.BillingAgent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.agents) {
		if agent := r.s.agents[id]; agent.Default {
			return &agent, nil
		}
	}
	return nil, nil
}

func (r *agentRepo) Countries(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, agent := range r.s.agents {
		if c := agent.CountryCode(); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *agentRepo) SetDefault(_ context.Context, id uint) (*models.BillingAgent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	agent, ok := r.s.agents[id]
	if !ok {
		return nil, domainerrors.ErrBillingAgentNotFound.Withf("id %d", id)
	}
	for otherID, other := range r.s.agents {
		other.Default = false
		r.s.agents[otherID] = other
	}
	agent.Default = true
	agent.Country = nil
	r.s.agents[id] = agent
	return &agent, nil
}

func (r *agentRepo) Save(_ context.Context, agent *models.BillingAgent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.agents {
		if existing.Name == agent.Name {
			agent.ID = id
			agent.Default = existing.Default
		}
	}
	if agent.ID == 0 {
		agent.ID = r.s.id()
	}
	r.s.agents[agent.ID] = *agent
	return nil
}

type bandRepo struct{ s *Store }

func (r *bandRepo) GetByID(_ context.Context, id uint) (*models.Band, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	band, ok := r.s.bands[id]
	if !ok {
		return nil, domainerrors.ErrBandNotFound.Withf("id %d", id)
	}
	return r.s.hydrate(band), nil
}

func (r *bandRepo) Create(_ context.Context, band *models.Band) error {
	if r.s.BeforeBandCreate != nil {
		r.s.BeforeBandCreate(band)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if band.Category == models.CategoryCalculated {
		at := band.Datetime
		if at.IsZero() {
			at = time.Now()
		}
		if r.findDuplicate(band.DedupKey(at.Year())) != nil {
			return repositories.ErrDuplicateBand
		}
	}
	r.s.insertBand(band)
	return nil
}

func (r *bandRepo) Update(_ context.Context, band *models.Band) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bands[band.ID]; !ok {
		return domainerrors.ErrBandNotFound.Withf("id %d", band.ID)
	}
	r.s.insertBand(band)
	return nil
}

func (r *bandRepo) FindDuplicate(_ context.Context, key models.DedupKey) (*models.Band, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if band := r.findDuplicate(key); band != nil {
		return r.s.hydrate(*band), nil
	}
	return nil, nil
}

func (r *bandRepo) findDuplicate(key models.DedupKey) *models.Band {
	var latest *models.Band
	for _, id := range sortedIDs(r.s.bands) {
		band := r.s.bands[id]
		if !sameKey(band.DedupKey(band.Year), key) {
			continue
		}
		if latest == nil || !band.Datetime.Before(latest.Datetime) {
			b := band
			latest = &b
		}
	}
	return latest
}

// sameKey compares dedup keys by value, not by pointer identity.
func sameKey(a, b models.DedupKey) bool {
	return a.SizeID == b.SizeID &&
		a.LevelID == b.LevelID &&
		a.Country == b.Country &&
		a.CurrencyID == b.CurrencyID &&
		equalPtr(a.BillingAgentID, b.BillingAgentID) &&
		a.Category == b.Category &&
		equalPtr(a.Fee, b.Fee) &&
		a.Warnings == b.Warnings &&
		a.Year == b.Year
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *bandRepo) ListBase(_ context.Context) ([]models.Band, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Band
	for _, id := range sortedIDs(r.s.bands) {
		if band := r.s.bands[id]; band.Category == models.CategoryBase {
			out = append(out, *r.s.hydrate(band))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Datetime.Equal(out[j].Datetime) {
			return out[i].ID > out[j].ID
		}
		return out[i].Datetime.After(out[j].Datetime)
	})
	return out, nil
}

func (r *bandRepo) ExecuteInTransaction(_ context.Context, fn func(repositories.BandRepository) error) error {
	return fn(r)
}

type supporterRepo struct{ s *Store }

func (r *supporterRepo) Create(_ context.Context, supporter *models.Supporter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	supporter.ID = r.s.id()
	now := time.Now()
	supporter.CreatedAt, supporter.UpdatedAt = now, now
	stored := *supporter
	stored.Band, stored.ProspectiveBand = nil, nil
	r.s.supporters[supporter.ID] = stored
	return nil
}

func (r *supporterRepo) GetByID(_ context.Context, id uint) (*models.Supporter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	supporter, ok := r.s.supporters[id]
	if !ok {
		return nil, domainerrors.ErrSupporterNotFound.Withf("id %d", id)
	}
	return r.s.hydrateSupporter(supporter), nil
}

func (r *supporterRepo) List(_ context.Context, offset, limit int) ([]models.Supporter, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]models.Supporter, 0, len(r.s.supporters))
	for _, id := range sortedIDs(r.s.supporters) {
		all = append(all, *r.s.hydrateSupporter(r.s.supporters[id]))
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Supporter{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *supporterRepo) ListAll(_ context.Context) ([]models.Supporter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Supporter, 0, len(r.s.supporters))
	for _, id := range sortedIDs(r.s.supporters) {
		out = append(out, *r.s.hydrateSupporter(r.s.supporters[id]))
	}
	return out, nil
}

func (r *supporterRepo) AssignBand(_ context.Context, supporterID, bandID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	supporter, ok := r.s.supporters[supporterID]
	if !ok {
		return domainerrors.ErrSupporterNotFound.Withf("id %d", supporterID)
	}
	if supporter.BandID != nil && *supporter.BandID != bandID {
		recorded := false
		for _, old := range r.s.oldBands {
			if old.SupporterID == supporterID && old.BandID == *supporter.BandID {
				recorded = true
			}
		}
		if !recorded {
			r.s.oldBands = append(r.s.oldBands, models.OldBand{
				ID:          r.s.id(),
				SupporterID: supporterID,
				BandID:      *supporter.BandID,
				CreatedAt:   time.Now(),
			})
		}
	}
	id := bandID
	supporter.BandID = &id
	supporter.ProspectiveBandID = nil
	r.s.supporters[supporterID] = supporter
	return nil
}

func (r *supporterRepo) SetProspectiveBand(_ context.Context, supporterID uint, bandID *uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	supporter, ok := r.s.supporters[supporterID]
	if !ok {
		return domainerrors.ErrSupporterNotFound.Withf("id %d", supporterID)
	}
	supporter.ProspectiveBandID = bandID
	r.s.supporters[supporterID] = supporter
	return nil
}

func (r *supporterRepo) History(_ context.Context, supporterID uint) ([]models.OldBand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.OldBand
	for i := len(r.s.oldBands) - 1; i >= 0; i-- {
		old := r.s.oldBands[i]
		if old.SupporterID != supporterID {
			continue
		}
		if band, ok := r.s.bands[old.BandID]; ok {
			old.Band = r.s.hydrate(band)
		}
		out = append(out, old)
	}
	return out, nil
}

type indicatorRepo struct{ s *Store }

func snapshotKey(indicator string, year int) string {
	return fmt.Sprintf("%s:%d", indicator, year)
}

func (r *indicatorRepo) Get(_ context.Context, indicator string, year int) (*models.IndicatorSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snapshot, ok := r.s.snapshots[snapshotKey(indicator, year)]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *indicatorRepo) Upsert(_ context.Context, snapshot *models.IndicatorSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := snapshotKey(snapshot.Indicator, snapshot.Year)
	if existing, ok := r.s.snapshots[key]; ok {
		snapshot.ID = existing.ID
	} else if snapshot.ID == 0 {
		snapshot.ID = r.s.id()
	}
	r.s.snapshots[key] = *snapshot
	return nil
}
