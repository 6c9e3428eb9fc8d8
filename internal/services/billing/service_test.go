package billing

import (
	"context"
	"testing"

	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/repositories/memory"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newResolver(store *memory.Store) *Resolver {
	log, _ := test.NewNullLogger()
	return NewResolver(store.Agents(), log)
}

func TestResolver_Resolve(t *testing.T) {
	store := memory.New()
	olh := store.AddAgent(models.BillingAgent{Name: "Open Library of Humanities", Default: true})
	doa := store.AddAgent(models.BillingAgent{Name: "Diamond OA Association", Country: strPtr("BE")})
	r := newResolver(store)

	tests := []struct {
		name    string
		country string
		want    uint
	}{
		{name: "country agent", country: "BE", want: doa.ID},
		{name: "lower case country", country: "be", want: doa.ID},
		{name: "default agent", country: "GB", want: olh.ID},
		{name: "no country", country: "", want: olh.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent, err := r.Resolve(context.Background(), tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.want, agent.ID)
		})
	}
}

func TestResolver_ResolveWithoutDefault(t *testing.T) {
	store := memory.New()
	store.AddAgent(models.BillingAgent{Name: "Diamond OA Association", Country: strPtr("BE")})
	log, hook := test.NewNullLogger()
	r := NewResolver(store.Agents(), log)

	_, err := r.Resolve(context.Background(), "FR")
	assert.ErrorIs(t, err, domainerrors.ErrNoDefaultBillingAgent)
	kind, ok := domainerrors.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, domainerrors.KindConfiguration, kind)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "no default billing agent configured", hook.LastEntry().Message)
}

func TestResolver_SetDefaultKeepsSingleDefault(t *testing.T) {
	store := memory.New()
	first := store.AddAgent(models.BillingAgent{Name: "Open Library of Humanities", Default: true})
	second := store.AddAgent(models.BillingAgent{Name: "Diamond OA Association", Country: strPtr("BE")})
	r := newResolver(store)
	ctx := context.Background()

	agent, err := r.SetDefault(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, agent.Default)
	assert.Nil(t, agent.Country)

	agents, err := store.Agents().List(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, a := range agents {
		if a.Default {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	resolved, err := r.Resolve(ctx, "BE")
	require.NoError(t, err)
	assert.Equal(t, second.ID, resolved.ID)
	assert.NotEqual(t, first.ID, resolved.ID)
}

func TestResolver_SetDefaultUnknown(t *testing.T) {
	r := newResolver(memory.New())
	_, err := r.SetDefault(context.Background(), 99)
	assert.ErrorIs(t, err, domainerrors.ErrBillingAgentNotFound)
}
