package level

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

func TestService_SetDefault(t *testing.T) {
	store := memory.New()
	standard := store.AddLevel(models.SupportLevel{Name: "Standard", Order: 1, Default: true})
	silver := store.AddLevel(models.SupportLevel{Name: "Silver", Order: 2})
	log, _ := test.NewNullLogger()
	svc := NewService(store.Levels(), log)
	ctx := context.Background()

	level, err := svc.SetDefault(ctx, silver.ID)
	require.NoError(t, err)
	assert.True(t, level.Default)

	def, err := svc.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, silver.ID, def.ID)

	levels, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, standard.ID, levels[0].ID)
	assert.False(t, levels[0].Default)
	assert.True(t, levels[1].Default)
}

func TestService_DefaultMissing(t *testing.T) {
	store := memory.New()
	store.AddLevel(models.SupportLevel{Name: "Silver"})
	log, _ := test.NewNullLogger()
	svc := NewService(store.Levels(), log)

	_, err := svc.Default(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrNoDefaultLevel)
}

func TestService_SetDefaultUnknown(t *testing.T) {
	log, _ := test.NewNullLogger()
	svc := NewService(memory.New().Levels(), log)

	_, err := svc.SetDefault(context.Background(), 7)
	assert.ErrorIs(t, err, domainerrors.ErrLevelNotFound)
}
