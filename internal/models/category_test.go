package models

import (
	"errors"
	"testing"
	"time"

	domainerrors "consortial/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to Category
		fork     bool
	}{
		{"", CategoryCalculated, false},
		{"", CategorySpecial, false},
		{"", CategoryBase, false},
		{CategoryCalculated, CategorySpecial, true},
		{CategoryBase, CategorySpecial, true},
		{CategorySpecial, CategorySpecial, false},
		{CategorySpecial, CategoryBase, true},
		{CategoryBase, CategoryBase, true},
		{CategorySpecial, CategoryCalculated, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			fork, err := Transition(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.fork, fork)
		})
	}

	_, err := Transition(CategoryCalculated, "discounted")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCategory)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryCalculated, c)

	c, err = ParseCategory("special")
	require.NoError(t, err)
	assert.Equal(t, CategorySpecial, c)

	_, err = ParseCategory("fixed")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCategory)
}

func TestBand_Validate(t *testing.T) {
	fee := -10
	band := &Band{Category: CategorySpecial, Country: "GB", Fee: &fee}

	err := band.Validate()
	var ve *domainerrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "must not be negative", ve.Fields["fee"])
	assert.Contains(t, ve.Fields, "size")
	assert.Contains(t, ve.Fields, "level")
	assert.Contains(t, ve.Fields, "currency")
	assert.NotContains(t, ve.Fields, "country")

	calculated := &Band{SizeID: 1, LevelID: 1, Country: "GB", CurrencyID: 1, Category: CategoryCalculated}
	assert.NoError(t, calculated.Validate())
}

func TestBand_Fork(t *testing.T) {
	fee := 1200
	band := &Band{ID: 4, Fee: &fee, Year: 2024, Datetime: time.Now(), Category: CategorySpecial}

	forked := band.Fork()
	assert.Zero(t, forked.ID)
	assert.Zero(t, forked.Year)
	assert.True(t, forked.Datetime.IsZero())
	assert.Equal(t, 1200, forked.FeeValue())
	assert.Equal(t, uint(4), band.ID)
}
