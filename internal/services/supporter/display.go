package supporter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"consortial/internal/country"
	"consortial/internal/models"

	"github.com/shopspring/decimal"
)

type segment struct {
	low, high decimal.Decimal
}

// Fee spans are split into quarters, highest first. The upper bounds stop
// short of the next quarter so a fee is not listed twice.
var (
	singleSegment = []segment{{decimal.Zero, decimal.NewFromInt(1)}}
	quartiles     = []segment{
		{decimal.RequireFromString("0.75"), decimal.NewFromInt(1)},
		{decimal.RequireFromString("0.5"), decimal.RequireFromString("0.74999")},
		{decimal.RequireFromString("0.25"), decimal.RequireFromString("0.49999")},
		{decimal.Zero, decimal.RequireFromString("0.24999")},
	}
)

type displayKey struct {
	levelID, sizeID, currencyID uint
}

// DisplayBands groups the bands of active supporters into the public fee
// table: one set of rows per level, size and currency, split by fee quartile.
func (s *Service) DisplayBands(ctx context.Context) ([]DisplayBand, error) {
	supporters, err := s.repos.Supporters.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	groups := map[displayKey][]*models.Band{}
	seen := map[uint]bool{}
	for _, supporter := range supporters {
		b := supporter.Band
		if !supporter.Active || b == nil || b.Fee == nil || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		key := displayKey{b.LevelID, b.SizeID, b.CurrencyID}
		groups[key] = append(groups[key], b)
	}

	levels, err := s.repos.Levels.List(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := s.repos.Sizes.List(ctx)
	if err != nil {
		return nil, err
	}
	currencies, err := s.repos.Currencies.List(ctx)
	if err != nil {
		return nil, err
	}

	table := []DisplayBand{}
	for _, level := range levels {
		for _, size := range sizes {
			for _, currency := range currencies {
				bands := groups[displayKey{level.ID, size.ID, currency.ID}]
				if len(bands) == 0 {
					continue
				}
				table = append(table, segmentRows(level.Name, size.Name, currency.Code, bands)...)
			}
		}
	}
	return table, nil
}

func segmentRows(level, size, currency string, bands []*models.Band) []DisplayBand {
	lowest, highest := *bands[0].Fee, *bands[0].Fee
	for _, b := range bands[1:] {
		if *b.Fee < lowest {
			lowest = *b.Fee
		}
		if *b.Fee > highest {
			highest = *b.Fee
		}
	}
	span := decimal.NewFromInt(int64(highest - lowest))
	segments := quartiles
	if span.IsZero() {
		segments = singleSegment
	}

	var rows []DisplayBand
	floor := decimal.NewFromInt(int64(lowest))
	for _, seg := range segments {
		low := floor.Add(span.Mul(seg.low))
		high := floor.Add(span.Mul(seg.high))

		var members []*models.Band
		for _, b := range bands {
			fee := decimal.NewFromInt(int64(*b.Fee))
			if fee.GreaterThanOrEqual(low) && fee.LessThanOrEqual(high) {
				members = append(members, b)
			}
		}
		if len(members) == 0 {
			continue
		}
		rows = append(rows, displayRow(level, size, currency, members))
	}
	return rows
}

func displayRow(level, size, currency string, bands []*models.Band) DisplayBand {
	names := map[string]bool{}
	lowest, highest := *bands[0].Fee, *bands[0].Fee
	for _, b := range bands {
		names[country.Name(b.Country)] = true
		if *b.Fee < lowest {
			lowest = *b.Fee
		}
		if *b.Fee > highest {
			highest = *b.Fee
		}
	}
	countries := make([]string, 0, len(names))
	for name := range names {
		countries = append(countries, name)
	}
	sort.Strings(countries)

	fees := fmt.Sprintf("%d %s", lowest, currency)
	if lowest != highest {
		fees = fmt.Sprintf("%d&ndash;%d %s", lowest, highest, currency)
	}
	return DisplayBand{
		Level:     level,
		Size:      size,
		Countries: strings.Join(countries, ", "),
		Fees:      fees,
	}
}
