package models

import (
	domainerrors "consortial/internal/errors"
)

// Category is the kind of fee record a Band represents.
type Category string

const (
	// CategoryBase is the canonical reference fee for a (level, country) pair.
	CategoryBase Category = "base"
	// CategoryCalculated fees are derived from a base band and shared between supporters.
	CategoryCalculated Category = "calculated"
	// CategorySpecial is a fixed fee owned by exactly one supporter.
	CategorySpecial Category = "special"
)

// ParseCategory converts user input into a Category. An empty string means calculated.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryCalculated, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", domainerrors.ErrInvalidCategory.Withf("%q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case CategoryBase, CategoryCalculated, CategorySpecial:
		return true
	}
	return false
}

// Shared reports whether bands of this category may be referenced by many supporters.
func (c Category) Shared() bool {
	return c == CategoryBase || c == CategoryCalculated
}

// ManualFee reports whether the fee is entered by an administrator rather than computed.
func (c Category) ManualFee() bool {
	return c == CategoryBase || c == CategorySpecial
}

// Transition decides how an existing band of category from becomes a band of
// category to. fork is true when the edit must produce a new row and leave the
// existing one untouched. A zero from means there is no existing band.
//
// Only special bands are ever edited in place. Calculated targets never fork
// explicitly: the resolver always reuses or creates a row through deduplication.
func Transition(from, to Category) (fork bool, err error) {
	if !to.Valid() {
		return false, domainerrors.ErrInvalidCategory.Withf("%q", to)
	}
	if from == "" {
		return false, nil
	}
	if !from.Valid() {
		return false, domainerrors.ErrInvalidCategory.Withf("%q", from)
	}

	switch to {
	case CategorySpecial:
		return from != CategorySpecial, nil
	case CategoryBase:
		return true, nil
	case CategoryCalculated:
		return false, nil
	}
	return false, domainerrors.ErrInvalidTransition.Withf("%s -> %s", from, to)
}
