package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListLimits bounds the ?limit= parameter of list endpoints.
type ListLimits struct {
	Default int
	Max     int
}

// DefaultListLimits matches the API contract: 100 rows unless asked otherwise.
var DefaultListLimits = ListLimits{Default: 100, Max: 500}

// Resolve returns n clamped into (0, Max], or Default when n is unset.
func (l ListLimits) Resolve(n int) int {
	if n <= 0 {
		return l.Default
	}
	if l.Max > 0 && n > l.Max {
		return l.Max
	}
	return n
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// parseEntityID parses a path id. A malformed id cannot match any row, so
// it is reported as not found rather than as bad input.
func parseEntityID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newError(ErrNotFound, "%s not found", entity)
	}
	return id, nil
}

// parseRefID parses an id supplied in a request body or query string.
func parseRefID(raw, field string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, newError(ErrValidation, "%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newError(ErrValidation, "%s is not a valid id", field)
	}
	return id, nil
}

// optionalRefID parses an optional filter id; "" means no filter.
func optionalRefID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseRefID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// trimmedOrNil turns blank optional strings into NULLs.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// checkCents rejects money values with a fractional cent; the columns hold
// two decimal places.
func checkCents(v decimal.Decimal, field string) error {
	if !v.Equal(v.Round(2)) {
		return newError(ErrValidation, "%s must have at most 2 decimal places", field)
	}
	return nil
}
