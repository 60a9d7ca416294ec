// Package service contains the business logic for the fleet ledger.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here. Services depend on repo interfaces.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// today truncates t to midnight UTC, the resolution of every business date.
func today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// required returns the trimmed value or a validation error naming field.
func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return v, nil
}

func page[T any](items []T, total int64, p domain.PaginationParams) domain.Page[T] {
	return domain.Page[T]{Items: nonNil(items), Total: total, PaginationParams: p}
}
