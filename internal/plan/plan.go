// Package plan generates installment schedules for a boat purchase.
// Every function here is pure: the caller supplies "now" and persists the
// result.
package plan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// AllowedCounts are the installment counts accepted by ByCount.
var AllowedCounts = []int{1, 6, 12, 24, 48, 72}

// MaxInstallments bounds the count ByAmount may derive. It matches the
// largest count plan.
const MaxInstallments = 72

// Installment is one generated obligation. Number is 1-based.
type Installment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

// Request selects a plan variant. Exactly one of Count or Amount must be set;
// FrequencyMonths applies only to the amount variant.
type Request struct {
	Count           *int
	Amount          *decimal.Decimal
	FrequencyMonths int
}

// Generate dispatches to ByCount or ByAmount depending on which variant req sets.
func Generate(totalPrice decimal.Decimal, req Request, now time.Time) ([]Installment, error) {
	switch {
	case req.Count != nil && req.Amount == nil:
		return ByCount(totalPrice, *req.Count, now)
	case req.Amount != nil && req.Count == nil:
		return ByAmount(totalPrice, *req.Amount, req.FrequencyMonths, now)
	default:
		return nil, fmt.Errorf("%w: exactly one plan variant required (installment count or installment amount)", domain.ErrInvalidPlan)
	}
}

// ByCount splits totalPrice into count installments.
//
// All but the last installment carry totalPrice/count truncated to the
// currency unit; the last absorbs the remainder so the amounts sum to
// totalPrice exactly.
//
// Due dates: count 1 is due now; up to 12 installments are spaced 12/count
// months apart; more than 12 are spaced 365/count days apart.
func ByCount(totalPrice decimal.Decimal, count int, now time.Time) ([]Installment, error) {
	if !totalPrice.IsPositive() {
		return nil, fmt.Errorf("%w: boat price must be positive", domain.ErrInvalidPlan)
	}
	if !allowedCount(count) {
		return nil, fmt.Errorf("%w: installment count must be one of %v", domain.ErrInvalidPlan, AllowedCounts)
	}

	per := totalPrice.Div(decimal.NewFromInt(int64(count))).Truncate(domain.CurrencyPlaces)
	last := totalPrice.Sub(per.Mul(decimal.NewFromInt(int64(count - 1))))

	out := make([]Installment, count)
	for i := range count {
		amount := per
		if i == count-1 {
			amount = last
		}
		out[i] = Installment{
			Number:  i + 1,
			Amount:  amount,
			DueDate: countDueDate(now, i, count),
		}
	}
	return out, nil
}

// ByAmount derives the count as ceil(totalPrice/installmentAmount) and bills
// installmentAmount every frequencyMonths months starting now.
//
// The final installment is not reduced, so the schedule can total more than
// totalPrice when the amount does not divide it evenly. The amount must be
// whole cents and the derived count at most MaxInstallments.
func ByAmount(totalPrice, installmentAmount decimal.Decimal, frequencyMonths int, now time.Time) ([]Installment, error) {
	if !totalPrice.IsPositive() {
		return nil, fmt.Errorf("%w: boat price must be positive", domain.ErrInvalidPlan)
	}
	if !installmentAmount.IsPositive() {
		return nil, fmt.Errorf("%w: installment amount must be positive", domain.ErrInvalidPlan)
	}
	if !domain.IsCurrencyAmount(installmentAmount) {
		return nil, fmt.Errorf("%w: installment amount must have at most %d decimal places", domain.ErrInvalidPlan, domain.CurrencyPlaces)
	}
	if frequencyMonths < 1 || frequencyMonths > 11 {
		return nil, fmt.Errorf("%w: frequency must be between 1 and 11 months", domain.ErrInvalidPlan)
	}

	// Compare as decimals so a huge quotient never reaches int conversion.
	quotient := totalPrice.Div(installmentAmount).Ceil()
	if quotient.GreaterThan(decimal.NewFromInt(MaxInstallments)) {
		return nil, fmt.Errorf("%w: installment amount yields more than %d installments", domain.ErrInvalidPlan, MaxInstallments)
	}
	count := int(quotient.IntPart())

	out := make([]Installment, count)
	for i := range count {
		out[i] = Installment{
			Number:  i + 1,
			Amount:  installmentAmount,
			DueDate: addMonths(now, i*frequencyMonths),
		}
	}
	return out, nil
}

// Total sums the installment amounts.
func Total(installments []Installment) decimal.Decimal {
	sum := decimal.Zero
	for _, in := range installments {
		sum = sum.Add(in.Amount)
	}
	return sum
}

func allowedCount(n int) bool {
	for _, c := range AllowedCounts {
		if c == n {
			return true
		}
	}
	return false
}

func countDueDate(now time.Time, i, count int) time.Time {
	switch {
	case count == 1:
		return now
	case count <= 12:
		return addMonths(now, i*(12/count))
	default:
		return now.AddDate(0, 0, i*(365/count))
	}
}

// addMonths adds n calendar months, clamping the day to the end of the
// target month (Jan 31 + 1 month = Feb 28/29) instead of overflowing.
func addMonths(t time.Time, n int) time.Time {
	if n == 0 {
		return t
	}
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
