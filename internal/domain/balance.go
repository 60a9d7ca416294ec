package domain

import "github.com/shopspring/decimal"

// BalanceDirection says whether an amount adds to or pays down a boat's debt.
type BalanceDirection int

const (
	// Accrue records a new obligation: the owner owes more.
	Accrue BalanceDirection = iota
	// Settle records money received: the owner owes less.
	Settle
)

// BalanceDelta returns the signed change to Boat.Balance for amount moving
// in direction dir. Balance is the amount the owner owes the operator, so
// accruals are positive and settlements negative.
//
// This is the only place the sign convention is decided. Repos apply the
// returned delta with "balance = balance + delta".
func BalanceDelta(amount decimal.Decimal, dir BalanceDirection) decimal.Decimal {
	if dir == Settle {
		return amount.Neg()
	}
	return amount
}

// ApplyBalanceDelta updates b.Balance in memory with the same rule the
// repos apply in SQL.
func (b *Boat) ApplyBalanceDelta(amount decimal.Decimal, dir BalanceDirection) {
	b.Balance = b.Balance.Add(BalanceDelta(amount, dir))
}

// CurrencyPlaces is the number of decimal places money columns store.
const CurrencyPlaces = 2

// IsCurrencyAmount reports whether d is representable in the minimum currency
// unit. Amounts with more places would be rounded by the database row by row
// while the balance accrues the unrounded sum.
func IsCurrencyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(CurrencyPlaces))
}
