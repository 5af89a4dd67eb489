package model

import "fmt"

// Money carries an amount in a named currency. Amounts are plain float64
// values; all arithmetic in the engine stays within one currency, enforced
// before any computation starts.
type Money struct {
	Amount   float64
	Currency string
}

// Add returns the sum of two amounts. The currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, &CurrencyMismatchError{Want: m.Currency, Got: other.Currency}
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Scale returns the amount multiplied by f, keeping the currency.
func (m Money) Scale(f float64) Money {
	return Money{Amount: m.Amount * f, Currency: m.Currency}
}

// String formats the amount with its currency code.
func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}
