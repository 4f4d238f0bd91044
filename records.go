package treasury

import (
	"fmt"
	"strings"
)

// This file defines the snapshot input records. They are immutable reference
// data: created by the import layer, read by the engine, never mutated.

// AccountType classifies a bank account.
type AccountType string

const (
	Operating  AccountType = "Operating"
	Investment AccountType = "Investment"
	PoolHeader AccountType = "Pool Header"
	// Overdraft marks a credit facility; a negative balance on such an
	// account is not a data-quality issue.
	Overdraft AccountType = "Overdraft"
)

// BankAccount is an account owned by a legal entity.
type BankAccount struct {
	ID       string      `json:"account_id"`
	Entity   string      `json:"entity_code"`
	Currency string      `json:"currency"`
	Region   string      `json:"region"`
	Type     AccountType `json:"type"`
}

// CashBalance is the position of one account on one date, in local currency.
// There is one balance per (account, date); duplicates are a data-quality
// issue reported by validation.
type CashBalance struct {
	Account  string   `json:"account_id"`
	Date     Date     `json:"date"`
	Currency string   `json:"currency"`
	Amount   Quantity `json:"amount_local"`
}

// Local returns the balance as Money in its local currency.
func (b CashBalance) Local() Money { return M(b.Amount.value, b.Currency) }

// FXRate quotes a currency pair on a date. The rate expresses units of quote
// currency per one unit of base currency and must be > 0.
type FXRate struct {
	Pair string   `json:"pair"` // "EUR/USD"
	Rate Quantity `json:"rate"`
	Date Date     `json:"rate_date"`
}

// Base returns the base currency of the pair, or "" if the pair is malformed.
func (r FXRate) Base() string { base, _, _ := splitPair(r.Pair); return base }

// Quote returns the quote currency of the pair, or "" if the pair is malformed.
func (r FXRate) Quote() string { _, quote, _ := splitPair(r.Pair); return quote }

func splitPair(pair string) (base, quote string, ok bool) {
	base, quote, ok = strings.Cut(pair, "/")
	if !ok || base == "" || quote == "" {
		return "", "", false
	}
	return base, quote, true
}

// LegalEntity is an organizational unit owning zero or more accounts.
type LegalEntity struct {
	Code    string `json:"entity_code"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// PoolType distinguishes physical sweeping from notional offsetting.
type PoolType string

const (
	// Physical pools sweep cash between accounts to a master account.
	Physical PoolType = "Physical"
	// Notional pools offset balances for reporting without moving cash.
	Notional PoolType = "Notional"
)

// CashPool groups participating accounts for liquidity concentration.
// An account belongs to at most one active pool at a time; the pool
// optimizer enforces this, not storage.
type CashPool struct {
	Name         string   `json:"pool_name"`
	Type         PoolType `json:"type"`
	Region       string   `json:"region"`
	Participants []string `json:"participant_account_ids"`
}

// ValidateCurrency checks that a code has the shape of an ISO 4217 currency
// (three uppercase letters). Codes outside the ISO table are accepted: a
// balance in an unquoted currency is an fx_mismatch finding, not a malformed
// record.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("invalid currency code %q", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("invalid currency code %q", code)
		}
	}
	return nil
}
