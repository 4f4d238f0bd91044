// Package store defines the persistence interface for the treasury engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
//
// The engine itself is stateless; the store holds the record collections the
// snapshots are built from, plus the audit trail of netting and validation
// runs. Issue and run identity lives here: the engine computes anonymous
// results, the store assigns UUIDs when persisting them.
package store

import (
	"context"
	"time"

	"github.com/gtip/treasury"
)

// NettingRun is a persisted netting result with audit identity.
type NettingRun struct {
	ID        string                  `json:"run_id"`
	CreatedAt time.Time               `json:"created_at"`
	Result    *treasury.NettingResult `json:"result"`
}

// Issue is a persisted validation issue with audit identity and lifecycle.
// An issue opened by one run is resolved by a later run that no longer
// detects the same condition, never by manual edit.
type Issue struct {
	ID         string                   `json:"issue_id"`
	CreatedAt  time.Time                `json:"created_at"`
	ResolvedAt *time.Time               `json:"resolved_at,omitempty"`
	Detail     treasury.ValidationIssue `json:"detail"`
}

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Record collections ---

	// PutAccounts replaces the bank account collection.
	PutAccounts(ctx context.Context, accounts []treasury.BankAccount) error

	// PutBalances appends cash balance records.
	PutBalances(ctx context.Context, balances []treasury.CashBalance) error

	// PutRates appends FX rate quotes.
	PutRates(ctx context.Context, rates []treasury.FXRate) error

	// PutEntities replaces the legal entity collection.
	PutEntities(ctx context.Context, entities []treasury.LegalEntity) error

	// PutPools replaces the cash pool collection.
	PutPools(ctx context.Context, pools []treasury.CashPool) error

	// Inputs loads every record collection for snapshot construction.
	// All dates are included; the snapshot filters by its as-of date.
	Inputs(ctx context.Context) (treasury.Inputs, error)

	// --- Audit trail ---

	// SaveNettingRun persists a netting result and assigns its run id.
	SaveNettingRun(ctx context.Context, result *treasury.NettingResult) (*NettingRun, error)

	// NettingRuns returns persisted runs, most recent first.
	NettingRuns(ctx context.Context, limit int) ([]NettingRun, error)

	// SaveValidationRun persists the issues of a validation run. Open
	// issues from earlier runs that the new report no longer detects are
	// marked resolved; re-detected conditions keep their original id.
	SaveValidationRun(ctx context.Context, report *treasury.ValidationReport) ([]Issue, error)

	// OpenIssues returns the unresolved issues.
	OpenIssues(ctx context.Context) ([]Issue, error)
}
