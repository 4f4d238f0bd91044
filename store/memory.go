package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gtip/treasury"
)

// MemoryStore implements Store with in-memory slices. Used for testing,
// development and the single-process CLI server. Not suitable for
// production (no persistence).
type MemoryStore struct {
	mu       sync.RWMutex
	accounts []treasury.BankAccount
	balances []treasury.CashBalance
	rates    []treasury.FXRate
	entities []treasury.LegalEntity
	pools    []treasury.CashPool

	runs   []NettingRun
	issues []Issue
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) PutAccounts(_ context.Context, accounts []treasury.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = slices.Clone(accounts)
	return nil
}

func (s *MemoryStore) PutBalances(_ context.Context, balances []treasury.CashBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = append(s.balances, balances...)
	return nil
}

func (s *MemoryStore) PutRates(_ context.Context, rates []treasury.FXRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, rates...)
	return nil
}

func (s *MemoryStore) PutEntities(_ context.Context, entities []treasury.LegalEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = slices.Clone(entities)
	return nil
}

func (s *MemoryStore) PutPools(_ context.Context, pools []treasury.CashPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools = slices.Clone(pools)
	return nil
}

func (s *MemoryStore) Inputs(_ context.Context) (treasury.Inputs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// copies, so a snapshot built from them never sees later writes
	return treasury.Inputs{
		Accounts: slices.Clone(s.accounts),
		Balances: slices.Clone(s.balances),
		Rates:    slices.Clone(s.rates),
		Entities: slices.Clone(s.entities),
		Pools:    slices.Clone(s.pools),
	}, nil
}

func (s *MemoryStore) SaveNettingRun(_ context.Context, result *treasury.NettingResult) (*NettingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := NettingRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	s.runs = append(s.runs, run)
	return &run, nil
}

func (s *MemoryStore) NettingRuns(_ context.Context, limit int) ([]NettingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := slices.Clone(s.runs)
	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) SaveValidationRun(_ context.Context, report *treasury.ValidationReport) ([]Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	detected := make(map[treasury.CheckType]treasury.ValidationIssue, len(report.Issues))
	for _, issue := range report.Issues {
		detected[issue.CheckType] = issue
	}

	// update open issues: refresh re-detected conditions, resolve the rest
	var current []Issue
	for i := range s.issues {
		issue := &s.issues[i]
		if issue.ResolvedAt != nil {
			continue
		}
		if d, ok := detected[issue.Detail.CheckType]; ok {
			issue.Detail = d
			delete(detected, issue.Detail.CheckType)
		} else {
			resolved := now
			issue.ResolvedAt = &resolved
			issue.Detail.Status = treasury.IssueResolved
		}
		current = append(current, *issue)
	}

	// newly detected conditions open fresh issues
	for _, issue := range report.Issues {
		if d, ok := detected[issue.CheckType]; ok {
			record := Issue{
				ID:        uuid.NewString(),
				CreatedAt: now,
				Detail:    d,
			}
			s.issues = append(s.issues, record)
			current = append(current, record)
		}
	}
	return current, nil
}

func (s *MemoryStore) OpenIssues(_ context.Context) ([]Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var open []Issue
	for _, issue := range s.issues {
		if issue.ResolvedAt == nil {
			open = append(open, issue)
		}
	}
	return open, nil
}
