package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gtip/treasury"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) PutAccounts(ctx context.Context, accounts []treasury.BankAccount) error {
	if err := s.primary.PutAccounts(ctx, accounts); err != nil {
		return err
	}
	s.rdb.Del(ctx, inputsKey())
	return nil
}

func (s *CachedStore) PutBalances(ctx context.Context, balances []treasury.CashBalance) error {
	if err := s.primary.PutBalances(ctx, balances); err != nil {
		return err
	}
	s.rdb.Del(ctx, inputsKey())
	return nil
}

func (s *CachedStore) PutRates(ctx context.Context, rates []treasury.FXRate) error {
	if err := s.primary.PutRates(ctx, rates); err != nil {
		return err
	}
	s.rdb.Del(ctx, inputsKey())
	return nil
}

func (s *CachedStore) PutEntities(ctx context.Context, entities []treasury.LegalEntity) error {
	if err := s.primary.PutEntities(ctx, entities); err != nil {
		return err
	}
	s.rdb.Del(ctx, inputsKey())
	return nil
}

func (s *CachedStore) PutPools(ctx context.Context, pools []treasury.CashPool) error {
	if err := s.primary.PutPools(ctx, pools); err != nil {
		return err
	}
	s.rdb.Del(ctx, inputsKey())
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) Inputs(ctx context.Context) (treasury.Inputs, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, inputsKey()).Bytes()
	if err == nil {
		var in treasury.Inputs
		if json.Unmarshal(data, &in) == nil {
			return in, nil
		}
	}

	// Cache miss: read from primary.
	in, err := s.primary.Inputs(ctx)
	if err != nil {
		return in, err
	}

	if data, err := json.Marshal(in); err == nil {
		s.rdb.Set(ctx, inputsKey(), data, s.ttl)
	}
	return in, nil
}

func (s *CachedStore) NettingRuns(ctx context.Context, limit int) ([]NettingRun, error) {
	// Try cache.
	data, err := s.rdb.Get(ctx, runsKey(limit)).Bytes()
	if err == nil {
		var runs []NettingRun
		if json.Unmarshal(data, &runs) == nil {
			return runs, nil
		}
	}

	// Cache miss.
	runs, err := s.primary.NettingRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(runs); err == nil {
		s.rdb.Set(ctx, runsKey(limit), data, s.ttl)
	}
	return runs, nil
}

// --- Audit writes (invalidate the derived run and issue views) ---

func (s *CachedStore) SaveNettingRun(ctx context.Context, result *treasury.NettingResult) (*NettingRun, error) {
	run, err := s.primary.SaveNettingRun(ctx, result)
	if err != nil {
		return nil, err
	}
	// Run lists are cached per limit; drop them all.
	s.dropKeys(ctx, "netting_runs:*")
	return run, nil
}

func (s *CachedStore) SaveValidationRun(ctx context.Context, report *treasury.ValidationReport) ([]Issue, error) {
	issues, err := s.primary.SaveValidationRun(ctx, report)
	if err != nil {
		return nil, err
	}
	s.rdb.Del(ctx, openIssuesKey())
	return issues, nil
}

func (s *CachedStore) OpenIssues(ctx context.Context) ([]Issue, error) {
	data, err := s.rdb.Get(ctx, openIssuesKey()).Bytes()
	if err == nil {
		var issues []Issue
		if json.Unmarshal(data, &issues) == nil {
			return issues, nil
		}
	}

	issues, err := s.primary.OpenIssues(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(issues); err == nil {
		s.rdb.Set(ctx, openIssuesKey(), data, s.ttl)
	}
	return issues, nil
}

// --- Cache helpers ---

func (s *CachedStore) dropKeys(ctx context.Context, pattern string) {
	keys, err := s.rdb.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	s.rdb.Del(ctx, keys...)
}

func inputsKey() string        { return "inputs" }
func runsKey(limit int) string { return fmt.Sprintf("netting_runs:%d", limit) }
func openIssuesKey() string    { return "open_issues" }
