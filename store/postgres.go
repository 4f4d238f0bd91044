package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gtip/treasury"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Reference collections are replaced atomically: the treasury system of
// record owns them, a partial upload must never be observable.

func (s *PostgresStore) PutAccounts(ctx context.Context, accounts []treasury.BankAccount) error {
	return s.replace(ctx, "bank_accounts", func(tx pgx.Tx) error {
		for _, a := range accounts {
			_, err := tx.Exec(ctx,
				`INSERT INTO bank_accounts (account_id, entity_code, currency, region, type)
				 VALUES ($1, $2, $3, $4, $5)`,
				a.ID, a.Entity, a.Currency, a.Region, a.Type)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) PutBalances(ctx context.Context, balances []treasury.CashBalance) error {
	for _, b := range balances {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO cash_balances (account_id, balance_date, currency, amount)
			 VALUES ($1, $2::DATE, $3, $4::NUMERIC)`,
			b.Account, b.Date.String(), b.Currency, b.Amount.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) PutRates(ctx context.Context, rates []treasury.FXRate) error {
	for _, r := range rates {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO fx_rates (pair, rate, rate_date)
			 VALUES ($1, $2::NUMERIC, $3::DATE)`,
			r.Pair, r.Rate.String(), r.Date.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) PutEntities(ctx context.Context, entities []treasury.LegalEntity) error {
	return s.replace(ctx, "legal_entities", func(tx pgx.Tx) error {
		for _, e := range entities {
			_, err := tx.Exec(ctx,
				`INSERT INTO legal_entities (entity_code, name, country, region)
				 VALUES ($1, $2, $3, $4)`,
				e.Code, e.Name, e.Country, e.Region)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) PutPools(ctx context.Context, pools []treasury.CashPool) error {
	return s.replace(ctx, "cash_pools", func(tx pgx.Tx) error {
		for _, p := range pools {
			_, err := tx.Exec(ctx,
				`INSERT INTO cash_pools (pool_name, type, region, participants)
				 VALUES ($1, $2, $3, $4)`,
				p.Name, p.Type, p.Region, p.Participants)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// replace deletes a collection and reinserts it in one transaction.
func (s *PostgresStore) replace(ctx context.Context, table string, insert func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Inputs(ctx context.Context) (treasury.Inputs, error) {
	var in treasury.Inputs

	rows, err := s.pool.Query(ctx,
		`SELECT account_id, entity_code, currency, region, type
		 FROM bank_accounts ORDER BY account_id`)
	if err != nil {
		return in, err
	}
	for rows.Next() {
		var a treasury.BankAccount
		if err := rows.Scan(&a.ID, &a.Entity, &a.Currency, &a.Region, &a.Type); err != nil {
			rows.Close()
			return in, err
		}
		in.Accounts = append(in.Accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return in, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT account_id, balance_date, currency, amount::TEXT
		 FROM cash_balances ORDER BY balance_date, account_id`)
	if err != nil {
		return in, err
	}
	for rows.Next() {
		var b treasury.CashBalance
		var on time.Time
		var amount string
		if err := rows.Scan(&b.Account, &on, &b.Currency, &amount); err != nil {
			rows.Close()
			return in, err
		}
		b.Date = treasury.NewDate(on.Date())
		if b.Amount, err = treasury.ParseQuantity(amount); err != nil {
			rows.Close()
			return in, fmt.Errorf("balance %s on %s: %w", b.Account, b.Date, err)
		}
		in.Balances = append(in.Balances, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return in, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT pair, rate::TEXT, rate_date
		 FROM fx_rates ORDER BY rate_date, pair`)
	if err != nil {
		return in, err
	}
	for rows.Next() {
		var r treasury.FXRate
		var on time.Time
		var rate string
		if err := rows.Scan(&r.Pair, &rate, &on); err != nil {
			rows.Close()
			return in, err
		}
		r.Date = treasury.NewDate(on.Date())
		if r.Rate, err = treasury.ParseQuantity(rate); err != nil {
			rows.Close()
			return in, fmt.Errorf("rate %s on %s: %w", r.Pair, r.Date, err)
		}
		in.Rates = append(in.Rates, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return in, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT entity_code, name, country, region
		 FROM legal_entities ORDER BY entity_code`)
	if err != nil {
		return in, err
	}
	for rows.Next() {
		var e treasury.LegalEntity
		if err := rows.Scan(&e.Code, &e.Name, &e.Country, &e.Region); err != nil {
			rows.Close()
			return in, err
		}
		in.Entities = append(in.Entities, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return in, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT pool_name, type, region, participants
		 FROM cash_pools ORDER BY pool_name`)
	if err != nil {
		return in, err
	}
	defer rows.Close()
	for rows.Next() {
		var p treasury.CashPool
		if err := rows.Scan(&p.Name, &p.Type, &p.Region, &p.Participants); err != nil {
			return in, err
		}
		in.Pools = append(in.Pools, p)
	}
	return in, rows.Err()
}

func (s *PostgresStore) SaveNettingRun(ctx context.Context, result *treasury.NettingResult) (*NettingRun, error) {
	run := NettingRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO netting_runs (id, created_at, as_of, currency, total_netted, excluded_balances)
		 VALUES ($1, $2, $3::DATE, $4, $5::NUMERIC, $6)`,
		run.ID, run.CreatedAt, result.AsOf.String(), result.Currency,
		result.TotalNetted.String(), result.ExcludedBalances)
	if err != nil {
		return nil, err
	}

	for i, t := range result.Transactions {
		_, err = tx.Exec(ctx,
			`INSERT INTO netting_transactions (run_id, seq, from_party, to_party, amount, currency, tx_date, status, pool)
			 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7::DATE, $8, $9)`,
			run.ID, i, t.From, t.To, t.Amount.String(), t.Currency,
			t.Date.String(), t.Status, t.Pool)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *PostgresStore) NettingRuns(ctx context.Context, limit int) ([]NettingRun, error) {
	query := `SELECT id, created_at, as_of, currency, total_netted::TEXT, excluded_balances
	          FROM netting_runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []NettingRun
	for rows.Next() {
		run := NettingRun{Result: &treasury.NettingResult{}}
		var asOf time.Time
		var netted string
		if err := rows.Scan(&run.ID, &run.CreatedAt, &asOf, &run.Result.Currency,
			&netted, &run.Result.ExcludedBalances); err != nil {
			return nil, err
		}
		run.Result.AsOf = treasury.NewDate(asOf.Date())
		if run.Result.TotalNetted, err = treasury.ParseQuantity(netted); err != nil {
			return nil, fmt.Errorf("netting run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if err := s.loadTransactions(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *PostgresStore) loadTransactions(ctx context.Context, run *NettingRun) error {
	rows, err := s.pool.Query(ctx,
		`SELECT from_party, to_party, amount::TEXT, currency, tx_date, status, pool
		 FROM netting_transactions WHERE run_id = $1 ORDER BY seq`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	run.Result.ByStatus = make(map[treasury.TransactionStatus]int)
	for rows.Next() {
		var t treasury.NettingTransaction
		var on time.Time
		var amount string
		if err := rows.Scan(&t.From, &t.To, &amount, &t.Currency, &on, &t.Status, &t.Pool); err != nil {
			return err
		}
		t.Date = treasury.NewDate(on.Date())
		if t.Amount, err = treasury.ParseQuantity(amount); err != nil {
			return fmt.Errorf("netting run %s: %w", run.ID, err)
		}
		run.Result.Transactions = append(run.Result.Transactions, t)
		run.Result.ByStatus[t.Status]++
	}
	run.Result.TotalTransactions = len(run.Result.Transactions)
	return rows.Err()
}

func (s *PostgresStore) SaveValidationRun(ctx context.Context, report *treasury.ValidationReport) ([]Issue, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	open, err := scanIssues(tx.Query(ctx,
		`SELECT id, created_at, resolved_at, check_type, severity, affected_records, description, check_date, status
		 FROM validation_issues WHERE resolved_at IS NULL`))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	detected := make(map[treasury.CheckType]treasury.ValidationIssue, len(report.Issues))
	for _, issue := range report.Issues {
		detected[issue.CheckType] = issue
	}

	var current []Issue
	for _, issue := range open {
		if d, ok := detected[issue.Detail.CheckType]; ok {
			issue.Detail = d
			delete(detected, d.CheckType)
			_, err = tx.Exec(ctx,
				`UPDATE validation_issues
				 SET affected_records = $2, description = $3, check_date = $4::DATE
				 WHERE id = $1`,
				issue.ID, d.AffectedRecords, d.Description, d.CheckDate.String())
		} else {
			issue.ResolvedAt = &now
			issue.Detail.Status = treasury.IssueResolved
			_, err = tx.Exec(ctx,
				`UPDATE validation_issues SET resolved_at = $2, status = $3 WHERE id = $1`,
				issue.ID, now, treasury.IssueResolved)
		}
		if err != nil {
			return nil, err
		}
		current = append(current, issue)
	}

	for _, issue := range report.Issues {
		d, ok := detected[issue.CheckType]
		if !ok {
			continue
		}
		record := Issue{ID: uuid.NewString(), CreatedAt: now, Detail: d}
		_, err = tx.Exec(ctx,
			`INSERT INTO validation_issues (id, created_at, check_type, severity, affected_records, description, check_date, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7::DATE, $8)`,
			record.ID, record.CreatedAt, d.CheckType, d.Severity,
			d.AffectedRecords, d.Description, d.CheckDate.String(), d.Status)
		if err != nil {
			return nil, err
		}
		current = append(current, record)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *PostgresStore) OpenIssues(ctx context.Context) ([]Issue, error) {
	return scanIssues(s.pool.Query(ctx,
		`SELECT id, created_at, resolved_at, check_type, severity, affected_records, description, check_date, status
		 FROM validation_issues WHERE resolved_at IS NULL ORDER BY created_at`))
}

func scanIssues(rows pgx.Rows, err error) ([]Issue, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		var issue Issue
		var checkDate time.Time
		if err := rows.Scan(&issue.ID, &issue.CreatedAt, &issue.ResolvedAt,
			&issue.Detail.CheckType, &issue.Detail.Severity, &issue.Detail.AffectedRecords,
			&issue.Detail.Description, &checkDate, &issue.Detail.Status); err != nil {
			return nil, err
		}
		issue.Detail.CheckDate = treasury.NewDate(checkDate.Date())
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}
