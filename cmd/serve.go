package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gtip/treasury/server"
	"github.com/gtip/treasury/store"
)

type serveCmd struct {
	port     string
	cacheTTL time.Duration
	seed     bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the treasury analytics HTTP server" }
func (*serveCmd) Usage() string {
	return `tre serve [-port <port>] [-seed]

  Serves the analytics reports over HTTP. The store is selected from the
  environment: DATABASE_URL enables PostgreSQL, REDIS_URL adds a
  read-through cache on top of it, and neither falls back to an
  in-memory store.

  With -seed, the CSV data folder is loaded into the store at startup,
  which is the usual way to serve an existing data folder.
`
}

func (p *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.port, "port", "", "Listen port (defaults to $PORT, then 8080).")
	f.DurationVar(&p.cacheTTL, "cache-ttl", 30*time.Second, "TTL of the Redis read-through cache.")
	f.BoolVar(&p.seed, "seed", false, "Load the CSV data folder into the store at startup.")
}

func (p *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := p.port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	st, cleanup, err := openStore(ctx, p.cacheTTL)
	if err != nil {
		slog.Error("store initialization failed", "err", err)
		return subcommands.ExitFailure
	}
	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	if p.seed {
		if err := seedStore(ctx, st); err != nil {
			slog.Error("seeding the store failed", "err", err)
			return subcommands.ExitFailure
		}
	}

	svc := server.NewService(st, *reportingCurrency)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server.NewRouter(svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("treasury analytics listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("treasury analytics stopped")
	return subcommands.ExitSuccess
}

// openStore selects the store from the environment: PostgreSQL when
// DATABASE_URL is set, wrapped in a Redis cache when REDIS_URL is set too,
// in-memory otherwise.
func openStore(ctx context.Context, ttl time.Duration) (store.Store, []func(), error) {
	var cleanup []func()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		return store.NewMemoryStore(), cleanup, nil
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = append(cleanup, pool.Close)
	var st store.Store = store.NewPostgresStore(pool)
	slog.Info("connected to PostgreSQL")

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, ttl)
		slog.Info("Redis cache enabled", "ttl", ttl)
	}
	return st, cleanup, nil
}

// seedStore loads the CSV data folder into the store.
func seedStore(ctx context.Context, st store.Store) error {
	in, err := DecodeInputs()
	if err != nil {
		return err
	}
	if err := st.PutAccounts(ctx, in.Accounts); err != nil {
		return err
	}
	if err := st.PutBalances(ctx, in.Balances); err != nil {
		return err
	}
	if err := st.PutRates(ctx, in.Rates); err != nil {
		return err
	}
	if err := st.PutEntities(ctx, in.Entities); err != nil {
		return err
	}
	if err := st.PutPools(ctx, in.Pools); err != nil {
		return err
	}
	slog.Info("store seeded from data folder",
		"accounts", len(in.Accounts),
		"balances", len(in.Balances),
		"rates", len(in.Rates),
		"entities", len(in.Entities),
		"pools", len(in.Pools),
	)
	return nil
}
