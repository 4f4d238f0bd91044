// Package server exposes the treasury analytics engine over HTTP. Reference
// data is uploaded into the store, reports are computed on request from a
// fresh snapshot, and netting/validation runs are persisted for audit.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gtip/treasury"
	"github.com/gtip/treasury/store"
)

// Service handles the analytics endpoints. It is stateless between requests:
// every report is computed from a snapshot built out of the store's current
// records, so two concurrent requests never share mutable state.
type Service struct {
	store    store.Store
	currency string // default reporting currency
}

// NewService creates a service over a store. The currency is the reporting
// currency used when a request does not name one.
func NewService(st store.Store, currency string) *Service {
	return &Service{store: st, currency: currency}
}

// NewRouter builds the chi router with all endpoints mounted.
func NewRouter(s *Service) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(MetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"treasury-analytics"}`))
	})
	r.Handle("/metrics", MetricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		// Reference data uploads.
		r.Post("/accounts", s.PutAccounts)
		r.Post("/balances", s.PutBalances)
		r.Post("/fx_rates", s.PutRates)
		r.Post("/entities", s.PutEntities)
		r.Post("/pools", s.PutPools)

		// Liquidity.
		r.Get("/position", s.GlobalPosition)
		r.Get("/position/regions/{region}", s.RegionalPosition)

		// Pooling.
		r.Get("/pools", s.PoolStatuses)
		r.Get("/pools/{name}", s.PoolCalculation)

		// Netting runs.
		r.Post("/netting/runs", s.RunNetting)
		r.Get("/netting/runs", s.NettingRuns)

		// Validation runs.
		r.Post("/validation/runs", s.RunValidation)
		r.Get("/validation/issues", s.OpenIssues)

		// Overview.
		r.Get("/summary", s.Summary)
		r.Get("/trend", s.Trend)
	})
	return r
}

// snapshot builds a snapshot from the store's current records, honoring the
// request's date and currency query parameters.
func (s *Service) snapshot(r *http.Request) (*treasury.Snapshot, error) {
	on := treasury.Today()
	if q := r.URL.Query().Get("date"); q != "" {
		var err error
		if on, err = treasury.ParseDate(q); err != nil {
			return nil, err
		}
	}
	currency := s.currency
	if q := r.URL.Query().Get("currency"); q != "" {
		currency = q
	}

	in, err := s.store.Inputs(r.Context())
	if err != nil {
		return nil, err
	}
	return treasury.NewSnapshot(on, currency, in)
}

// --- Reference data ---

func putCollection[T any](s *Service, w http.ResponseWriter, r *http.Request,
	put func(r *http.Request, records []T) error) {

	var records []T
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := put(r, records); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]int{"records": len(records)})
}

func (s *Service) PutAccounts(w http.ResponseWriter, r *http.Request) {
	putCollection(s, w, r, func(r *http.Request, records []treasury.BankAccount) error {
		return s.store.PutAccounts(r.Context(), records)
	})
}

func (s *Service) PutBalances(w http.ResponseWriter, r *http.Request) {
	putCollection(s, w, r, func(r *http.Request, records []treasury.CashBalance) error {
		return s.store.PutBalances(r.Context(), records)
	})
}

func (s *Service) PutRates(w http.ResponseWriter, r *http.Request) {
	putCollection(s, w, r, func(r *http.Request, records []treasury.FXRate) error {
		return s.store.PutRates(r.Context(), records)
	})
}

func (s *Service) PutEntities(w http.ResponseWriter, r *http.Request) {
	putCollection(s, w, r, func(r *http.Request, records []treasury.LegalEntity) error {
		return s.store.PutEntities(r.Context(), records)
	})
}

func (s *Service) PutPools(w http.ResponseWriter, r *http.Request) {
	putCollection(s, w, r, func(r *http.Request, records []treasury.CashPool) error {
		return s.store.PutPools(r.Context(), records)
	})
}

// --- Liquidity ---

// GlobalPosition handles GET /api/v1/position
func (s *Service) GlobalPosition(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	position := snap.GlobalPosition()
	ReportsTotal.WithLabelValues("position").Inc()
	ExcludedBalances.WithLabelValues("position").Add(float64(position.ExcludedBalances))
	writeJSON(w, position)
}

// RegionalPosition handles GET /api/v1/position/regions/{region}
func (s *Service) RegionalPosition(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	topN := treasury.DefaultTopEntities
	if q := r.URL.Query().Get("top"); q != "" {
		if topN, err = strconv.Atoi(q); err != nil {
			writeError(w, "invalid top parameter", http.StatusBadRequest)
			return
		}
	}
	ReportsTotal.WithLabelValues("regional_position").Inc()
	writeJSON(w, snap.RegionalPosition(chi.URLParam(r, "region"), topN))
}

// --- Pooling ---

// PoolStatuses handles GET /api/v1/pools
func (s *Service) PoolStatuses(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	statuses, errs := snap.PoolStatuses()
	for _, e := range errs {
		slog.Warn("pool configuration", "err", e)
	}
	ReportsTotal.WithLabelValues("pools").Inc()
	writeJSON(w, statuses)
}

// PoolCalculation handles GET /api/v1/pools/{name}
func (s *Service) PoolCalculation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc, err := snap.PoolCalculation(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	ReportsTotal.WithLabelValues("pool").Inc()
	writeJSON(w, calc)
}

// --- Netting ---

// NettingRunRequest is the JSON body for POST /netting/runs.
type NettingRunRequest struct {
	Date          string `json:"date,omitempty"`
	Currency      string `json:"currency,omitempty"`
	ExcludePooled bool   `json:"exclude_pooled,omitempty"`
}

// RunNetting handles POST /api/v1/netting/runs
func (s *Service) RunNetting(w http.ResponseWriter, r *http.Request) {
	var req NettingRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	on := treasury.Today()
	if req.Date != "" {
		var err error
		if on, err = treasury.ParseDate(req.Date); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	in, err := s.store.Inputs(r.Context())
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	snap, err := treasury.NewSnapshot(on, s.currency, in)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := snap.Netting(treasury.NettingOptions{
		Currency:      req.Currency,
		ExcludePooled: req.ExcludePooled,
	})
	run, err := s.store.SaveNettingRun(r.Context(), result)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	NettingRunsTotal.Inc()
	ExcludedBalances.WithLabelValues("netting").Add(float64(result.ExcludedBalances))
	slog.Info("netting run",
		"id", run.ID,
		"as_of", result.AsOf.String(),
		"currency", result.Currency,
		"transactions", result.TotalTransactions,
		"netted", result.TotalNetted.String(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(run)
}

// NettingRuns handles GET /api/v1/netting/runs
func (s *Service) NettingRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		var err error
		if limit, err = strconv.Atoi(q); err != nil {
			writeError(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
	}
	runs, err := s.store.NettingRuns(r.Context(), limit)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// --- Validation ---

// RunValidation handles POST /api/v1/validation/runs
func (s *Service) RunValidation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report := snap.Validate()
	issues, err := s.store.SaveValidationRun(r.Context(), report)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	open := 0
	for _, i := range issues {
		if i.ResolvedAt == nil {
			open++
		}
	}
	OpenIssues.Set(float64(open))
	slog.Info("validation run",
		"as_of", report.AsOf.String(),
		"issues", report.TotalIssues,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(issues)
}

// OpenIssues handles GET /api/v1/validation/issues
func (s *Service) OpenIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.store.OpenIssues(r.Context())
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, issues)
}

// --- Overview ---

// Summary handles GET /api/v1/summary
func (s *Service) Summary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ReportsTotal.WithLabelValues("summary").Inc()
	writeJSON(w, snap.AnalyticsSummary())
}

// Trend handles GET /api/v1/trend
func (s *Service) Trend(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	from := snap.On().Add(-30)
	if q := r.URL.Query().Get("from"); q != "" {
		if from, err = treasury.ParseDate(q); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	ReportsTotal.WithLabelValues("trend").Inc()
	writeJSON(w, snap.History(from, snap.On()))
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
