package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gtip/treasury"
	"github.com/gtip/treasury/server"
	"github.com/gtip/treasury/store"
)

// newTestEnv creates a test Service with in-memory store and chi router.
func newTestEnv(t *testing.T) (*store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	svc := server.NewService(ms, "USD")
	return ms, server.NewRouter(svc)
}

// seedTreasury loads a small two-entity organization into the store.
func seedTreasury(t *testing.T, ms *store.MemoryStore, on treasury.Date) {
	t.Helper()
	ctx := context.Background()

	if err := ms.PutEntities(ctx, []treasury.LegalEntity{
		{Code: "A", Name: "Alpha Corp", Country: "US", Region: "Americas"},
		{Code: "B", Name: "Beta GmbH", Country: "DE", Region: "EMEA"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := ms.PutAccounts(ctx, []treasury.BankAccount{
		{ID: "ACC-A1", Entity: "A", Currency: "USD", Region: "Americas", Type: treasury.Operating},
		{ID: "ACC-B1", Entity: "B", Currency: "EUR", Region: "EMEA", Type: treasury.Operating},
	}); err != nil {
		t.Fatal(err)
	}
	if err := ms.PutBalances(ctx, []treasury.CashBalance{
		{Account: "ACC-A1", Date: on, Currency: "USD", Amount: treasury.Q(1000)},
		{Account: "ACC-B1", Date: on, Currency: "EUR", Amount: treasury.Q(-500)},
	}); err != nil {
		t.Fatal(err)
	}
	if err := ms.PutRates(ctx, []treasury.FXRate{
		{Pair: "EUR/USD", Rate: treasury.Q(1.10), Date: on},
	}); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func post(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, router := newTestEnv(t)
	w := get(t, router, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
}

func TestUploadAndPosition(t *testing.T) {
	ms, router := newTestEnv(t)
	on := treasury.NewDate(2025, time.March, 31)
	seedTreasury(t, ms, on)

	w := get(t, router, "/api/v1/position?date="+on.String())
	if w.Code != http.StatusOK {
		t.Fatalf("position returned %d: %s", w.Code, w.Body)
	}

	var position treasury.GlobalPosition
	if err := json.Unmarshal(w.Body.Bytes(), &position); err != nil {
		t.Fatal(err)
	}
	// 1000 USD + (-500 EUR * 1.10) = 450 USD
	if !position.TotalLiquidity.Equal(treasury.M(450, "USD")) {
		t.Errorf("total liquidity = %s, want 450 USD", position.TotalLiquidity)
	}
	if position.TotalAccounts != 2 {
		t.Errorf("total accounts = %d, want 2", position.TotalAccounts)
	}
}

func TestUploadViaHTTP(t *testing.T) {
	_, router := newTestEnv(t)

	w := post(t, router, "/api/v1/accounts", []treasury.BankAccount{
		{ID: "ACC-1", Entity: "A", Currency: "USD", Type: treasury.Operating},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("accounts upload returned %d: %s", w.Code, w.Body)
	}
	var resp map[string]int
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["records"] != 1 {
		t.Errorf("records = %d, want 1", resp["records"])
	}

	if w := post(t, router, "/api/v1/accounts", "not an array"); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body returned %d, want 400", w.Code)
	}
}

func TestRegionalPosition(t *testing.T) {
	ms, router := newTestEnv(t)
	on := treasury.NewDate(2025, time.March, 31)
	seedTreasury(t, ms, on)

	w := get(t, router, "/api/v1/position/regions/Americas?date="+on.String())
	if w.Code != http.StatusOK {
		t.Fatalf("regional position returned %d: %s", w.Code, w.Body)
	}
	var regional treasury.RegionalPosition
	if err := json.Unmarshal(w.Body.Bytes(), &regional); err != nil {
		t.Fatal(err)
	}
	if regional.AccountCount != 1 {
		t.Errorf("account count = %d, want 1", regional.AccountCount)
	}
	if !regional.Total.Equal(treasury.M(1000, "USD")) {
		t.Errorf("regional total = %s, want 1000 USD", regional.Total)
	}
}

func TestNettingRunPersisted(t *testing.T) {
	ms, router := newTestEnv(t)
	on := treasury.NewDate(2025, time.March, 31)
	seedTreasury(t, ms, on)

	w := post(t, router, "/api/v1/netting/runs", server.NettingRunRequest{Date: on.String()})
	if w.Code != http.StatusCreated {
		t.Fatalf("netting run returned %d: %s", w.Code, w.Body)
	}
	var run store.NettingRun
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("run id not assigned")
	}
	// A (+1000) funds B (-550): one settlement
	if run.Result.TotalTransactions != 1 {
		t.Fatalf("got %d transactions, want 1", run.Result.TotalTransactions)
	}
	tx := run.Result.Transactions[0]
	if tx.From != "A" || tx.To != "B" {
		t.Errorf("settlement %s->%s, want A->B", tx.From, tx.To)
	}
	if !tx.Amount.Equal(treasury.Q(550)) {
		t.Errorf("settlement amount = %s, want 550", tx.Amount)
	}

	// the run is listed afterwards
	w = get(t, router, "/api/v1/netting/runs?limit=5")
	if w.Code != http.StatusOK {
		t.Fatalf("netting runs returned %d", w.Code)
	}
	var runs []store.NettingRun
	json.Unmarshal(w.Body.Bytes(), &runs)
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("persisted runs = %d, want the one just created", len(runs))
	}
}

func TestValidationRunLifecycle(t *testing.T) {
	ms, router := newTestEnv(t)
	on := treasury.NewDate(2025, time.March, 31)
	seedTreasury(t, ms, on)

	// B holds -500 EUR on a non-overdraft account
	w := post(t, router, "/api/v1/validation/runs?date="+on.String(), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("validation run returned %d: %s", w.Code, w.Body)
	}
	var issues []store.Issue
	if err := json.Unmarshal(w.Body.Bytes(), &issues); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, i := range issues {
		if i.Detail.CheckType == treasury.CheckNegativeCash {
			found = true
		}
	}
	if !found {
		t.Fatalf("negative cash issue not opened, got %v", issues)
	}

	w = get(t, router, "/api/v1/validation/issues")
	if w.Code != http.StatusOK {
		t.Fatalf("open issues returned %d", w.Code)
	}
	var open []store.Issue
	json.Unmarshal(w.Body.Bytes(), &open)
	if len(open) == 0 {
		t.Error("no open issues listed after a failing run")
	}
}

func TestPoolEndpoints(t *testing.T) {
	ms, router := newTestEnv(t)
	on := treasury.NewDate(2025, time.March, 31)
	seedTreasury(t, ms, on)

	ctx := context.Background()
	if err := ms.PutPools(ctx, []treasury.CashPool{
		{Name: "US Pool", Type: treasury.Notional, Region: "Americas", Participants: []string{"ACC-A1"}},
	}); err != nil {
		t.Fatal(err)
	}

	w := get(t, router, "/api/v1/pools?date="+on.String())
	if w.Code != http.StatusOK {
		t.Fatalf("pools returned %d: %s", w.Code, w.Body)
	}
	var statuses []treasury.PoolStatus
	if err := json.Unmarshal(w.Body.Bytes(), &statuses); err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d pool statuses, want 1", len(statuses))
	}

	w = get(t, router, "/api/v1/pools/US%20Pool?date="+on.String())
	if w.Code != http.StatusOK {
		t.Fatalf("pool calculation returned %d: %s", w.Code, w.Body)
	}

	if w := get(t, router, "/api/v1/pools/Nope?date="+on.String()); w.Code != http.StatusNotFound {
		t.Errorf("unknown pool returned %d, want 404", w.Code)
	}
}

func TestSummaryAndTrend(t *testing.T) {
	ms, router := newTestEnv(t)
	on := treasury.NewDate(2025, time.March, 31)
	seedTreasury(t, ms, on)

	w := get(t, router, "/api/v1/summary?date="+on.String())
	if w.Code != http.StatusOK {
		t.Fatalf("summary returned %d: %s", w.Code, w.Body)
	}

	// two more days of balances for the history
	ms.PutBalances(context.Background(), []treasury.CashBalance{
		{Account: "ACC-A1", Date: on.Add(-2), Currency: "USD", Amount: treasury.Q(800)},
		{Account: "ACC-A1", Date: on.Add(-1), Currency: "USD", Amount: treasury.Q(900)},
	})

	w = get(t, router, "/api/v1/trend?date="+on.String()+"&from="+on.Add(-2).String())
	if w.Code != http.StatusOK {
		t.Fatalf("trend returned %d: %s", w.Code, w.Body)
	}
	var points []treasury.TrendPoint
	if err := json.Unmarshal(w.Body.Bytes(), &points); err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Errorf("got %d trend points, want 3", len(points))
	}
}
