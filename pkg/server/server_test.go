package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/flowplan/flowplan/pkg/pipeline"
	"github.com/flowplan/flowplan/pkg/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(Config{
		Addr:   ":0",
		Runner: pipeline.NewRunner(nil, nil, logger),
		Store:  store.NewMemoryStore(),
		Logger: logger,
	})
}

func postPlan(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestPlanCreateAndGet(t *testing.T) {
	srv := testServer(t)

	w := postPlan(t, srv, `{"item": "iron-plate", "rate": 60}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var created struct {
		ID    string `json:"id"`
		Stats struct {
			NodeCount  int     `json:"node_count"`
			TotalPower float64 `json:"total_power"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("response has no plan ID")
	}
	if created.Stats.NodeCount == 0 || created.Stats.TotalPower == 0 {
		t.Errorf("stats not populated: %+v", created.Stats)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/plan/"+created.ID, nil)
	got := httptest.NewRecorder()
	srv.Handler().ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200: %s", got.Code, got.Body.String())
	}
	if !bytes.Contains(got.Body.Bytes(), []byte(created.ID)) {
		t.Error("GET response does not echo the plan ID")
	}
}

func TestPlanCreateUnknownItem(t *testing.T) {
	srv := testServer(t)
	w := postPlan(t, srv, `{"item": "unobtainium"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != "RECIPE_NOT_FOUND" {
		t.Errorf("code = %q, want RECIPE_NOT_FOUND", resp.Code)
	}
}

func TestPlanCreateBadBody(t *testing.T) {
	srv := testServer(t)
	w := postPlan(t, srv, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPlanCreateMissingItem(t *testing.T) {
	srv := testServer(t)
	w := postPlan(t, srv, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestPlanGetNotFound(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/plan/no-such-plan", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPlanList(t *testing.T) {
	srv := testServer(t)
	for _, body := range []string{
		`{"item": "iron-rod", "rate": 15}`,
		`{"item": "screw", "rate": 40}`,
	} {
		if w := postPlan(t, srv, body); w.Code != http.StatusCreated {
			t.Fatalf("seed plan failed: %d %s", w.Code, w.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/plan?limit=10", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Plans []json.RawMessage `json:"plans"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Plans) != 2 {
		t.Errorf("plan count = %d, want 2", len(resp.Plans))
	}
}

func TestPlanListBadLimit(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/plan?limit=zero", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestInboundRequestIDPreserved(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("X-Request-ID = %q, want upstream-id", got)
	}
}
