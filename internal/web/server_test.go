// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/compound-engine/internal/nlp"
	"github.com/pdiddy/compound-engine/internal/profile"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// --- fakes ---

type fakeProfiles struct {
	profile   *types.CompoundProfile
	err       error
	calls     int
	lastQuery string
	lastType  types.InputType
	cacheLen  int
}

func (f *fakeProfiles) Fetch(_ context.Context, query string, inputType types.InputType, _ io.Writer) (*types.CompoundProfile, error) {
	f.calls++
	f.lastQuery = query
	f.lastType = inputType
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeProfiles) CacheLen() int { return f.cacheLen }

type fakeTagger struct {
	entities []nlp.Entity
	err      error
	lastText string
}

func (f *fakeTagger) Entities(text string) ([]nlp.Entity, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

// --- fixtures ---

func floatPtr(f float64) *float64 { return &f }

func webProfile() *types.CompoundProfile {
	return &types.CompoundProfile{
		Query:     "aspirin",
		InputType: types.InputName,
		Compound:  types.Compound{CID: 2244, Name: "aspirin", Formula: "C9H8O4"},
		ChEMBLID:  "CHEMBL25",
		Activities: []types.Activity{
			{Target: "Cyclooxygenase-1", Type: "IC50", Value: floatPtr(50), Unit: "nM", Evidence: "No description", Source: "ChEMBL"},
		},
		Targets:  []string{"Cyclooxygenase-1"},
		Proteins: []types.ProteinAnnotation{{Accession: "P23219", Target: "Cyclooxygenase-1", Source: "UniProt"}},
	}
}

func testWebCfg() types.EngineConfig {
	return types.EngineConfig{
		Summary: types.SummaryConfig{Enabled: true, MaxSentences: 3},
		Web:     types.WebConfig{SessionTTL: time.Hour},
	}
}

func postProfile(t *testing.T, srv *Server, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile", strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)
	return resp
}

// --- index page ---

func TestServerIndexPage(t *testing.T) {
	srv := NewServer(&fakeProfiles{profile: webProfile()}, nil, testWebCfg(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(resp.Body.String(), `<form id="search">`) {
		t.Error("page missing search form")
	}
}

// --- profile endpoint ---

func TestServerProfilePost(t *testing.T) {
	fake := &fakeProfiles{profile: webProfile()}
	srv := NewServer(fake, nil, testWebCfg(), nil)

	resp := postProfile(t, srv, `{"query": "aspirin", "input_type": "name"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Profile == nil || body.Profile.Compound.CID != 2244 {
		t.Errorf("profile = %+v", body.Profile)
	}
	if body.Summary == "" {
		t.Error("summary should be rendered when enabled")
	}
	if body.Session.Queries != 1 {
		t.Errorf("session queries = %d, want 1", body.Session.Queries)
	}
	if fake.lastQuery != "aspirin" || fake.lastType != types.InputName {
		t.Errorf("fetch called with %q/%q", fake.lastQuery, fake.lastType)
	}

	var cookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie not set")
	}
}

func TestServerProfileSessionCounter(t *testing.T) {
	srv := NewServer(&fakeProfiles{profile: webProfile()}, nil, testWebCfg(), nil)

	first := postProfile(t, srv, `{"query": "aspirin"}`, nil)
	cookies := first.Result().Cookies()

	second := postProfile(t, srv, `{"query": "ibuprofen"}`, cookies)
	var body profileResponse
	if err := json.NewDecoder(second.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Session.Queries != 2 {
		t.Errorf("session queries = %d, want 2 on second request", body.Session.Queries)
	}
	// An established session keeps its cookie.
	for _, c := range second.Result().Cookies() {
		if c.Name == sessionCookie {
			t.Errorf("cookie re-set for established session: %v", c)
		}
	}
}

func TestServerProfileGetParams(t *testing.T) {
	fake := &fakeProfiles{profile: webProfile()}
	srv := NewServer(fake, nil, testWebCfg(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile?query=CCO&input_type=smiles", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	if fake.lastQuery != "CCO" || fake.lastType != types.InputSMILES {
		t.Errorf("fetch called with %q/%q", fake.lastQuery, fake.lastType)
	}
}

func TestServerProfileDefaultsToNameInput(t *testing.T) {
	fake := &fakeProfiles{profile: webProfile()}
	srv := NewServer(fake, nil, testWebCfg(), nil)

	postProfile(t, srv, `{"query": "aspirin"}`, nil)
	if fake.lastType != types.InputName {
		t.Errorf("input type = %q, want name default", fake.lastType)
	}
}

func TestServerProfileBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query": "  "}`},
		{"unknown input type", `{"query": "aspirin", "input_type": "cas"}`},
		{"malformed payload", `{"query": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProfiles{profile: webProfile()}
			srv := NewServer(fake, nil, testWebCfg(), nil)

			resp := postProfile(t, srv, tt.body, nil)
			if resp.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.Code)
			}
			if fake.calls != 0 {
				t.Errorf("pipeline called %d times for a bad request", fake.calls)
			}
		})
	}
}

func TestServerProfileNotFound(t *testing.T) {
	fake := &fakeProfiles{err: fmt.Errorf("%q: %w", "nothing", profile.ErrNotFound)}
	srv := NewServer(fake, nil, testWebCfg(), nil)

	resp := postProfile(t, srv, `{"query": "nothing"}`, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "compound not found") {
		t.Errorf("body = %s", resp.Body.String())
	}
}

func TestServerProfileUpstreamError(t *testing.T) {
	fake := &fakeProfiles{err: errors.New("no data source reachable")}
	srv := NewServer(fake, nil, testWebCfg(), nil)

	resp := postProfile(t, srv, `{"query": "aspirin"}`, nil)
	if resp.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.Code)
	}
}

func TestServerProfileMethodNotAllowed(t *testing.T) {
	srv := NewServer(&fakeProfiles{profile: webProfile()}, nil, testWebCfg(), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.Code)
	}
}

// --- entity decoration ---

func TestServerProfileEntities(t *testing.T) {
	tagger := &fakeTagger{entities: []nlp.Entity{{Label: "MISC", Text: "aspirin", Score: 0.98}}}
	srv := NewServer(&fakeProfiles{profile: webProfile()}, tagger, testWebCfg(), nil)

	resp := postProfile(t, srv, `{"query": "aspirin"}`, nil)
	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entities) != 1 || body.Entities[0].Text != "aspirin" {
		t.Errorf("entities = %+v", body.Entities)
	}
	if tagger.lastText != body.Summary {
		t.Errorf("tagger ran over %q, want the summary", tagger.lastText)
	}
}

func TestServerProfileEntitiesSkippedWithoutSummary(t *testing.T) {
	tagger := &fakeTagger{entities: []nlp.Entity{{Label: "MISC", Text: "aspirin"}}}
	cfg := testWebCfg()
	cfg.Summary.Enabled = false
	srv := NewServer(&fakeProfiles{profile: webProfile()}, tagger, cfg, nil)

	resp := postProfile(t, srv, `{"query": "aspirin"}`, nil)
	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Summary != "" || len(body.Entities) != 0 {
		t.Errorf("summary = %q, entities = %+v; want neither", body.Summary, body.Entities)
	}
	if tagger.lastText != "" {
		t.Error("tagger should not run without a summary")
	}
}

func TestServerProfileEntitiesFailureIsSoft(t *testing.T) {
	tagger := &fakeTagger{err: errors.New("model not loaded")}
	srv := NewServer(&fakeProfiles{profile: webProfile()}, tagger, testWebCfg(), nil)

	resp := postProfile(t, srv, `{"query": "aspirin"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite tagger failure", resp.Code)
	}
	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entities) != 0 {
		t.Errorf("entities = %+v, want none", body.Entities)
	}
}

// --- health and metrics ---

func TestServerHealthz(t *testing.T) {
	srv := NewServer(&fakeProfiles{profile: webProfile(), cacheLen: 2}, nil, testWebCfg(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["cached_profiles"] != float64(2) {
		t.Errorf("cached_profiles = %v, want 2", body["cached_profiles"])
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	srv := NewServer(&fakeProfiles{profile: webProfile()}, nil, testWebCfg(), nil)
	srv.Metrics.RecordFetch("built", 50*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "compound_engine_fetches_total") {
		t.Error("metrics exposition missing fetch counter")
	}
}

func TestServerUnknownPath(t *testing.T) {
	srv := NewServer(&fakeProfiles{profile: webProfile()}, nil, testWebCfg(), nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	resp := httptest.NewRecorder()
	srv.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
}
