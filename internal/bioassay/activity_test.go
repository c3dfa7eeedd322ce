// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bioassay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleActivitiesJSON = `{
  "activities": [
    {
      "target_chembl_id": "CHEMBL204",
      "standard_type": "IC50",
      "standard_value": "50.0",
      "standard_units": "nM",
      "pchembl_value": "7.30",
      "assay_description": "Inhibition of COX-1 in human platelets"
    },
    {
      "target_chembl_id": "CHEMBL230",
      "standard_type": "Ki",
      "standard_value": "120.5",
      "standard_units": "nM",
      "pchembl_value": null,
      "assay_description": null
    },
    {
      "target_chembl_id": "CHEMBL204",
      "standard_type": "EC50",
      "standard_value": "2.1",
      "standard_units": "μM",
      "pchembl_value": "5.68",
      "assay_description": "Effect on prostaglandin synthesis"
    }
  ],
  "page_meta": {"limit": 15, "offset": 0, "total_count": 3}
}`

// --- ChEMBLBackend.Activities ---

func TestActivities(t *testing.T) {
	var gotQuery map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleActivitiesJSON)
	}))
	defer ts.Close()

	old := chemblBase
	chemblBase = ts.URL
	defer func() { chemblBase = old }()

	b := &ChEMBLBackend{Client: ts.Client()}
	records, err := b.Activities(context.Background(), "CHEMBL25", testCfg())
	if err != nil {
		t.Fatalf("Activities: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	r0 := records[0]
	if r0.TargetID != "CHEMBL204" || r0.Type != "IC50" || r0.Value != "50.0" || r0.Units != "nM" {
		t.Errorf("first record = %+v", r0)
	}
	if r0.PChembl != "7.30" {
		t.Errorf("PChembl = %q, want 7.30", r0.PChembl)
	}
	if r0.Description != "Inhibition of COX-1 in human platelets" {
		t.Errorf("Description = %q", r0.Description)
	}

	// Null decimal and description fields decode to empty strings.
	r1 := records[1]
	if r1.PChembl != "" || r1.Description != "" {
		t.Errorf("null fields should decode empty, got %+v", r1)
	}

	// Filter parameters: exact relation, accepted types and units, row cap.
	checks := map[string]string{
		"molecule_chembl_id": "CHEMBL25",
		"standard_type__in":  "IC50,Ki,Kd,EC50,AC50,Potency",
		"standard_relation":  "=",
		"standard_units__in": "nM,μM",
		"limit":              "15",
		"only":               "target_chembl_id,standard_value,standard_units,standard_type,assay_description,pchembl_value",
	}
	for param, want := range checks {
		if got := gotQuery[param]; len(got) != 1 || got[0] != want {
			t.Errorf("param %s = %v, want %q", param, got, want)
		}
	}
}

func TestActivitiesLocalCap(t *testing.T) {
	// A server that over-delivers must still be capped locally.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleActivitiesJSON)
	}))
	defer ts.Close()

	old := chemblBase
	chemblBase = ts.URL
	defer func() { chemblBase = old }()

	cfg := testCfg()
	cfg.MaxActivities = 2

	b := &ChEMBLBackend{Client: ts.Client()}
	records, err := b.Activities(context.Background(), "CHEMBL25", cfg)
	if err != nil {
		t.Fatalf("Activities: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) = %d, want cap of 2", len(records))
	}
}

func TestActivitiesDefaultCap(t *testing.T) {
	var gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"activities":[],"page_meta":{"limit":15,"offset":0,"total_count":0}}`)
	}))
	defer ts.Close()

	old := chemblBase
	chemblBase = ts.URL
	defer func() { chemblBase = old }()

	cfg := testCfg()
	cfg.MaxActivities = 0

	b := &ChEMBLBackend{Client: ts.Client()}
	if _, err := b.Activities(context.Background(), "CHEMBL25", cfg); err != nil {
		t.Fatalf("Activities: %v", err)
	}
	if gotLimit != "15" {
		t.Errorf("limit = %q, want default 15", gotLimit)
	}
}

func TestActivitiesEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"activities":[],"page_meta":{"limit":15,"offset":0,"total_count":0}}`)
	}))
	defer ts.Close()

	old := chemblBase
	chemblBase = ts.URL
	defer func() { chemblBase = old }()

	b := &ChEMBLBackend{Client: ts.Client()}
	records, err := b.Activities(context.Background(), "CHEMBL999999", testCfg())
	if err != nil {
		t.Fatalf("Activities: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestActivitiesHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := chemblBase
	chemblBase = ts.URL
	defer func() { chemblBase = old }()

	b := &ChEMBLBackend{Client: ts.Client()}
	_, err := b.Activities(context.Background(), "CHEMBL25", testCfg())
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("expected HTTP 500 error, got: %v", err)
	}
}
