// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bioassay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/compound-engine/internal/httputil"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// Measurement types and units accepted by the activity filter (R3.1, R3.2).
// Only exact-relation rows in these units are biologically comparable for
// profile display.
var (
	acceptedTypes = []string{"IC50", "Ki", "Kd", "EC50", "AC50", "Potency"}
	acceptedUnits = []string{"nM", "μM"}
)

const defaultMaxActivities = 15

// ActivityRecord is one raw measurement row from the activity endpoint.
// Decimal fields stay strings here: ChEMBL serializes them as quoted
// decimals and the presentation layer owns numeric formatting.
type ActivityRecord struct {
	TargetID    string
	Type        string
	Value       string
	Units       string
	PChembl     string
	Description string
}

// Activities fetches the filtered measurement rows for one molecule (R3.1-R3.3).
// The server applies the type, relation, and unit filters; the row cap is
// both requested via limit and enforced locally.
func (b *ChEMBLBackend) Activities(ctx context.Context, moleculeID string, cfg types.BioassayConfig) ([]ActivityRecord, error) {
	max := cfg.MaxActivities
	if max <= 0 {
		max = defaultMaxActivities
	}

	params := url.Values{
		"molecule_chembl_id": {moleculeID},
		"standard_type__in":  {strings.Join(acceptedTypes, ",")},
		"standard_relation":  {"="},
		"standard_units__in": {strings.Join(acceptedUnits, ",")},
		"limit":              {fmt.Sprintf("%d", max)},
		"only":               {"target_chembl_id,standard_value,standard_units,standard_type,assay_description,pchembl_value"},
	}
	reqURL := chemblBase + "/activity.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ChEMBL API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ChEMBL API returned HTTP %d", resp.StatusCode)
	}

	var ar activityResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing ChEMBL response: %w", err)
	}

	records := make([]ActivityRecord, 0, len(ar.Activities))
	for _, a := range ar.Activities {
		records = append(records, ActivityRecord{
			TargetID:    a.TargetChemblID,
			Type:        a.StandardType,
			Value:       a.StandardValue,
			Units:       a.StandardUnits,
			PChembl:     a.PChemblValue,
			Description: a.AssayDescription,
		})
		if len(records) >= max {
			break
		}
	}
	return records, nil
}

// ChEMBL activity endpoint JSON structures. Null decimal fields decode to
// empty strings.
type activityResponse struct {
	Activities []activityJSON `json:"activities"`
	PageMeta   pageMeta       `json:"page_meta"`
}

type activityJSON struct {
	TargetChemblID   string `json:"target_chembl_id"`
	StandardType     string `json:"standard_type"`
	StandardValue    string `json:"standard_value"`
	StandardUnits    string `json:"standard_units"`
	PChemblValue     string `json:"pchembl_value"`
	AssayDescription string `json:"assay_description"`
}
