// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bioassay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/compound-engine/internal/httputil"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// TargetInfo describes one assay target: its preferred name and the UniProt
// accessions of its protein components, in API order.
type TargetInfo struct {
	ID         string
	Name       string
	Accessions []string
}

// Target fetches one target record by ChEMBL ID (R4.1). Callers cache
// results per run since several activity rows usually share a target.
func (b *ChEMBLBackend) Target(ctx context.Context, targetID string, cfg types.BioassayConfig) (*TargetInfo, error) {
	reqURL := fmt.Sprintf("%s/target/%s.json", chemblBase, targetID)

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

	var tr targetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing ChEMBL response: %w", err)
	}

	info := &TargetInfo{ID: targetID, Name: tr.PrefName}
	for _, comp := range tr.TargetComponents {
		if comp.Accession != "" {
			info.Accessions = append(info.Accessions, comp.Accession)
		}
	}
	return info, nil
}

// ChEMBL target endpoint JSON structures.
type targetResponse struct {
	PrefName         string            `json:"pref_name"`
	TargetComponents []targetComponent `json:"target_components"`
}

type targetComponent struct {
	Accession string `json:"accession"`
}
