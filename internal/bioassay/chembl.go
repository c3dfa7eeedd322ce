// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bioassay queries the ChEMBL REST API for bioactivity measurements,
// assay targets, and protein accessions.
// Implements: prd002-bioactivity (R1-R5);
//
//	prd003-annotation (R2.1-R2.2, target name and accession lookups);
//	docs/ARCHITECTURE.md § Bioactivity Resolution.
package bioassay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/compound-engine/internal/httputil"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// chemblBase is the ChEMBL web services prefix. Declared as a var so tests
// can substitute an httptest server.
var chemblBase = "https://www.ebi.ac.uk/chembl/api/data"

// ChEMBLBackend queries the ChEMBL API (R2.1).
type ChEMBLBackend struct {
	Client *http.Client
}

// lookupStrategy is one way of mapping a query onto a ChEMBL molecule
// record. Strategies run in declaration order; the first hit wins (R2.2).
type lookupStrategy struct {
	// label names the strategy in diagnostics.
	label string
	// field is the ChEMBL filter expression the value is matched against.
	field string
	value string
}

// LookupMolecule finds the ChEMBL molecule ID for a resolved compound.
//
// Three strategies are tried in order: a case-insensitive synonym match on
// the raw query (name inputs only), then the compound's InChI key, then its
// canonical SMILES. When the upstream resolution failed, the raw query
// itself stands in for the structural strategies if its input type matches.
//
// A strategy that errors is recorded in the returned diagnostics and the
// chain moves on (R2.4); an empty ID with nil error means no strategy
// matched, which callers treat as "compound unknown to ChEMBL" rather than
// a failure.
func (b *ChEMBLBackend) LookupMolecule(ctx context.Context, query string, inputType types.InputType, c *types.Compound, cfg types.BioassayConfig) (string, []string, error) {
	var inchiKey, smiles string
	if c != nil {
		inchiKey, smiles = c.InChIKey, c.SMILES
	}
	if inchiKey == "" && inputType == types.InputInChIKey {
		inchiKey = query
	}
	if smiles == "" && inputType == types.InputSMILES {
		smiles = query
	}

	var strategies []lookupStrategy
	if inputType == types.InputName && query != "" {
		strategies = append(strategies, lookupStrategy{"synonym", "molecule_synonyms__molecule_synonym__iexact", query})
	}
	if inchiKey != "" {
		strategies = append(strategies, lookupStrategy{"InChI key", "molecule_structures__standard_inchi_key", inchiKey})
	}
	if smiles != "" {
		strategies = append(strategies, lookupStrategy{"SMILES", "molecule_structures__canonical_smiles", smiles})
	}

	var diags []string
	for _, s := range strategies {
		id, err := b.fetchMoleculeID(ctx, s.field, s.value, cfg)
		if err != nil {
			diags = append(diags, fmt.Sprintf("ChEMBL %s lookup failed: %v", s.label, err))
			continue
		}
		if id != "" {
			return id, diags, nil
		}
	}
	return "", diags, nil
}

func (b *ChEMBLBackend) fetchMoleculeID(ctx context.Context, field, value string, cfg types.BioassayConfig) (string, error) {
	params := url.Values{
		field:   {value},
		"only":  {"molecule_chembl_id"},
		"limit": {"1"},
	}
	reqURL := chemblBase + "/molecule.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("ChEMBL API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ChEMBL API returned HTTP %d", resp.StatusCode)
	}

	var mr moleculeResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("parsing ChEMBL response: %w", err)
	}
	if len(mr.Molecules) == 0 {
		return "", nil
	}
	return mr.Molecules[0].MoleculeChemblID, nil
}

// ChEMBL molecule endpoint JSON structures.
type moleculeResponse struct {
	Molecules []moleculeRecord `json:"molecules"`
	PageMeta  pageMeta         `json:"page_meta"`
}

type moleculeRecord struct {
	MoleculeChemblID string `json:"molecule_chembl_id"`
}

type pageMeta struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalCount int `json:"total_count"`
}
