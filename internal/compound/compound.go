// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compound resolves user queries to chemical identities using the
// PubChem PUG REST API.
// Implements: prd001-resolution (R1-R5);
//
//	docs/ARCHITECTURE.md § Compound Resolution.
package compound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/compound-engine/internal/httputil"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// pubchemBase is the PUG REST prefix. Declared as a var so tests can
// substitute an httptest server.
var pubchemBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// ErrNoMatch is returned when the registry holds no compound for the query.
// Callers treat this as a definitive not-found, distinct from transport
// failures (R2.6).
var ErrNoMatch = errors.New("no compound matched the query")

// propertyList names the fields requested from the registry.
const propertyList = "IUPACName,MolecularFormula,MolecularWeight,CanonicalSMILES,InChIKey"

// Resolver queries the PubChem compound registry (R2.1).
type Resolver struct {
	Client *http.Client
	// APIKey is an optional NCBI key that raises the request rate limit.
	APIKey string
}

// namespace maps an input type onto the PUG REST path segment (R2.2).
func namespace(t types.InputType) string {
	switch t {
	case types.InputSMILES:
		return "smiles"
	case types.InputInChIKey:
		return "inchikey"
	default:
		return "name"
	}
}

// Resolve looks up one query and returns the first matching compound.
// The query is sent as a POST form rather than a path segment because
// SMILES strings contain characters ("/", "#") that break URL paths (R2.5).
//
// A 404 from PUG means the registry holds no record for the query and maps
// to ErrNoMatch; every other failure is a transport error the caller may
// treat as soft.
func (r *Resolver) Resolve(ctx context.Context, query string, inputType types.InputType, cfg types.CompoundConfig) (*types.Compound, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty compound query")
	}

	ns := namespace(inputType)
	reqURL := fmt.Sprintf("%s/compound/%s/property/%s/JSON", pubchemBase, ns, propertyList)

	form := url.Values{ns: {query}}
	if r.APIKey != "" {
		form.Set("api_key", r.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent(cfg))

	resp, err := httputil.DoWithRetry(ctx, r.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubChem API request: %w", err)
	}
	defer resp.Body.Close()

	// PUG reports "no CID found" as a 404 fault document.
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoMatch
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubChem API returned HTTP %d", resp.StatusCode)
	}

	var pr propertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("parsing PubChem response: %w", err)
	}
	if len(pr.PropertyTable.Properties) == 0 {
		return nil, ErrNoMatch
	}

	// First match wins; PUG orders multiple hits by registry relevance.
	p := pr.PropertyTable.Properties[0]
	c := &types.Compound{
		CID:      p.CID,
		Name:     p.IUPACName,
		Formula:  p.MolecularFormula,
		SMILES:   p.CanonicalSMILES,
		InChIKey: p.InChIKey,
	}
	if c.Name == "" {
		// Registry has no IUPAC name; fall back to what the user typed (R2.4).
		c.Name = query
	}
	if p.MolecularWeight != "" {
		if w, parseErr := p.MolecularWeight.Float64(); parseErr == nil {
			c.Weight = &w
		}
	}
	return c, nil
}

// userAgent appends the contact email to the configured agent string, as the
// NCBI usage policy asks of automated clients.
func userAgent(cfg types.CompoundConfig) string {
	if cfg.ContactEmail == "" {
		return cfg.UserAgent
	}
	return fmt.Sprintf("%s (%s)", cfg.UserAgent, cfg.ContactEmail)
}

// PubChem PUG REST JSON structures. MolecularWeight arrives as a quoted
// decimal in current PUG responses; json.Number tolerates both forms.
type propertyResponse struct {
	PropertyTable propertyTable `json:"PropertyTable"`
}

type propertyTable struct {
	Properties []compoundProperties `json:"Properties"`
}

type compoundProperties struct {
	CID              int64       `json:"CID"`
	IUPACName        string      `json:"IUPACName"`
	MolecularFormula string      `json:"MolecularFormula"`
	MolecularWeight  json.Number `json:"MolecularWeight"`
	CanonicalSMILES  string      `json:"CanonicalSMILES"`
	InChIKey         string      `json:"InChIKey"`
}
