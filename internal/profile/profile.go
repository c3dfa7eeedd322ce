// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile assembles compound profiles from the chemical registry
// and bioactivity stages, with caching, retries, and a connectivity probe.
// Implements: prd005-pipeline (R1-R5);
//
//	prd003-annotation (R1-R4, target and protein aggregation);
//	docs/ARCHITECTURE.md § Profile Assembly.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pdiddy/compound-engine/internal/bioassay"
	"github.com/pdiddy/compound-engine/internal/compound"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// ErrNotFound is returned when the chemical registry definitively holds no
// compound for the query (R2.2). Transport failures never map to it; they
// degrade to diagnostics instead.
var ErrNotFound = errors.New("compound not found")

// retryInitialInterval seeds the exponential backoff between pipeline
// attempts. Tests override this to avoid real sleeps.
var retryInitialInterval = 500 * time.Millisecond

const defaultRetryAttempts = 3

// ChemistrySource resolves queries to compound identities.
// *compound.Resolver implements it.
type ChemistrySource interface {
	Resolve(ctx context.Context, query string, inputType types.InputType, cfg types.CompoundConfig) (*types.Compound, error)
}

// ActivitySource supplies bioactivity measurements and target records.
// *bioassay.ChEMBLBackend implements it.
type ActivitySource interface {
	LookupMolecule(ctx context.Context, query string, inputType types.InputType, c *types.Compound, cfg types.BioassayConfig) (string, []string, error)
	Activities(ctx context.Context, moleculeID string, cfg types.BioassayConfig) ([]bioassay.ActivityRecord, error)
	Target(ctx context.Context, targetID string, cfg types.BioassayConfig) (*bioassay.TargetInfo, error)
}

// Metrics receives pipeline counters. The web layer provides a Prometheus
// implementation; a nil recorder disables instrumentation.
type Metrics interface {
	RecordFetch(outcome string, elapsed time.Duration)
}

type buildFunc func(ctx context.Context, query string, inputType types.InputType, w io.Writer) (*types.CompoundProfile, error)

// Fetcher runs the profile pipeline. Completed runs (including definitive
// not-found outcomes) are cached; transient failures are retried with
// exponential backoff (R5.1-R5.4).
type Fetcher struct {
	chem ChemistrySource
	bio  ActivitySource
	cfg  types.EngineConfig
	log  *slog.Logger

	// Metrics receives per-fetch counters; nil disables instrumentation.
	Metrics Metrics

	cache *profileCache
	// build is swappable so tests can exercise the retry path directly.
	build buildFunc
}

// NewFetcher wires the pipeline stages together. A nil logger discards.
func NewFetcher(chem ChemistrySource, bio ActivitySource, cfg types.EngineConfig, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	f := &Fetcher{
		chem:  chem,
		bio:   bio,
		cfg:   cfg,
		log:   log,
		cache: newProfileCache(cfg.Profile.CacheEntries, cfg.Profile.CacheTTL),
	}
	f.build = f.buildProfile
	return f
}

// Fetch returns the profile for one query, serving from cache when fresh.
// Warnings about partial failures are written to w as they happen; the same
// information lands in the profile's Diagnostics.
//
// Fetch returns ErrNotFound (wrapped with the query) when the registry has
// no such compound, and that outcome is cached like a success so repeated
// misses stay cheap (R5.2).
func (f *Fetcher) Fetch(ctx context.Context, query string, inputType types.InputType, w io.Writer) (*types.CompoundProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if !inputType.Valid() {
		return nil, fmt.Errorf("unknown input type %q", inputType)
	}

	start := time.Now()
	if cached, ok := f.cache.get(query, inputType); ok {
		f.record("cache_hit", start)
		f.log.Debug("cache hit", "query", query, "type", string(inputType))
		if cached.notFound {
			return nil, fmt.Errorf("%q: %w", query, ErrNotFound)
		}
		return cached.profile, nil
	}

	p, err := f.fetchWithRetry(ctx, query, inputType, w)
	switch {
	case errors.Is(err, ErrNotFound):
		f.cache.putNotFound(query, inputType)
		f.record("not_found", start)
		return nil, err
	case err != nil:
		f.record("error", start)
		return nil, err
	}

	f.cache.put(query, inputType, p)
	f.record("built", start)
	f.log.Info("profile assembled", "query", query, "cid", p.Compound.CID,
		"activities", len(p.Activities), "targets", len(p.Targets))
	return p, nil
}

// CacheLen reports how many profiles are currently cached.
func (f *Fetcher) CacheLen() int { return f.cache.len() }

func (f *Fetcher) record(outcome string, start time.Time) {
	if f.Metrics != nil {
		f.Metrics.RecordFetch(outcome, time.Since(start))
	}
}

// fetchWithRetry runs the build up to the configured attempt count.
// Definitive not-found outcomes and context cancellation are permanent;
// everything else backs off and tries again (R5.3).
func (f *Fetcher) fetchWithRetry(ctx context.Context, query string, inputType types.InputType, w io.Writer) (*types.CompoundProfile, error) {
	attempts := f.cfg.Profile.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	var p *types.CompoundProfile
	operation := func() error {
		built, err := f.build(ctx, query, inputType, w)
		if err != nil {
			if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			f.log.Warn("profile build failed, will retry", "query", query, "error", err.Error())
			return err
		}
		p = built
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return p, nil
}

// buildProfile performs one complete assembly pass (R1.1-R1.5). Stage
// failures short of a definitive not-found degrade to diagnostics so a
// partially populated profile still renders; only a run that learned
// nothing while every source misbehaved is reported as an error, which
// makes it retryable.
func (f *Fetcher) buildProfile(ctx context.Context, query string, inputType types.InputType, w io.Writer) (*types.CompoundProfile, error) {
	p := &types.CompoundProfile{Query: query, InputType: inputType}

	comp, err := f.chem.Resolve(ctx, query, inputType, f.cfg.Compound)
	compoundFailed := false
	switch {
	case errors.Is(err, compound.ErrNoMatch):
		return nil, fmt.Errorf("%q: %w", query, ErrNotFound)
	case err != nil:
		// Transport trouble is soft: ChEMBL may still recognize the query.
		compoundFailed = true
		p.Diagnostics = append(p.Diagnostics, fmt.Sprintf("compound lookup failed: %v", err))
		fmt.Fprintf(w, "warning: compound lookup failed: %v\n", err)
	default:
		p.Compound = *comp
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var resolved *types.Compound
	if p.Resolved() {
		resolved = &p.Compound
	}

	chemblID, lookupDiags, err := f.bio.LookupMolecule(ctx, query, inputType, resolved, f.cfg.Bioassay)
	if err != nil {
		lookupDiags = append(lookupDiags, fmt.Sprintf("ChEMBL lookup failed: %v", err))
	}
	p.Diagnostics = append(p.Diagnostics, lookupDiags...)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if chemblID == "" {
		lookupFailed := len(lookupDiags) > 0
		if compoundFailed && lookupFailed {
			return nil, fmt.Errorf("no data source reachable for %q: %s", query, strings.Join(p.Diagnostics, "; "))
		}
		if !lookupFailed {
			p.Diagnostics = append(p.Diagnostics, "no ChEMBL entry found")
		}
		return p, nil
	}
	p.ChEMBLID = chemblID

	records, err := f.bio.Activities(ctx, chemblID, f.cfg.Bioassay)
	if err != nil {
		p.Diagnostics = append(p.Diagnostics, fmt.Sprintf("bioactivity fetch failed: %v", err))
		fmt.Fprintf(w, "warning: bioactivity fetch failed: %v\n", err)
		return p, nil
	}

	targets := newTargetLookup(f.bio, f.cfg.Bioassay)
	f.attachActivities(ctx, p, records, targets)
	f.annotateProteins(ctx, p, records, targets)
	return p, nil
}

// attachActivities converts raw measurement rows into profile activities,
// resolving each row's target name. When a target lookup fails the row is
// dropped unless KeepUnnamedTargets keeps it as "Unknown" (R3.4, R3.5).
func (f *Fetcher) attachActivities(ctx context.Context, p *types.CompoundProfile, records []bioassay.ActivityRecord, targets *targetLookup) {
	for _, rec := range records {
		name := ""
		if rec.TargetID != "" {
			info, err := targets.get(ctx, rec.TargetID)
			if err != nil {
				if !f.cfg.Bioassay.KeepUnnamedTargets {
					p.Diagnostics = append(p.Diagnostics, fmt.Sprintf("target %s lookup failed: %v", rec.TargetID, err))
					continue
				}
			} else {
				name = info.Name
			}
		} else if !f.cfg.Bioassay.KeepUnnamedTargets {
			continue
		}
		if name == "" {
			name = "Unknown"
		}

		evidence := rec.Description
		if evidence == "" {
			evidence = "No description"
		}

		p.Activities = append(p.Activities, types.Activity{
			Target:   name,
			Type:     rec.Type,
			Value:    parseDecimal(rec.Value),
			Unit:     rec.Units,
			Potency:  parseDecimal(rec.PChembl),
			Evidence: evidence,
			Source:   "ChEMBL",
		})

		if !contains(p.Targets, name) {
			p.Targets = append(p.Targets, name)
		}
	}
}

// annotateProteins attaches UniProt accessions for the first MaxTargets
// distinct targets that contributed activities (R4.1-R4.3). Target records
// are shared with the activity pass through the per-run lookup cache, so no
// target is fetched twice.
func (f *Fetcher) annotateProteins(ctx context.Context, p *types.CompoundProfile, records []bioassay.ActivityRecord, targets *targetLookup) {
	max := f.cfg.Bioassay.MaxTargets
	if max <= 0 {
		max = 3
	}

	seen := map[string]bool{}
	attempted := 0
	for _, rec := range records {
		if rec.TargetID == "" || seen[rec.TargetID] {
			continue
		}
		seen[rec.TargetID] = true
		// Only the first MaxTargets distinct targets are considered; a
		// failed annotation is not backfilled by a later target.
		if attempted >= max {
			break
		}
		attempted++

		info, err := targets.get(ctx, rec.TargetID)
		if err != nil {
			// Already surfaced during the activity pass.
			continue
		}
		if len(info.Accessions) == 0 {
			continue
		}
		name := info.Name
		if name == "" {
			name = "Unknown"
		}
		if !contains(p.Targets, name) {
			// Row was dropped during the activity pass; keep the profile
			// consistent by skipping its protein too.
			continue
		}
		p.Proteins = append(p.Proteins, types.ProteinAnnotation{
			Accession: info.Accessions[0],
			Target:    name,
			Source:    "UniProt",
		})
	}
}

// targetLookup memoizes target fetches for one pipeline run, failures
// included, so the activity and protein passes see a consistent view.
type targetLookup struct {
	bio  ActivitySource
	cfg  types.BioassayConfig
	hits map[string]*bioassay.TargetInfo
	errs map[string]error
}

func newTargetLookup(bio ActivitySource, cfg types.BioassayConfig) *targetLookup {
	return &targetLookup{
		bio:  bio,
		cfg:  cfg,
		hits: map[string]*bioassay.TargetInfo{},
		errs: map[string]error{},
	}
}

func (t *targetLookup) get(ctx context.Context, targetID string) (*bioassay.TargetInfo, error) {
	if info, ok := t.hits[targetID]; ok {
		return info, nil
	}
	if err, ok := t.errs[targetID]; ok {
		return nil, err
	}
	info, err := t.bio.Target(ctx, targetID, t.cfg)
	if err != nil {
		t.errs[targetID] = err
		return nil, err
	}
	t.hits[targetID] = info
	return info, nil
}

// parseDecimal converts ChEMBL's quoted decimals to floats. Empty or
// malformed values become nil and render downstream as "N/A".
func parseDecimal(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
