// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the compound-engine pipeline.
// Implements: prd001-resolution (Compound, InputType, R2.1-R2.4);
//
//	prd002-bioactivity (Activity, R3.1-R3.6);
//	prd003-annotation (ProteinAnnotation, R4.1-R4.3);
//	prd005-pipeline (CompoundProfile, R1.1-R1.5).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import "fmt"

// InputType identifies how a user-supplied query string should be interpreted
// when resolving a compound. Per prd001-resolution R2.1 the three accepted
// forms are a common or IUPAC name, a SMILES string, and an InChI key.
type InputType string

const (
	InputName     InputType = "name"
	InputSMILES   InputType = "smiles"
	InputInChIKey InputType = "inchikey"
)

// ParseInputType converts a user-facing string (CLI flag or form value) into
// an InputType. Matching is exact on the canonical short forms.
func ParseInputType(s string) (InputType, error) {
	switch InputType(s) {
	case InputName, InputSMILES, InputInChIKey:
		return InputType(s), nil
	}
	return "", fmt.Errorf("unknown input type %q (want name, smiles, or inchikey)", s)
}

// Valid reports whether t is one of the three accepted input types.
func (t InputType) Valid() bool {
	switch t {
	case InputName, InputSMILES, InputInChIKey:
		return true
	}
	return false
}

// Compound holds the identity fields returned by the chemical registry for a
// resolved query (prd001-resolution R2.3). Weight is a pointer because the
// registry omits it for some substances; formatting code renders nil as "N/A".
type Compound struct {
	// CID is the registry's numeric compound identifier.
	CID int64 `json:"cid" yaml:"cid"`

	// Name is the IUPAC name when the registry supplies one, otherwise the
	// raw query string the user typed (R2.4).
	Name string `json:"name" yaml:"name"`

	// Formula is the molecular formula (e.g. "C9H8O4").
	Formula string `json:"formula" yaml:"formula"`

	// Weight is the molecular weight in g/mol, nil when not reported.
	Weight *float64 `json:"weight" yaml:"weight"`

	// SMILES is the canonical SMILES string for the compound.
	SMILES string `json:"smiles" yaml:"smiles"`

	// InChIKey is the 27-character hashed InChI identifier.
	InChIKey string `json:"inchikey" yaml:"inchikey"`
}

// Activity is one bioactivity measurement against a biological target
// (prd002-bioactivity R3.4). Value and Potency are pointers for the same
// reason as Compound.Weight: the source reports them as nullable decimals.
type Activity struct {
	// Target is the preferred name of the assay target, or "Unknown" when the
	// target lookup was skipped or configured to keep unnamed rows.
	Target string `json:"target" yaml:"target"`

	// Type is the measurement type: IC50, Ki, Kd, EC50, AC50, or Potency.
	Type string `json:"type" yaml:"type"`

	// Value is the measured quantity in Unit.
	Value *float64 `json:"value" yaml:"value"`

	// Unit is the concentration unit, "nM" or "μM".
	Unit string `json:"unit" yaml:"unit"`

	// Potency is the compound's pChEMBL value for this measurement, a
	// negative log of the molar activity, when the source reports one.
	Potency *float64 `json:"potency" yaml:"potency"`

	// Evidence is the assay description, or "No description" when absent.
	Evidence string `json:"evidence" yaml:"evidence"`

	// Source names the database the measurement came from (e.g. "ChEMBL").
	Source string `json:"source" yaml:"source"`
}

// ProteinAnnotation links a bioactivity target to its protein accession
// (prd003-annotation R4.2).
type ProteinAnnotation struct {
	// Accession is the UniProt accession of the target's first component.
	Accession string `json:"accession" yaml:"accession"`

	// Target is the preferred name of the target this accession belongs to.
	Target string `json:"target" yaml:"target"`

	// Source names the annotation database (e.g. "UniProt").
	Source string `json:"source" yaml:"source"`
}

// CompoundProfile is the aggregate record assembled by one pipeline run
// (prd005-pipeline R1.1). Targets preserves first-seen order and contains no
// duplicates; every ProteinAnnotation.Target appears in Targets.
type CompoundProfile struct {
	// Query is the original user input that produced this profile.
	Query string `json:"query" yaml:"query"`

	// InputType records how Query was interpreted.
	InputType InputType `json:"input_type" yaml:"input_type"`

	// Compound is the resolved chemical identity. Zero-valued (CID 0) when
	// the registry stage failed softly and the pipeline carried on.
	Compound Compound `json:"compound" yaml:"compound"`

	// ChEMBLID is the bioactivity database's molecule identifier, empty when
	// no lookup strategy matched.
	ChEMBLID string `json:"chembl_id" yaml:"chembl_id"`

	// Activities holds the filtered bioactivity measurements, at most the
	// configured cap.
	Activities []Activity `json:"activities" yaml:"activities"`

	// Targets lists distinct target names in order of first appearance.
	Targets []string `json:"targets" yaml:"targets"`

	// Proteins holds accessions for the first few distinct targets.
	Proteins []ProteinAnnotation `json:"proteins" yaml:"proteins"`

	// Diagnostics accumulates human-readable notes about partial failures
	// encountered while building the profile (R1.4). Order follows pipeline
	// stage order.
	Diagnostics []string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// HasActivities reports whether any bioactivity rows survived filtering.
func (p *CompoundProfile) HasActivities() bool { return len(p.Activities) > 0 }

// Resolved reports whether the chemical registry stage produced an identity.
func (p *CompoundProfile) Resolved() bool { return p.Compound.CID != 0 }
