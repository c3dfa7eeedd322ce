// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats compound profiles for terminal, JSON, YAML, and
// prose output.
// Implements: prd004-presentation (R1-R4);
//
//	docs/ARCHITECTURE.md § Presentation.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/compound-engine/pkg/types"
)

// FormatNumber renders a nullable measurement with the given number of
// decimals, or "N/A" when the value is absent (R1.1). Every numeric cell
// goes through here so missing data can never render as 0.00.
func FormatNumber(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// FormatProfile writes the full profile as human-readable tables (R2.1-R2.3).
func FormatProfile(p *types.CompoundProfile, w io.Writer) {
	name := p.Compound.Name
	if name == "" {
		name = p.Query
	}
	fmt.Fprintf(w, "Compound Profile: %s\n", name)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if p.Resolved() {
		fmt.Fprintf(w, "%-10s %d\n", "CID", p.Compound.CID)
		fmt.Fprintf(w, "%-10s %s\n", "Formula", orNA(p.Compound.Formula))
		fmt.Fprintf(w, "%-10s %s\n", "Weight", formatWeight(p.Compound.Weight))
		fmt.Fprintf(w, "%-10s %s\n", "SMILES", orNA(p.Compound.SMILES))
		fmt.Fprintf(w, "%-10s %s\n", "InChI Key", orNA(p.Compound.InChIKey))
	} else {
		fmt.Fprintln(w, "No registry identity resolved.")
	}
	fmt.Fprintf(w, "%-10s %s\n", "ChEMBL ID", orNA(p.ChEMBLID))

	fmt.Fprintln(w)
	formatActivityTable(p.Activities, w)

	fmt.Fprintln(w)
	formatProteinTable(p.Proteins, w)

	fmt.Fprintf(w, "\n%d activities, %d targets, %d proteins\n",
		len(p.Activities), len(p.Targets), len(p.Proteins))
}

// formatActivityTable writes the bioactivity rows in fixed-width columns (R2.2).
func formatActivityTable(activities []types.Activity, w io.Writer) {
	if len(activities) == 0 {
		fmt.Fprintln(w, "No bioactivity data found.")
		return
	}

	fmt.Fprintf(w, "%-30s  %-8s  %-10s  %-5s  %-8s  %s\n",
		"Target", "Type", "Value", "Unit", "pChEMBL", "Evidence")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, a := range activities {
		fmt.Fprintf(w, "%-30s  %-8s  %-10s  %-5s  %-8s  %s\n",
			truncate(a.Target, 30),
			a.Type,
			FormatNumber(a.Value, 2),
			a.Unit,
			FormatNumber(a.Potency, 2),
			truncate(a.Evidence, 44))
	}
}

// formatProteinTable writes the protein annotations in fixed-width columns (R2.3).
func formatProteinTable(proteins []types.ProteinAnnotation, w io.Writer) {
	if len(proteins) == 0 {
		fmt.Fprintln(w, "No protein annotations found.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-40s  %s\n", "Accession", "Target", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for _, pr := range proteins {
		fmt.Fprintf(w, "%-12s  %-40s  %s\n", pr.Accession, truncate(pr.Target, 40), pr.Source)
	}
}

// FormatDiagnostics writes the diagnostic notes, one per line, or nothing
// when the run was clean (R2.4).
func FormatDiagnostics(p *types.CompoundProfile, w io.Writer) {
	if len(p.Diagnostics) == 0 {
		return
	}
	fmt.Fprintf(w, "Diagnostics (%d):\n", len(p.Diagnostics))
	for _, d := range p.Diagnostics {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}

// FormatJSON writes the profile as indented JSON to w (R4.2).
func FormatJSON(p *types.CompoundProfile, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// FormatYAML writes the profile as YAML to w (R4.3).
func FormatYAML(p *types.CompoundProfile, w io.Writer) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func formatWeight(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return FormatNumber(v, 2) + " g/mol"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
