// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/compound-engine/internal/bioassay"
	"github.com/pdiddy/compound-engine/internal/compound"
	"github.com/pdiddy/compound-engine/internal/profile"
	"github.com/pdiddy/compound-engine/internal/render"
	"github.com/pdiddy/compound-engine/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [query...]",
	Short: "Fetch a compound's bioactivity profile",
	Long: `Fetch resolves a compound query against the PubChem registry, pulls
bioactivity measurements and target names from ChEMBL, annotates the top
targets with UniProt accessions, and prints the combined profile.

The query is a compound name by default; pass --input-type to search by
SMILES string or InChI key instead. Multi-word names need no quoting:
arguments are joined with spaces.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("input-type", "name", "query kind: name, smiles, or inchikey")
	fetchCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	fetchCmd.Flags().String("save", "", "also write the profile to a YAML file")
	fetchCmd.Flags().Bool("diagnostics", false, "print diagnostic notes after the profile")
	fetchCmd.Flags().Bool("no-summary", false, "skip the prose summary")
	fetchCmd.Flags().Int("max-activities", 0, "cap bioactivity rows (0 = config default)")
	fetchCmd.Flags().Int("max-targets", 0, "cap protein annotations (0 = config default)")
	fetchCmd.Flags().Bool("keep-unnamed-targets", false, "keep measurements whose target name lookup failed")
	fetchCmd.Flags().Bool("no-probe", false, "skip the connectivity probe")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a compound query (a name, SMILES string, or InChI key)")
	}
	query := strings.Join(args, " ")

	inputTypeFlag, _ := cmd.Flags().GetString("input-type")
	inputType, err := types.ParseInputType(inputTypeFlag)
	if err != nil {
		return err
	}

	cfg := engineConfig()
	if v, _ := cmd.Flags().GetInt("max-activities"); v > 0 {
		cfg.Bioassay.MaxActivities = v
	}
	if v, _ := cmd.Flags().GetInt("max-targets"); v > 0 {
		cfg.Bioassay.MaxTargets = v
	}
	if cmd.Flags().Changed("keep-unnamed-targets") {
		v, _ := cmd.Flags().GetBool("keep-unnamed-targets")
		cfg.Bioassay.KeepUnnamedTargets = v
	}

	log, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if noProbe, _ := cmd.Flags().GetBool("no-probe"); !noProbe {
		if err := profile.CheckConnectivity(ctx, cfg.Profile); err != nil {
			return err
		}
	}

	fetcher := newFetcher(cfg, log)
	p, err := fetcher.Fetch(ctx, query, inputType, os.Stdout)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return fmt.Errorf("no compound found for %q: check the spelling or try another input type", query)
		}
		return err
	}

	noSummary, _ := cmd.Flags().GetBool("no-summary")
	summaryText := ""
	if cfg.Summary.Enabled && !noSummary {
		summaryText = render.Summary(p, cfg.Summary.MaxSentences)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		render.FormatProfile(p, os.Stdout)
		if summaryText != "" {
			fmt.Fprintf(os.Stdout, "\n%s\n", summaryText)
		}
		if showDiags, _ := cmd.Flags().GetBool("diagnostics"); showDiags && len(p.Diagnostics) > 0 {
			fmt.Fprintln(os.Stdout)
			render.FormatDiagnostics(p, os.Stdout)
		}
	case "json":
		if err := render.FormatJSON(p, os.Stdout); err != nil {
			return err
		}
	case "yaml":
		if err := render.FormatYAML(p, os.Stdout); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := render.WriteProfileFile(savePath, p, summaryText); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nSaved profile to %s\n", savePath)
	}
	return nil
}

// newFetcher wires the API clients into the profile pipeline.
func newFetcher(cfg types.EngineConfig, log *slog.Logger) *profile.Fetcher {
	chem := &compound.Resolver{
		Client: &http.Client{Timeout: cfg.Compound.Timeout},
		APIKey: cfg.Compound.APIKey,
	}
	bio := &bioassay.ChEMBLBackend{
		Client: &http.Client{Timeout: cfg.Bioassay.Timeout},
	}
	return profile.NewFetcher(chem, bio, cfg, log)
}
