// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the compound-engine CLI.
// Implements: prd001-resolution, prd002-bioactivity, prd003-annotation,
//             prd004-presentation, prd005-pipeline, prd006-web (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compound-engine/internal/logutil"
	"github.com/pdiddy/compound-engine/internal/secrets"
	"github.com/pdiddy/compound-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the compound-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "compound-engine",
	Short: "Aggregate bioactivity profiles for chemical compounds",
	Long: `compound-engine builds bioactivity profiles for chemical compounds by
combining public sources: the PubChem registry for chemical identity, ChEMBL
for bioactivity measurements and target names, and UniProt accessions for
protein annotations.

Query by common name, SMILES string, or InChI key. fetch prints a profile to
the terminal; serve runs the same pipeline behind an embedded web UI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./compound-engine.yaml or ~/.config/compound-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to a file instead of stderr")
}

func initConfig() {
	// A local .env can seed COMPOUND_ENGINE_* variables before viper reads
	// the environment.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("compound-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "compound-engine"))
		}
	}

	viper.SetEnvPrefix("COMPOUND_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("compound.timeout", 30*time.Second)
	viper.SetDefault("compound.user_agent", "compound-engine/0.1")
	viper.SetDefault("compound.api_key", "")
	viper.SetDefault("compound.contact_email", "")

	viper.SetDefault("bioassay.timeout", 30*time.Second)
	viper.SetDefault("bioassay.user_agent", "compound-engine/0.1")
	viper.SetDefault("bioassay.max_activities", 15)
	viper.SetDefault("bioassay.keep_unnamed_targets", false)
	viper.SetDefault("bioassay.max_targets", 3)

	viper.SetDefault("profile.retry_attempts", 3)
	viper.SetDefault("profile.cache_ttl", time.Hour)
	viper.SetDefault("profile.cache_entries", 20)
	viper.SetDefault("profile.probe_addr", "www.google.com:80")
	viper.SetDefault("profile.probe_timeout", 5*time.Second)

	viper.SetDefault("summary.enabled", true)
	viper.SetDefault("summary.max_sentences", 5)

	viper.SetDefault("nlp.enabled", false)
	viper.SetDefault("nlp.model_dir", "./models")
	viper.SetDefault("nlp.model_name", "KnightsAnalytics/distilbert-NER")

	viper.SetDefault("web.addr", ":8700")
	viper.SetDefault("web.session_ttl", time.Hour)
}

// engineConfig assembles the pipeline configuration from viper, with API
// credentials falling back to .secrets/ files.
func engineConfig() types.EngineConfig {
	return types.EngineConfig{
		Compound: types.CompoundConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("compound.timeout"),
				UserAgent: viper.GetString("compound.user_agent"),
			},
			APIKey:       secretDefault("ncbi-api-key", viper.GetString("compound.api_key")),
			ContactEmail: secretDefault("contact-email", viper.GetString("compound.contact_email")),
		},
		Bioassay: types.BioassayConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("bioassay.timeout"),
				UserAgent: viper.GetString("bioassay.user_agent"),
			},
			MaxActivities:      viper.GetInt("bioassay.max_activities"),
			KeepUnnamedTargets: viper.GetBool("bioassay.keep_unnamed_targets"),
			MaxTargets:         viper.GetInt("bioassay.max_targets"),
		},
		Profile: types.ProfileConfig{
			RetryAttempts: viper.GetInt("profile.retry_attempts"),
			CacheTTL:      viper.GetDuration("profile.cache_ttl"),
			CacheEntries:  viper.GetInt("profile.cache_entries"),
			ProbeAddr:     viper.GetString("profile.probe_addr"),
			ProbeTimeout:  viper.GetDuration("profile.probe_timeout"),
		},
		Summary: types.SummaryConfig{
			Enabled:      viper.GetBool("summary.enabled"),
			MaxSentences: viper.GetInt("summary.max_sentences"),
		},
		NLP: types.NLPConfig{
			Enabled:   viper.GetBool("nlp.enabled"),
			ModelDir:  viper.GetString("nlp.model_dir"),
			ModelName: viper.GetString("nlp.model_name"),
		},
		Web: types.WebConfig{
			Addr:       viper.GetString("web.addr"),
			SessionTTL: viper.GetDuration("web.session_ttl"),
		},
	}
}

// newLogger builds the process logger from the persistent logging flags.
// Pretty colored output goes to a terminal; a log file gets plain text.
func newLogger() (*slog.Logger, func(), error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	logFile, _ := rootCmd.PersistentFlags().GetString("log-file")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	cleanup := func() {}
	pretty := true
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		cleanup = func() { _ = f.Close() }
		pretty = false
	}
	return logutil.NewLogger(w, level, pretty), cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
