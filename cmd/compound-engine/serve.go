package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/compound-engine/internal/nlp"
	"github.com/pdiddy/compound-engine/internal/profile"
	"github.com/pdiddy/compound-engine/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI and JSON API",
	Long: `Serve runs the profile pipeline behind an embedded web server: a
single-page UI at /, a JSON API at /api/v1/profile, health at /healthz,
and Prometheus metrics at /metrics.

Entity recognition over profile summaries is enabled with --nlp (or
nlp.enabled in the config file); the model is downloaded on first use.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8700)")
	serveCmd.Flags().Bool("nlp", false, "decorate summaries with recognized entities")
	serveCmd.Flags().Bool("no-probe", false, "skip the connectivity probe")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := engineConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Web.Addr = addr
	}
	if cmd.Flags().Changed("nlp") {
		v, _ := cmd.Flags().GetBool("nlp")
		cfg.NLP.Enabled = v
	}

	log, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	if noProbe, _ := cmd.Flags().GetBool("no-probe"); !noProbe {
		if err := profile.CheckConnectivity(cmd.Context(), cfg.Profile); err != nil {
			return err
		}
	}

	fetcher := newFetcher(cfg, log)

	var tagger web.EntityTagger
	if cfg.NLP.Enabled {
		annotator, err := nlp.NewAnnotator(cfg.NLP)
		if err != nil {
			// The pipeline works without decoration; say so and move on.
			log.Warn("entity recognition unavailable", "error", err)
			fmt.Fprintf(os.Stderr, "warning: entity recognition unavailable: %v\n", err)
		} else {
			defer func() { _ = annotator.Close() }()
			tagger = annotator
		}
	}

	srv := web.NewServer(fetcher, tagger, cfg, log)
	fetcher.Metrics = srv.Metrics

	httpSrv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Serving on %s\n", cfg.Web.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
