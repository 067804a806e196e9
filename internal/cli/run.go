package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/webqa/internal/config"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/internal/prober"
	"github.com/rohmanhakim/webqa/internal/report"
	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/rohmanhakim/webqa/internal/storage"
	"github.com/spf13/cobra"
)

var ErrNoInput = errors.New("nothing to test: pass a seed url or at least one --url")

var probeCmd = &cobra.Command{
	Use:   "probe [url...]",
	Short: "Check the status of a list of URLs",
	RunE:  runProbe,
}

var runCmd = &cobra.Command{
	Use:   "run [seed-url]",
	Short: "Crawl (or take a URL list), check every link and analyze pages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFull,
}

func init() {
	addURLFlags(probeCmd)
	addURLFlags(runCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	urls, err := collectURLs(args, cfg.ManualURLs())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return ErrNoInput
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := newLogger(cmd)
	sess := session.NewSession(cfg, log)
	// links only
	return execute(ctx, cmd, cfg, log, sess, urls, []string{})
}

func runFull(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	seed := cfg.SeedURL()
	if len(args) == 1 {
		seed = args[0]
	}
	urls, err := collectURLs(nil, cfg.ManualURLs())
	if err != nil {
		return err
	}
	if strings.TrimSpace(seed) == "" && len(urls) == 0 {
		return ErrNoInput
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := newLogger(cmd)
	sess := session.NewSession(cfg, log)
	if strings.TrimSpace(seed) != "" {
		links, err := sess.ExtractLinks(ctx, seed, 0)
		if err != nil {
			return err
		}
		log.Info("links extracted", "seed", seed, "count", len(links))
		urls = append(links, urls...)
	}
	return execute(ctx, cmd, cfg, log, sess, urls, nil)
}

// execute runs the session, prints the summary, writes the report and saves
// the run when history is enabled. nil analyzers means the configured ones.
func execute(
	ctx context.Context,
	cmd *cobra.Command,
	cfg config.Config,
	log *slog.Logger,
	sess *session.Session,
	urls []string,
	analyzers []string,
) error {
	_, err := sess.Run(ctx, urls, session.RunOptions{
		Analyzers: analyzers,
		Progress: func(completed, total int, result prober.ProbeResult) {
			log.Debug("probe progress", "completed", completed, "total", total, "url", result.RequestedURL)
		},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	snapshot := sess.Snapshot()
	report.PrintSummary(out, snapshot)

	exporter, err := report.NewExporter(cfg.ReportFormat(), nil)
	if err != nil {
		return err
	}
	path, err := report.WriteFile(cfg.OutputDir(), exporter, snapshot, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nReport written to %s\n", path)

	if cfg.DBPath() == "" {
		return nil
	}
	store := storage.NewRunStore(cfg.DBPath(), metadata.NewRecorder(log, sess.ID()))
	if err := store.Open(ctx); err != nil {
		return err
	}
	defer store.Close()
	runID, err := store.SaveRun(ctx, snapshot)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run saved as %s\n", runID)
	return nil
}
