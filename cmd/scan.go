package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/user/aigov-scan/pkg/adk"
	"github.com/user/aigov-scan/pkg/config"
	"github.com/user/aigov-scan/pkg/engine"
	"github.com/user/aigov-scan/pkg/metrics"
	"github.com/user/aigov-scan/pkg/report"
	"github.com/user/aigov-scan/pkg/scans"
)

type scanOptions struct {
	scans            []string
	inventory        string
	format           string
	output           string
	noNarrator       bool
	templateNarrator bool
	concurrency      int
	metricsFile      string
	saveSnapshot     string
	baseline         string
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run governance scans against an account inventory",
		Example: `  aigov-scan scan --scan all
  aigov-scan scan --scan bedrock-guardrails --format json --output report.json
  aigov-scan scan --format dashboard --output report.html --save-snapshot
  aigov-scan scan --scan all --template-narrator --baseline .aigov-snapshot.json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), root.logger, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&opts.scans, "scan", "s", []string{engine.AllScans}, "Scans to run (comma separated, or 'all')")
	f.StringVarP(&opts.inventory, "inventory", "i", "", "Account inventory file (default from config)")
	f.StringVarP(&opts.format, "format", "f", "summary", "Output format: "+strings.Join(report.Formats, ", "))
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.BoolVar(&opts.noNarrator, "no-ai-narrator", false, "Skip executive summaries")
	f.BoolVar(&opts.templateNarrator, "template-narrator", false, "Write executive summaries from the template only")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Maximum scans run in parallel (default from config)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	f.StringVar(&opts.saveSnapshot, "save-snapshot", "", "Save the report as a snapshot for later diffs")
	f.Lookup("save-snapshot").NoOptDefVal = report.DefaultSnapshotPath
	f.StringVar(&opts.baseline, "baseline", "", "Compare findings with a saved snapshot")
	return cmd
}

func runScan(ctx context.Context, logger *slog.Logger, stdout, stderr io.Writer, opts *scanOptions) error {
	renderer, err := report.Get(opts.format)
	if err != nil {
		return &UsageError{Err: err}
	}
	if opts.concurrency < 0 {
		return &UsageError{Err: fmt.Errorf("--concurrency must not be negative")}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	invPath := opts.inventory
	if invPath == "" {
		invPath = cfg.Scan.Inventory
	}
	inv, err := scans.LoadInventory(invPath)
	if errors.Is(err, scans.ErrInvalidInventory) {
		return &UsageError{Err: fmt.Errorf("%s: %w", invPath, err)}
	}
	if err != nil {
		return err
	}
	registry, err := scans.RegistryFromInventory(inv)
	if err != nil {
		return err
	}

	var baseline *engine.ScanReport
	if opts.baseline != "" {
		if baseline, err = report.LoadSnapshot(opts.baseline); err != nil {
			return err
		}
	}

	concurrency := opts.concurrency
	if concurrency == 0 {
		concurrency = cfg.Scan.Concurrency
	}
	recorder := metrics.NewRecorder()
	orchOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithConcurrency(concurrency),
		engine.WithTarget(inv.AccountID, inv.Region),
		engine.WithObserver(recorder),
	}

	enrich := !opts.noNarrator && cfg.Narrator.Enabled
	if enrich {
		narrator, closer := buildNarrator(ctx, logger, cfg, opts.templateNarrator)
		if closer != nil {
			defer closer()
		}
		if !narrator.HasGenerator() {
			logger.Debug("executive summaries use the template")
		}
		orchOpts = append(orchOpts, engine.WithNarrator(narrator))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	rep, err := engine.NewOrchestrator(registry, orchOpts...).Run(ctx, engine.Request{
		Names:  opts.scans,
		Enrich: enrich,
	})
	if err != nil {
		return err
	}

	if err := writeReport(renderer, stdout, opts.output, rep); err != nil {
		return err
	}
	if opts.saveSnapshot != "" {
		if err := report.SaveSnapshot(opts.saveSnapshot, rep); err != nil {
			return err
		}
		logger.Info("snapshot saved", slog.String("path", opts.saveSnapshot))
	}
	if opts.metricsFile != "" {
		if err := recorder.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if baseline != nil {
		// Keep machine-readable stdout parseable.
		diffOut := stdout
		if opts.output == "" && opts.format != "summary" {
			diffOut = stderr
		}
		if err := report.RenderDiff(diffOut, engine.Compare(rep.Findings, baseline.Findings)); err != nil {
			return err
		}
	}

	if n := rep.Blocking(); n > 0 {
		return &BlockingError{Count: n}
	}
	return nil
}

// buildNarrator returns a narrator backed by the configured provider, or a
// template-only narrator when the provider is unavailable.
func buildNarrator(ctx context.Context, logger *slog.Logger, cfg *config.Config, templateOnly bool) (*engine.Narrator, func()) {
	nopts := []engine.NarratorOption{
		engine.WithNarratorLogger(logger),
		engine.WithTimeout(cfg.Narrator.Timeout),
		engine.WithNarratorConcurrency(cfg.Narrator.Concurrency),
		engine.WithRateLimit(rate.Limit(cfg.Narrator.RatePerSecond), 1),
	}
	if templateOnly {
		return engine.NewNarrator(nil, nopts...), nil
	}

	apiKey := cfg.GetAPIKey(cfg.SelectedProvider)
	if apiKey == "" {
		logger.Warn("no API key configured, using template summaries", slog.String("provider", cfg.SelectedProvider))
		return engine.NewNarrator(nil, nopts...), nil
	}
	provider, err := adk.NewProvider(ctx, cfg.SelectedProvider, apiKey, cfg.SelectedModel)
	if err != nil {
		logger.Warn("provider unavailable, using template summaries",
			slog.String("provider", cfg.SelectedProvider),
			slog.String("error", err.Error()))
		return engine.NewNarrator(nil, nopts...), nil
	}
	logger.Debug("narrator provider ready",
		slog.String("provider", cfg.SelectedProvider),
		slog.String("model", cfg.SelectedModel))
	return engine.NewNarrator(provider, nopts...), func() { _ = provider.Close() }
}

func writeReport(r report.Renderer, stdout io.Writer, path string, rep *engine.ScanReport) error {
	if path == "" {
		return r.Render(stdout, rep)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &UsageError{Err: fmt.Errorf("unexpected argument %q", args[0])}
	}
	return nil
}
