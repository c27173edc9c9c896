package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrency caps parallel scanners when no explicit limit is set.
const MaxConcurrency = 4

// Request selects the scans of one run.
type Request struct {
	// Names are scan names or AllScans.
	Names []string
	// Enrich adds an executive summary to every finding.
	Enrich bool
}

// Orchestrator resolves, executes and aggregates scans.
type Orchestrator struct {
	registry    *Registry
	narrator    *Narrator
	logger      *slog.Logger
	observer    Observer
	concurrency int
	accountID   string
	region      string
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNarrator sets the narrator used when a request asks for enrichment.
func WithNarrator(n *Narrator) Option {
	return func(o *Orchestrator) {
		o.narrator = n
	}
}

// WithConcurrency bounds the number of scanners run in parallel.
func WithConcurrency(c int) Option {
	return func(o *Orchestrator) {
		o.concurrency = c
	}
}

// WithTarget records the scanned account and region on every report.
func WithTarget(accountID, region string) Option {
	return func(o *Orchestrator) {
		o.accountID = accountID
		o.region = region
	}
}

// WithObserver receives per-scan events.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator creates an orchestrator over reg.
func NewOrchestrator(reg *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: reg,
		logger:   slog.Default(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type scanResult struct {
	findings []Finding
	failure  *ScanFailure
}

// Run executes the requested scans and returns the assembled report.
// The only error is a *ValidationError, returned before any scanner runs.
// A cancelled ctx still yields a report holding every completed scan.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*ScanReport, error) {
	names, err := o.registry.Resolve(req.Names)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{
		RunID:     uuid.NewString(),
		Timestamp: o.now().UTC(),
		AccountID: o.accountID,
		Region:    o.region,
		Scans:     names,
		Findings:  []Finding{},
	}

	narrator := o.narrator
	if req.Enrich && narrator == nil {
		narrator = NewNarrator(nil, WithNarratorLogger(o.logger))
	}
	if !req.Enrich {
		narrator = nil
	}

	limit := o.concurrency
	if limit <= 0 {
		limit = min(len(names), MaxConcurrency)
	}

	var mu sync.Mutex
	results := make([]scanResult, len(names))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			res := o.runOne(ctx, name, narrator)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		report.Findings = append(report.Findings, res.findings...)
		if res.failure != nil {
			report.Failures = append(report.Failures, *res.failure)
		}
	}
	report.Interrupted = ctx.Err() != nil

	o.logger.Info("scan run complete",
		slog.String("run_id", report.RunID),
		slog.Int("scans", len(names)),
		slog.Int("findings", len(report.Findings)),
		slog.Int("failures", len(report.Failures)),
		slog.Int("risk_score", report.RiskScore()))
	o.observer.RunFinished(report)
	return report, nil
}

func (o *Orchestrator) runOne(ctx context.Context, name string, narrator *Narrator) scanResult {
	if err := ctx.Err(); err != nil {
		o.logger.Warn("scan skipped", slog.String("scan", name), slog.String("error", err.Error()))
		o.observer.ScanSkipped(name)
		return scanResult{failure: &ScanFailure{Scan: name, Kind: FailureCancelled, Message: err.Error()}}
	}

	factory, _ := o.registry.Lookup(name)
	scanner := factory()
	o.logger.Info("running scan", slog.String("scan", name))
	o.observer.ScanStarted(name)

	start := time.Now()
	findings, err := scanner.Execute(ctx)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if !errors.Is(err, ErrPermissionDenied) {
			kind := FailureTransient
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				kind = FailureCancelled
			}
			o.logger.Warn("scan failed",
				slog.String("scan", name),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
			o.observer.ScanFinished(name, nil, err, elapsed)
			return scanResult{failure: &ScanFailure{Scan: name, Kind: kind, Message: err.Error()}}
		}
		o.logger.Warn("scan lacks permissions", slog.String("scan", name), slog.String("error", err.Error()))
		findings = []Finding{o.permissionFinding(name, err)}
	}

	findings = o.accept(name, findings)
	o.logger.Info("scan finished", slog.String("scan", name), slog.Int("findings", len(findings)))

	if narrator != nil && len(findings) > 0 {
		o.logger.Debug("generating executive summaries", slog.String("scan", name))
		findings = narrator.EnrichAll(ctx, findings, true)
	}

	o.observer.ScanFinished(name, findings, err, elapsed)
	return scanResult{findings: findings}
}

// accept stamps the scan name and drops findings that fail validation.
func (o *Orchestrator) accept(name string, findings []Finding) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		f.Scanner = name
		if err := f.Validate(); err != nil {
			o.logger.Warn("dropping invalid finding", slog.String("scan", name), slog.String("error", err.Error()))
			continue
		}
		out = append(out, f)
	}
	return out
}

func (o *Orchestrator) permissionFinding(name string, err error) Finding {
	var se *ScanError
	if errors.As(err, &se) && se.Finding != nil {
		f := *se.Finding
		f.Mappings = f.Mappings.Clone()
		return f
	}
	return PermissionFinding(name, o.accountID)
}

// PermissionFinding is the single finding reported when a scanner's
// credential is refused by the external service.
func PermissionFinding(scan, accountID string) Finding {
	if accountID == "" {
		accountID = "unknown"
	}
	return Finding{
		ID:       strings.ToUpper(scan) + "-PERM",
		Scanner:  scan,
		Resource: "account/" + accountID + "/scanner-credential",
		Severity: SeverityMedium,
		Technical: "Scanner credential lacks the permissions required by the " + scan +
			" scan. The control domain could not be verified.",
		Remediation: "Grant the scanning identity read-only list and describe permissions for the services checked by " +
			scan + ".",
		Mappings: ComplianceMapping{
			FrameworkNISTAIRMF:  {"GOVERN 4.1 (Transparency and Accountability)"},
			FrameworkISO42001:   {"Clause 9.1 (Monitoring and Measurement)"},
			FrameworkMITREATLAS: {},
		},
	}
}
