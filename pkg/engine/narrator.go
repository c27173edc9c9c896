package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultNarratorTimeout     = 20 * time.Second
	DefaultNarratorConcurrency = 4
)

// Labels used when a finding has no mapping for a framework.
const (
	fallbackTechnique = "unmapped attack technique"
	fallbackNIST      = "AI RMF controls"
	fallbackISO       = "ISO 42001 requirements"
)

var errEmptyNarrative = errors.New("generator returned an empty summary")

// TextGenerator produces free text from an instruction and a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Narrator writes executive summaries for findings. Generation is best
// effort: any failure of the generator falls back to Template.
type Narrator struct {
	gen     TextGenerator
	system  string
	timeout time.Duration
	limiter *rate.Limiter
	sem     chan struct{}
	logger  *slog.Logger
}

// NarratorOption configures a Narrator.
type NarratorOption func(*Narrator)

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) NarratorOption {
	return func(n *Narrator) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithNarratorConcurrency bounds in-flight generator calls.
func WithNarratorConcurrency(c int) NarratorOption {
	return func(n *Narrator) {
		if c > 0 {
			n.sem = make(chan struct{}, c)
		}
	}
}

// WithRateLimit throttles generator calls to limit per second.
func WithRateLimit(limit rate.Limit, burst int) NarratorOption {
	return func(n *Narrator) {
		if limit > 0 {
			if burst < 1 {
				burst = 1
			}
			n.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// WithSystemPrompt replaces the default instruction.
func WithSystemPrompt(p string) NarratorOption {
	return func(n *Narrator) {
		if strings.TrimSpace(p) != "" {
			n.system = p
		}
	}
}

// WithNarratorLogger sets the logger used for fallback warnings.
func WithNarratorLogger(l *slog.Logger) NarratorOption {
	return func(n *Narrator) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNarrator creates a narrator. gen may be nil, in which case every
// summary is produced from the template.
func NewNarrator(gen TextGenerator, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		gen:     gen,
		system:  NarratorSystemPrompt(),
		timeout: DefaultNarratorTimeout,
		sem:     make(chan struct{}, DefaultNarratorConcurrency),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// HasGenerator reports whether a generator is configured.
func (n *Narrator) HasGenerator() bool {
	return n.gen != nil
}

// Template builds the deterministic three-sentence summary for f.
func Template(f Finding) string {
	technique, ok := f.Mappings.First(FrameworkMITREATLAS)
	if !ok {
		technique = fallbackTechnique
	}
	nist, ok := f.Mappings.First(FrameworkNISTAIRMF)
	if !ok {
		nist = fallbackNIST
	}
	iso, ok := f.Mappings.First(FrameworkISO42001)
	if !ok {
		iso = fallbackISO
	}
	technical := strings.TrimRight(strings.TrimSpace(f.Technical), ".")
	return fmt.Sprintf("%s creates regulatory and operational risk exposure. "+
		"This vulnerability enables %s attacks, allowing adversaries to compromise AI system integrity. "+
		"Remediation addresses %s and fulfills %s, demonstrating due diligence in AI governance.",
		technical, technique, nist, iso)
}

// Enrich returns f with its narrative populated. Only the narrative
// differs from f.
func (n *Narrator) Enrich(ctx context.Context, f Finding, useGenerator bool) Finding {
	if !useGenerator || n.gen == nil {
		return f.WithNarrative(Template(f))
	}
	text, err := n.generate(ctx, f)
	if err != nil {
		n.logger.Warn("executive summary generation failed, using template",
			slog.String("finding", f.ID),
			slog.String("resource", f.Resource),
			slog.String("error", err.Error()))
		return f.WithNarrative(Template(f))
	}
	return f.WithNarrative(text)
}

// EnrichAll enriches findings concurrently, preserving order.
func (n *Narrator) EnrichAll(ctx context.Context, findings []Finding, useGenerator bool) []Finding {
	out := make([]Finding, len(findings))
	if !useGenerator || n.gen == nil {
		for i, f := range findings {
			out[i] = f.WithNarrative(Template(f))
		}
		return out
	}

	var wg sync.WaitGroup
	for i, f := range findings {
		wg.Add(1)
		go func(i int, f Finding) {
			defer wg.Done()
			out[i] = n.Enrich(ctx, f, true)
		}(i, f)
	}
	wg.Wait()
	return out
}

type generateResult struct {
	text string
	err  error
}

func (n *Narrator) generate(ctx context.Context, f Finding) (string, error) {
	select {
	case n.sem <- struct{}{}:
		defer func() { <-n.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if n.limiter != nil {
		if err := n.limiter.Wait(callCtx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	prompt, err := narratorPrompt(f)
	if err != nil {
		return "", err
	}

	// The generator may ignore its context; the select enforces the deadline.
	done := make(chan generateResult, 1)
	go func() {
		text, err := n.gen.Generate(callCtx, n.system, prompt)
		done <- generateResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", errEmptyNarrative
		}
		return text, nil
	case <-callCtx.Done():
		return "", callCtx.Err()
	}
}

func narratorPrompt(f Finding) (string, error) {
	view := f
	view.Narrative = ""
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode finding %s: %w", f.ID, err)
	}
	return fmt.Sprintf("Generate an executive summary for this security finding:\n\n%s\n\n"+
		"Remember: 3 sentences covering business impact, attack vector (MITRE ATLAS), "+
		"and compliance fulfillment (NIST AI RMF / ISO 42001).", data), nil
}
