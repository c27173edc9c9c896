package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply string
	err   error
	block chan struct{}
	delay time.Duration

	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32

	mu      sync.Mutex
	systems []string
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}

	g.mu.Lock()
	g.systems = append(g.systems, system)
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.block != nil {
		<-g.block
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return g.reply, g.err
}

func TestTemplateIsDeterministic(t *testing.T) {
	f := finding("AWS-BEDROCK-003", SeverityHigh)
	first := Template(f)
	assert.Equal(t, first, Template(f))

	n := NewNarrator(nil)
	a := n.Enrich(context.Background(), f, false)
	b := n.Enrich(context.Background(), f, false)
	assert.Equal(t, a, b)
	assert.Equal(t, first, a.Narrative)

	assert.True(t, strings.HasPrefix(first, "Guardrail AWS-BEDROCK-003 is misconfigured creates"))
	assert.Contains(t, first, "enables AML.T0051 attacks")
	assert.Contains(t, first, "addresses MANAGE 2.3 and fulfills Annex A.9.2")
	assert.Equal(t, 3, strings.Count(first, ". ")+1)
}

func TestTemplateFallbackLabels(t *testing.T) {
	f := Finding{ID: "X", Resource: "r", Severity: SeverityMedium, Technical: "Something is off"}
	text := Template(f)
	assert.Contains(t, text, fallbackTechnique)
	assert.Contains(t, text, fallbackNIST)
	assert.Contains(t, text, fallbackISO)

	f.Mappings = ComplianceMapping{FrameworkMITREATLAS: {}}
	assert.Equal(t, text, Template(f))
}

func TestEnrichChangesOnlyNarrative(t *testing.T) {
	f := finding("A", SeverityCritical)
	got := NewNarrator(nil).Enrich(context.Background(), f, true)
	want := f
	want.Narrative = Template(f)
	assert.Equal(t, want, got)
	assert.Empty(t, f.Narrative)
}

func TestEnrichUsesGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "  Business impact. Attack path. Compliance.  "}
	n := NewNarrator(gen, WithNarratorLogger(quietLogger()))
	f := finding("A", SeverityHigh)

	got := n.Enrich(context.Background(), f, true)
	assert.Equal(t, "Business impact. Attack path. Compliance.", got.Narrative)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, NarratorSystemPrompt(), gen.systems[0])
	assert.Contains(t, gen.prompts[0], `"finding_id": "A"`)
	assert.NotContains(t, gen.prompts[0], "executive_summary")

	got = n.Enrich(context.Background(), f, false)
	assert.Equal(t, Template(f), got.Narrative)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestEnrichFallsBackOnFailure(t *testing.T) {
	f := finding("A", SeverityHigh)
	want := NewNarrator(nil).Enrich(context.Background(), f, false)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"error", &stubGenerator{err: errors.New("quota exceeded")}},
		{"blank reply", &stubGenerator{reply: " \n\t"}},
		{"timeout", &stubGenerator{reply: "too late", block: release}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNarrator(tt.gen, WithTimeout(20*time.Millisecond), WithNarratorLogger(quietLogger()))
			got := n.Enrich(context.Background(), f, true)
			assert.Equal(t, want, got)
			assert.Equal(t, int32(1), tt.gen.calls.Load())
		})
	}
}

func TestEnrichFallsBackWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &stubGenerator{reply: "unused"}
	n := NewNarrator(gen, WithRateLimit(1, 1), WithNarratorLogger(quietLogger()))

	f := finding("A", SeverityLow)
	got := n.Enrich(ctx, f, true)
	assert.Equal(t, Template(f), got.Narrative)
}

func TestEnrichAllPreservesOrderAndBound(t *testing.T) {
	gen := &stubGenerator{reply: "summary", delay: 5 * time.Millisecond}
	n := NewNarrator(gen, WithNarratorConcurrency(2), WithNarratorLogger(quietLogger()))

	var in []Finding
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		in = append(in, finding(id, SeverityMedium))
	}
	out := n.EnrichAll(context.Background(), in, true)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, "summary", out[i].Narrative)
	}
	assert.LessOrEqual(t, gen.peak.Load(), int32(2))
	assert.Equal(t, int32(len(in)), gen.calls.Load())
}

func TestEnrichAllRateLimited(t *testing.T) {
	gen := &stubGenerator{reply: "summary"}
	n := NewNarrator(gen, WithRateLimit(50, 1), WithNarratorLogger(quietLogger()))

	in := []Finding{finding("a", SeverityLow), finding("b", SeverityLow), finding("c", SeverityLow)}
	start := time.Now()
	out := n.EnrichAll(context.Background(), in, true)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	for _, f := range out {
		assert.Equal(t, "summary", f.Narrative)
	}
}

func TestWithSystemPrompt(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	n := NewNarrator(gen, WithSystemPrompt("Be brief."), WithNarratorLogger(quietLogger()))
	n.Enrich(context.Background(), finding("a", SeverityLow), true)
	require.Len(t, gen.systems, 1)
	assert.Equal(t, "Be brief.", gen.systems[0])
	assert.True(t, n.HasGenerator())
	assert.False(t, NewNarrator(nil).HasGenerator())
}
