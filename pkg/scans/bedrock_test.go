package scans

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/aigov-scan/pkg/engine"
)

type fakeBedrock struct {
	guardrails  []Guardrail
	provisioned []ProvisionedModel
	custom      []CustomModel
	err         error
}

func (f *fakeBedrock) ListGuardrails(context.Context) ([]Guardrail, error) {
	return f.guardrails, f.err
}

func (f *fakeBedrock) ListProvisionedModels(context.Context) ([]ProvisionedModel, error) {
	return f.provisioned, nil
}

func (f *fakeBedrock) ListCustomModels(context.Context) ([]CustomModel, error) {
	return f.custom, nil
}

func newBedrockScanner(t *testing.T, api BedrockAPI) *BedrockGuardrailsScanner {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return &BedrockGuardrailsScanner{
		API:     api,
		Target:  Target{AccountID: "123456789012", Region: "us-west-2"},
		Catalog: c,
	}
}

func ids(findings []engine.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.ID)
	}
	return out
}

func TestBedrockScanInventory(t *testing.T) {
	findings, err := newBedrockScanner(t, loadFixture(t)).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"AWS-BEDROCK-004",
		"AWS-BEDROCK-005",
		"AWS-BEDROCK-006",
		"AWS-BEDROCK-007",
		"AWS-BEDROCK-001",
		"AWS-BEDROCK-002",
	}, ids(findings))

	missing := findings[0]
	assert.Equal(t, engine.SeverityMedium, missing.Severity)
	assert.Equal(t, "arn:aws:bedrock:us-west-2:123456789012:guardrail/gr-weak", missing.Resource)
	assert.Contains(t, missing.Technical, "MISCONDUCT, SEXUAL")

	weak := findings[1]
	assert.Contains(t, weak.Technical, "HATE: input=HIGH, output=LOW")
	assert.NotContains(t, weak.Technical, "VIOLENCE")

	assert.Equal(t, engine.SeverityHigh, findings[2].Severity)
	assert.Equal(t, engine.SeverityLow, findings[3].Severity)

	unguarded := findings[4]
	assert.Equal(t, engine.SeverityHigh, unguarded.Severity)
	assert.Equal(t, "arn:aws:bedrock:us-west-2:123456789012:provisioned-model/open", unguarded.Resource)
	assert.Contains(t, unguarded.Technical, "'open'")

	assert.Contains(t, findings[5].Technical, "support-tuned")
}

func TestBedrockNoGuardrails(t *testing.T) {
	findings, err := newBedrockScanner(t, &fakeBedrock{}).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "AWS-BEDROCK-003", findings[0].ID)
	assert.Equal(t, engine.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Technical, "123456789012")
}

func TestBedrockUnknownGuardrailReference(t *testing.T) {
	api := &fakeBedrock{
		guardrails: []Guardrail{{
			ID: "gr-1", Name: "ok", Status: "READY", Version: "2", SensitiveInformation: true,
			ContentFilters: []ContentFilter{
				{Type: "hate", InputStrength: "high", OutputStrength: "high"},
				{Type: "VIOLENCE", InputStrength: "HIGH", OutputStrength: "HIGH"},
				{Type: "SEXUAL", InputStrength: "HIGH", OutputStrength: "HIGH"},
				{Type: "MISCONDUCT", InputStrength: "HIGH", OutputStrength: "HIGH"},
			},
		}},
		provisioned: []ProvisionedModel{{Name: "m", ARN: "arn:m", GuardrailID: "gr-deleted"}},
	}
	findings, err := newBedrockScanner(t, api).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AWS-BEDROCK-001"}, ids(findings))
}

func TestBedrockAccessDenied(t *testing.T) {
	inv, err := ParseInventory([]byte("account_id: \"123456789012\"\ndenied: [bedrock]"))
	require.NoError(t, err)

	findings, err := newBedrockScanner(t, inv).Execute(context.Background())
	assert.Empty(t, findings)
	require.ErrorIs(t, err, engine.ErrPermissionDenied)
	assert.ErrorIs(t, err, ErrAccessDenied)

	var se *engine.ScanError
	require.ErrorAs(t, err, &se)
	require.NotNil(t, se.Finding)
	assert.Equal(t, "AWS-BEDROCK-PERM", se.Finding.ID)
	assert.Equal(t, engine.SeverityMedium, se.Finding.Severity)
	assert.Equal(t, "arn:aws:iam::123456789012:role/scanner", se.Finding.Resource)
}

func TestBedrockTransientFailure(t *testing.T) {
	cause := errors.New("throttled")
	_, err := newBedrockScanner(t, &fakeBedrock{err: cause}).Execute(context.Background())
	assert.ErrorIs(t, err, engine.ErrTransient)
	assert.ErrorIs(t, err, cause)
}

func TestWeakFilters(t *testing.T) {
	got := weakFilters([]ContentFilter{
		{Type: "VIOLENCE", InputStrength: "LOW"},
		{Type: "HATE", InputStrength: "MEDIUM", OutputStrength: "HIGH"},
		{Type: "SEXUAL", InputStrength: "NONE", OutputStrength: "MEDIUM"},
	})
	assert.Equal(t, []string{
		"SEXUAL: input=NONE, output=MEDIUM",
		"VIOLENCE: input=LOW, output=NONE",
	}, got)
}
