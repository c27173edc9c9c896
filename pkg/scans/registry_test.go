package scans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/aigov-scan/pkg/engine"
)

func TestRegistryFromInventory(t *testing.T) {
	reg, err := RegistryFromInventory(loadFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{BedrockGuardrailsName, SageMakerModelCardsName}, reg.Names())

	for _, info := range reg.Describe() {
		assert.NotEmpty(t, info.Description, info.Name)
	}
}

func TestOrchestratedInventoryRun(t *testing.T) {
	inv := loadFixture(t)
	reg, err := RegistryFromInventory(inv)
	require.NoError(t, err)

	o := engine.NewOrchestrator(reg, engine.WithTarget(inv.AccountID, inv.Region))
	report, err := o.Run(context.Background(), engine.Request{Names: []string{engine.AllScans}, Enrich: true})
	require.NoError(t, err)

	assert.Len(t, report.FindingsFor(BedrockGuardrailsName), 6)
	assert.Len(t, report.FindingsFor(SageMakerModelCardsName), 2)
	assert.Empty(t, report.Failures)
	for _, f := range report.Findings {
		assert.Equal(t, engine.Template(f), f.Narrative)
	}
	// 3 HIGH, 4 MEDIUM, 1 LOW: (15+8+1)/80
	assert.Equal(t, 30, report.RiskScore())
}
