package scans

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/aigov-scan/pkg/engine"
)

type fakeSageMaker struct {
	models  []Model
	cards   map[string]ModelCard
	cardErr error
}

func (f *fakeSageMaker) ListModels(context.Context) ([]Model, error) {
	return f.models, nil
}

func (f *fakeSageMaker) ModelCard(_ context.Context, name string) (ModelCard, error) {
	if f.cardErr != nil {
		return ModelCard{}, f.cardErr
	}
	card, ok := f.cards[name]
	if !ok {
		return ModelCard{}, ErrNotFound
	}
	return card, nil
}

func newSageMakerScanner(t *testing.T, api SageMakerAPI) *SageMakerModelCardsScanner {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return &SageMakerModelCardsScanner{
		API:     api,
		Target:  Target{AccountID: "123456789012", Region: "us-west-2"},
		Catalog: c,
	}
}

func TestSageMakerScanInventory(t *testing.T) {
	findings, err := newSageMakerScanner(t, loadFixture(t)).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 2)

	thin := findings[0]
	assert.Equal(t, "AWS-SAGEMAKER-002", thin.ID)
	assert.Equal(t, engine.SeverityMedium, thin.Severity)
	assert.Equal(t, "arn:aws:sagemaker:us-west-2:123456789012:model/thin", thin.Resource)
	assert.Contains(t, thin.Technical, "thin-card")

	bare := findings[1]
	assert.Equal(t, "AWS-SAGEMAKER-001", bare.ID)
	assert.Equal(t, engine.SeverityHigh, bare.Severity)
	assert.Equal(t, "arn:aws:sagemaker:us-west-2:123456789012:model/bare", bare.Resource)
}

func TestSageMakerCardCompleteness(t *testing.T) {
	long := strings.Repeat("Intended use and evaluation details. ", 10)
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"long with risk rating", long + "risk_rating: low", nil},
		{"long with risk assessment", long + "Risk Assessment completed.", nil},
		{"long without risk section", long, []string{"AWS-SAGEMAKER-002"}},
		{"short with risk rating", "risk_rating: low", []string{"AWS-SAGEMAKER-002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSageMaker{
				models: []Model{{Name: "m"}},
				cards:  map[string]ModelCard{"m": {Name: "m-card", ModelName: "m", Content: tt.content}},
			}
			findings, err := newSageMakerScanner(t, api).Execute(context.Background())
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, findings)
				return
			}
			assert.Equal(t, tt.want, ids(findings))
		})
	}
}

func TestSageMakerAccessDenied(t *testing.T) {
	api := &fakeSageMaker{models: []Model{{Name: "m"}}, cardErr: ErrAccessDenied}
	findings, err := newSageMakerScanner(t, api).Execute(context.Background())
	assert.Empty(t, findings)
	require.ErrorIs(t, err, engine.ErrPermissionDenied)

	var se *engine.ScanError
	require.ErrorAs(t, err, &se)
	require.NotNil(t, se.Finding)
	assert.Equal(t, "AWS-SAGEMAKER-PERM", se.Finding.ID)
	assert.Equal(t, engine.SeverityMedium, se.Finding.Severity)
}

func TestSageMakerTransientFailure(t *testing.T) {
	api := &fakeSageMaker{models: []Model{{Name: "m"}}, cardErr: errors.New("timeout")}
	_, err := newSageMakerScanner(t, api).Execute(context.Background())
	assert.ErrorIs(t, err, engine.ErrTransient)
}
