package scans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/aigov-scan/pkg/engine"
)

// SageMakerModelCardsName is the registry key of the model-card scan.
const SageMakerModelCardsName = "sagemaker-model-cards"

// minCardContent is the length below which a card counts as incomplete.
const minCardContent = 200

type cardStatus int

const (
	cardPresent cardStatus = iota
	cardIncomplete
	cardMissing
)

// SageMakerModelCardsScanner checks that every model has a complete Model Card.
type SageMakerModelCardsScanner struct {
	API     SageMakerAPI
	Target  Target
	Catalog *Catalog
}

func (s *SageMakerModelCardsScanner) Name() string {
	return SageMakerModelCardsName
}

func (s *SageMakerModelCardsScanner) Description() string {
	return `Verifies that SageMaker models have complete Model Cards documenting:
- Intended use cases and limitations (ISO 42001 Clause 7.2)
- Training data provenance (ISO 42001 Annex A.8.2)
- Performance metrics and evaluation (NIST AI RMF MEASURE 2.1)
- Risk assessments and ethical considerations`
}

func (s *SageMakerModelCardsScanner) Execute(ctx context.Context) ([]engine.Finding, error) {
	findings, err := s.scan(ctx)
	if errors.Is(err, ErrAccessDenied) {
		perm, perr := s.Catalog.Finding("AWS-SAGEMAKER-PERM", iamScannerRole(s.Target), s.Target)
		if perr != nil {
			return nil, engine.Transient(s.Name(), perr)
		}
		return nil, engine.PermissionDeniedFinding(s.Name(), err, perm)
	}
	if err != nil {
		return nil, engine.Transient(s.Name(), err)
	}
	return findings, nil
}

func (s *SageMakerModelCardsScanner) scan(ctx context.Context) ([]engine.Finding, error) {
	models, err := s.API.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var findings []engine.Finding
	for _, m := range models {
		status, card, err := s.checkModelCard(ctx, m.Name)
		if err != nil {
			return nil, err
		}
		arn := m.ARN
		if arn == "" {
			arn = fmt.Sprintf("arn:aws:sagemaker:%s:%s:model/%s", s.Target.Region, s.Target.AccountID, m.Name)
		}

		var f engine.Finding
		switch status {
		case cardMissing:
			f, err = s.Catalog.Finding("AWS-SAGEMAKER-001", arn, map[string]string{"Name": m.Name})
		case cardIncomplete:
			f, err = s.Catalog.Finding("AWS-SAGEMAKER-002", arn, map[string]string{"Name": m.Name, "Card": card.Name})
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func (s *SageMakerModelCardsScanner) checkModelCard(ctx context.Context, model string) (cardStatus, ModelCard, error) {
	card, err := s.API.ModelCard(ctx, model)
	if errors.Is(err, ErrNotFound) {
		return cardMissing, ModelCard{}, nil
	}
	if err != nil {
		return 0, ModelCard{}, fmt.Errorf("describe model card for %s: %w", model, err)
	}
	if len(card.Content) < minCardContent {
		return cardIncomplete, card, nil
	}
	content := strings.ToLower(card.Content)
	if !strings.Contains(content, "risk_rating") && !strings.Contains(content, "risk assessment") {
		return cardIncomplete, card, nil
	}
	return cardPresent, card, nil
}
