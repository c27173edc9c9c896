package scans

import (
	"context"
	"errors"
)

var (
	// ErrAccessDenied is returned by an API whose credential was refused.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound is returned when a looked-up resource does not exist.
	ErrNotFound = errors.New("resource not found")
)

// Target identifies the scanned account and region.
type Target struct {
	AccountID string `yaml:"account_id" json:"account_id"`
	Region    string `yaml:"region" json:"region"`
}

// ContentFilter is one content-policy filter of a guardrail.
type ContentFilter struct {
	Type           string `yaml:"type"`
	InputStrength  string `yaml:"input_strength"`
	OutputStrength string `yaml:"output_strength"`
}

// Guardrail is a Bedrock guardrail with its DRAFT configuration.
type Guardrail struct {
	ID                   string          `yaml:"id"`
	Name                 string          `yaml:"name"`
	ARN                  string          `yaml:"arn"`
	Status               string          `yaml:"status"`
	Version              string          `yaml:"version"`
	ContentFilters       []ContentFilter `yaml:"content_filters"`
	SensitiveInformation bool            `yaml:"sensitive_information_policy"`
}

// ProvisionedModel is a provisioned-throughput Bedrock deployment.
type ProvisionedModel struct {
	Name        string `yaml:"name"`
	ARN         string `yaml:"arn"`
	GuardrailID string `yaml:"guardrail_id"`
}

// CustomModel is a fine-tuned Bedrock model.
type CustomModel struct {
	Name string `yaml:"name"`
	ARN  string `yaml:"arn"`
}

// Model is a SageMaker model.
type Model struct {
	Name string `yaml:"name"`
	ARN  string `yaml:"arn"`
}

// ModelCard is the documentation attached to a SageMaker model.
type ModelCard struct {
	Name      string `yaml:"name"`
	ModelName string `yaml:"model_name"`
	Content   string `yaml:"content"`
}

// BedrockAPI is the read-only Bedrock surface used by the guardrails scan.
type BedrockAPI interface {
	ListGuardrails(ctx context.Context) ([]Guardrail, error)
	ListProvisionedModels(ctx context.Context) ([]ProvisionedModel, error)
	ListCustomModels(ctx context.Context) ([]CustomModel, error)
}

// SageMakerAPI is the read-only SageMaker surface used by the model-card scan.
type SageMakerAPI interface {
	ListModels(ctx context.Context) ([]Model, error)
	// ModelCard returns ErrNotFound when the model has no card.
	ModelCard(ctx context.Context, modelName string) (ModelCard, error)
}
