package scans

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Service names accepted in Inventory.Denied.
const (
	ServiceBedrock   = "bedrock"
	ServiceSageMaker = "sagemaker"
)

// ErrInvalidInventory wraps inventory files that cannot be decoded.
var ErrInvalidInventory = errors.New("invalid inventory")

// Inventory is an exported snapshot of an account's AI resources.
// It implements BedrockAPI and SageMakerAPI so scans can run offline.
type Inventory struct {
	Target    `yaml:",inline"`
	Bedrock   BedrockInventory   `yaml:"bedrock"`
	SageMaker SageMakerInventory `yaml:"sagemaker"`
	// Denied lists services whose calls fail with ErrAccessDenied.
	Denied []string `yaml:"denied"`
}

type BedrockInventory struct {
	Guardrails        []Guardrail        `yaml:"guardrails"`
	ProvisionedModels []ProvisionedModel `yaml:"provisioned_models"`
	CustomModels      []CustomModel      `yaml:"custom_models"`
}

type SageMakerInventory struct {
	Models     []Model     `yaml:"models"`
	ModelCards []ModelCard `yaml:"model_cards"`
}

// LoadInventory reads a YAML inventory file.
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseInventory(data)
}

// ParseInventory decodes a YAML inventory.
func ParseInventory(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInventory, err)
	}
	if inv.Region == "" {
		inv.Region = "us-east-1"
	}
	for _, svc := range inv.Denied {
		if svc != ServiceBedrock && svc != ServiceSageMaker {
			return nil, fmt.Errorf("%w: unknown denied service %q", ErrInvalidInventory, svc)
		}
	}
	return &inv, nil
}

func (inv *Inventory) check(ctx context.Context, service string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, svc := range inv.Denied {
		if svc == service {
			return fmt.Errorf("%s: %w", service, ErrAccessDenied)
		}
	}
	return nil
}

func (inv *Inventory) ListGuardrails(ctx context.Context) ([]Guardrail, error) {
	if err := inv.check(ctx, ServiceBedrock); err != nil {
		return nil, err
	}
	return inv.Bedrock.Guardrails, nil
}

func (inv *Inventory) ListProvisionedModels(ctx context.Context) ([]ProvisionedModel, error) {
	if err := inv.check(ctx, ServiceBedrock); err != nil {
		return nil, err
	}
	return inv.Bedrock.ProvisionedModels, nil
}

func (inv *Inventory) ListCustomModels(ctx context.Context) ([]CustomModel, error) {
	if err := inv.check(ctx, ServiceBedrock); err != nil {
		return nil, err
	}
	return inv.Bedrock.CustomModels, nil
}

func (inv *Inventory) ListModels(ctx context.Context) ([]Model, error) {
	if err := inv.check(ctx, ServiceSageMaker); err != nil {
		return nil, err
	}
	return inv.SageMaker.Models, nil
}

func (inv *Inventory) ModelCard(ctx context.Context, modelName string) (ModelCard, error) {
	if err := inv.check(ctx, ServiceSageMaker); err != nil {
		return ModelCard{}, err
	}
	for _, card := range inv.SageMaker.ModelCards {
		if card.ModelName == modelName {
			return card, nil
		}
	}
	return ModelCard{}, fmt.Errorf("model card for %s: %w", modelName, ErrNotFound)
}
