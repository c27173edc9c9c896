package scans

import (
	"github.com/user/aigov-scan/pkg/engine"
)

// NewRegistry registers the built-in scans against the given APIs.
func NewRegistry(target Target, bedrock BedrockAPI, sagemaker SageMakerAPI) (*engine.Registry, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return engine.NewRegistry(
		engine.Entry{
			Name: BedrockGuardrailsName,
			Factory: func() engine.Scanner {
				return &BedrockGuardrailsScanner{API: bedrock, Target: target, Catalog: catalog}
			},
		},
		engine.Entry{
			Name: SageMakerModelCardsName,
			Factory: func() engine.Scanner {
				return &SageMakerModelCardsScanner{API: sagemaker, Target: target, Catalog: catalog}
			},
		},
	)
}

// RegistryFromInventory registers the built-in scans over an inventory file.
func RegistryFromInventory(inv *Inventory) (*engine.Registry, error) {
	return NewRegistry(inv.Target, inv, inv)
}
