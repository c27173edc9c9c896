package scans

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/user/aigov-scan/pkg/engine"
)

// BedrockGuardrailsName is the registry key of the Bedrock guardrails scan.
const BedrockGuardrailsName = "bedrock-guardrails"

// Content filter types every guardrail must configure.
var requiredContentFilters = []string{"HATE", "MISCONDUCT", "SEXUAL", "VIOLENCE"}

// BedrockGuardrailsScanner verifies guardrail attachment and configuration.
type BedrockGuardrailsScanner struct {
	API     BedrockAPI
	Target  Target
	Catalog *Catalog
}

func (s *BedrockGuardrailsScanner) Name() string {
	return BedrockGuardrailsName
}

func (s *BedrockGuardrailsScanner) Description() string {
	return `Verifies that AWS Bedrock guardrails are properly configured to prevent:
- Prompt injection attacks (MITRE AML.T0051)
- Model jailbreaking (MITRE AML.T0054)
- PII leakage and privacy violations
- Generation of harmful or inappropriate content
Checks guardrail configurations, provisioned model attachments and custom models.`
}

func (s *BedrockGuardrailsScanner) Execute(ctx context.Context) ([]engine.Finding, error) {
	findings, err := s.scan(ctx)
	if errors.Is(err, ErrAccessDenied) {
		perm, perr := s.Catalog.Finding("AWS-BEDROCK-PERM", iamScannerRole(s.Target), s.Target)
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

func (s *BedrockGuardrailsScanner) scan(ctx context.Context) ([]engine.Finding, error) {
	guardrails, err := s.API.ListGuardrails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guardrails: %w", err)
	}
	findings, err := s.checkGuardrails(guardrails)
	if err != nil {
		return nil, err
	}

	provisioned, err := s.API.ListProvisionedModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list provisioned models: %w", err)
	}
	known := make(map[string]bool, len(guardrails))
	for _, g := range guardrails {
		known[g.ID] = true
	}
	for _, m := range provisioned {
		if m.GuardrailID != "" && known[m.GuardrailID] {
			continue
		}
		f, err := s.Catalog.Finding("AWS-BEDROCK-001", m.ARN, m)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}

	custom, err := s.API.ListCustomModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom models: %w", err)
	}
	for _, m := range custom {
		f, err := s.Catalog.Finding("AWS-BEDROCK-002", m.ARN, m)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func (s *BedrockGuardrailsScanner) checkGuardrails(guardrails []Guardrail) ([]engine.Finding, error) {
	if len(guardrails) == 0 {
		resource := fmt.Sprintf("arn:aws:bedrock:%s:%s:guardrails", s.Target.Region, s.Target.AccountID)
		f, err := s.Catalog.Finding("AWS-BEDROCK-003", resource, map[string]string{"Account": s.Target.AccountID})
		if err != nil {
			return nil, err
		}
		return []engine.Finding{f}, nil
	}

	var findings []engine.Finding
	add := func(id, resource string, vars any) error {
		f, err := s.Catalog.Finding(id, resource, vars)
		if err != nil {
			return err
		}
		findings = append(findings, f)
		return nil
	}

	for _, g := range guardrails {
		arn := g.ARN
		if arn == "" {
			arn = fmt.Sprintf("arn:aws:bedrock:%s:%s:guardrail/%s", s.Target.Region, s.Target.AccountID, g.ID)
		}
		name := g.Name
		if name == "" {
			name = "Unknown"
		}

		if missing := missingFilters(g.ContentFilters); len(missing) > 0 {
			if err := add("AWS-BEDROCK-004", arn, map[string]any{"Name": name, "Missing": missing}); err != nil {
				return nil, err
			}
		}
		if weak := weakFilters(g.ContentFilters); len(weak) > 0 {
			if err := add("AWS-BEDROCK-005", arn, map[string]any{"Name": name, "Weak": weak}); err != nil {
				return nil, err
			}
		}
		if !g.SensitiveInformation {
			if err := add("AWS-BEDROCK-006", arn, map[string]any{"Name": name}); err != nil {
				return nil, err
			}
		}
		if strings.EqualFold(g.Status, "DRAFT") || g.Version == "" {
			if err := add("AWS-BEDROCK-007", arn, map[string]any{"Name": name}); err != nil {
				return nil, err
			}
		}
	}
	return findings, nil
}

func missingFilters(filters []ContentFilter) []string {
	configured := make(map[string]bool, len(filters))
	for _, f := range filters {
		configured[strings.ToUpper(f.Type)] = true
	}
	var missing []string
	for _, t := range requiredContentFilters {
		if !configured[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

func weakFilters(filters []ContentFilter) []string {
	var weak []string
	for _, f := range filters {
		in, out := strength(f.InputStrength), strength(f.OutputStrength)
		if !adequateStrength(in) || !adequateStrength(out) {
			weak = append(weak, fmt.Sprintf("%s: input=%s, output=%s", f.Type, in, out))
		}
	}
	sort.Strings(weak)
	return weak
}

func strength(v string) string {
	if v == "" {
		return "NONE"
	}
	return strings.ToUpper(v)
}

func adequateStrength(v string) bool {
	return v == "MEDIUM" || v == "HIGH"
}

func iamScannerRole(t Target) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/scanner", t.AccountID)
}
