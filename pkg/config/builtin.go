package config

import "time"

// Built-in provider chain. A providers.yaml entry with the same name
// overrides the built-in definition field by field at load time.

// DefaultAnthropicModel is used when neither YAML nor AI_MODEL overrides it.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// DefaultOpenAIModel is used for the secondary provider.
const DefaultOpenAIModel = "gpt-4o"

// BuiltinConfig holds the built-in provider definitions.
type BuiltinConfig struct {
	Providers map[string]*ProviderConfig
}

// GetBuiltinConfig returns the built-in provider chain: Anthropic as
// primary, an OpenAI-compatible endpoint as secondary.
func GetBuiltinConfig() *BuiltinConfig {
	return &BuiltinConfig{
		Providers: map[string]*ProviderConfig{
			"anthropic": {
				Type:      ProviderTypeAnthropic,
				Role:      ProviderRolePrimary,
				Model:     DefaultAnthropicModel,
				APIKeyEnv: "ANTHROPIC_API_KEY",
				Weight:    10,
				Timeout:   60 * time.Second,
			},
			"openai": {
				Type:      ProviderTypeOpenAI,
				Role:      ProviderRoleSecondary,
				Model:     DefaultOpenAIModel,
				APIKeyEnv: "OPENAI_API_KEY",
				Weight:    5,
				Timeout:   60 * time.Second,
			},
		},
	}
}
