package config

// ProviderType defines supported AI providers
type ProviderType string

const (
	// ProviderTypeAnthropic uses the Anthropic SDK
	ProviderTypeAnthropic ProviderType = "anthropic"
	// ProviderTypeOpenAI uses the OpenAI-compatible chat completions API
	ProviderTypeOpenAI ProviderType = "openai"
)

// IsValid checks if the provider type is valid
func (t ProviderType) IsValid() bool {
	return t == ProviderTypeAnthropic || t == ProviderTypeOpenAI
}

// ProviderRole marks a provider's position in the failover order
type ProviderRole string

const (
	// ProviderRolePrimary is tried first
	ProviderRolePrimary ProviderRole = "primary"
	// ProviderRoleSecondary is tried when the primary is unavailable
	ProviderRoleSecondary ProviderRole = "secondary"
)

// IsValid checks if the provider role is valid
func (r ProviderRole) IsValid() bool {
	return r == ProviderRolePrimary || r == ProviderRoleSecondary
}
