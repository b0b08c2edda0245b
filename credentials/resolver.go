package credentials

import "os"

// Provider type identifiers for credential resolution.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepgram = "deepgram"
)

// DefaultEnvVars maps provider types to their environment variable names,
// checked in order. The first non-empty value wins.
var DefaultEnvVars = map[string][]string{
	ProviderOpenAI:   {"OPENAI_API_KEY", "OPENAI_TOKEN"},
	ProviderDeepgram: {"DEEPGRAM_API_TOKEN", "DEEPGRAM_API_KEY"},
}

// ProviderHeaderConfig maps provider types to their API key header scheme.
var ProviderHeaderConfig = map[string]struct {
	HeaderName string
	Prefix     string
}{
	ProviderOpenAI:   {HeaderName: "Authorization", Prefix: "Bearer "},
	ProviderDeepgram: {HeaderName: "Authorization", Prefix: "Token "},
}

// ResolveFromEnv resolves a provider credential from the environment.
// It returns nil when no credential is configured; the caller treats a nil
// credential as "provider disabled" rather than an error, because which
// providers are attempted is toggled purely by credential presence.
func ResolveFromEnv(providerType string) *APIKeyCredential {
	for _, envVar := range DefaultEnvVars[providerType] {
		if v := os.Getenv(envVar); v != "" {
			hdr := ProviderHeaderConfig[providerType]
			return NewAPIKeyCredential(v,
				WithHeaderName(hdr.HeaderName),
				WithPrefix(hdr.Prefix),
			)
		}
	}
	return nil
}
