package llm

import "os"

// envKeyVars maps each provider name to the environment variable this
// client reads its API key from when WithAPIKeysFromEnv is used.
var envKeyVars = map[string]string{
	"cerebras":  "CEREBRAS_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// WithAPIKeysFromEnv registers an API key for every provider whose
// corresponding environment variable (CEREBRAS_API_KEY, OPENAI_API_KEY,
// ANTHROPIC_API_KEY, GEMINI_API_KEY) is set. Providers with no
// matching variable are left unconfigured — Complete or Stream against
// them fails with ErrMissingAPIKey.
func WithAPIKeysFromEnv() Option {
	return func(c *Client) {
		for providerName, envVar := range envKeyVars {
			if key := os.Getenv(envVar); key != "" {
				c.apiKeys[providerName] = key
			}
		}
	}
}
