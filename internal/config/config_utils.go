package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills values viper cannot express on its own
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applySemanticKeyFallback()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks parses comma-separated server keys, which viper
// does not split when they arrive through the environment.
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 1 && strings.Contains(c.Server.APIKeys[0], ",") {
		c.Server.APIKeys = splitAndTrim(c.Server.APIKeys[0])
	}
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv(envPrefix + "_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

func (c *Config) applyTLSDefaults() {
	t := &c.Server.TLS
	if t.Mode == "mutual" && t.ClientAuthPolicy == "" {
		t.ClientAuthPolicy = "require"
	}
	if t.Mode != "disabled" && t.MinVersion == "" {
		t.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults names the instance after the host and turns
// on console exporters at debug level.
func (c *Config) applyObservabilityDefaults() {
	o := &c.Observability
	if o.ServiceInstance == "" {
		suffix := "1"
		if host, err := os.Hostname(); err == nil {
			suffix = host
		}
		o.ServiceInstance = o.ServiceName + "-" + suffix
	}
	if c.App.LogLevel == "debug" {
		o.ConsoleOutput = true
	}
}

func splitAndTrim(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// trackedEnv lists the variables worth reporting at startup
var trackedEnv = []string{
	"SEMANTIC_PROVIDER", "SEMANTIC_MODEL", "SEMANTIC_APIKEY",
	"SCORING_VOCABULARY_FILE", "SERVER_HOST", "SERVER_PORT", "SERVER_APIKEYS",
	"APP_LOGLEVEL", "VAULT_ENABLED", "DOCUMENT_S3_SECRETACCESSKEY",
}

// logConfigurationSources prints where the configuration came from and the
// values that matter most, masking anything that looks like a credential.
func (c *Config) logConfigurationSources(file string) {
	if file == "" {
		file = "none, defaults and environment only"
	}
	log.Printf("[CONFIG] file: %s", file)

	names := make([]string, 0, len(trackedEnv)+1)
	for _, suffix := range trackedEnv {
		names = append(names, envPrefix+"_"+suffix)
	}
	names = append(names, "GEMINI_API_KEY")

	var set []string
	for _, name := range names {
		value, ok := os.LookupEnv(name)
		if !ok || value == "" {
			continue
		}
		if isSensitive(name) {
			value = "***"
		}
		set = append(set, name+"="+value)
	}
	if len(set) > 0 {
		log.Printf("[CONFIG] env: %s", strings.Join(set, " "))
	}

	vocab := "bundled"
	switch {
	case c.Scoring.Vocabulary.File != "":
		vocab = fmt.Sprintf("%s (watch=%t)", c.Scoring.Vocabulary.File, c.Scoring.Vocabulary.Watch)
	case len(c.Scoring.Vocabulary.Skills) > 0:
		vocab = fmt.Sprintf("%d inline terms", len(c.Scoring.Vocabulary.Skills))
	}
	log.Printf("[CONFIG] scoring: composition=%.2f/%.2f lemmatizer=%s vocabulary=%s",
		c.Scoring.Composition.Semantic, c.Scoring.Composition.Keyword, c.Scoring.Lemmatizer, vocab)
	log.Printf("[CONFIG] semantic: provider=%s model=%s key_set=%t",
		c.Semantic.Provider, c.Semantic.Model, c.Semantic.APIKey != "")
	log.Printf("[CONFIG] server: %s:%s tls=%s log=%s vault=%t observability=%t",
		c.Server.Host, c.Server.Port, c.Server.TLS.Mode, c.App.LogLevel, c.Vault.Enabled, c.Observability.Enabled)
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"key", "secret", "token"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
