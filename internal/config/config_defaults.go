package config

import (
	"time"

	"github.com/spf13/viper"
)

// defaults is keyed by section path, then by field. The hashing embedder is
// the default provider so a fresh install scores offline.
var defaults = map[string]map[string]any{
	"scoring.composition": {
		"semantic": 0.5,
		"keyword":  0.5,
	},
	"scoring.readiness": {
		"semantic": 0.4,
		"keyword":  0.3,
		"skill":    0.2,
		"quality":  0.1,
	},
	"scoring.vocabulary": {
		"file":          "",
		"skills":        []string{},
		"watch":         false,
		"debounceDelay": time.Second,
	},
	"scoring": {
		"lemmatizer": "golem",
		"stopwords":  "english",
	},
	"semantic": {
		"provider":   "hashing",
		"model":      "text-embedding-004",
		"apiKey":     "",
		"timeout":    30 * time.Second,
		"maxRetries": 3,
		"dimensions": 384,
		"taskType":   "SEMANTIC_SIMILARITY",
	},
	"semantic.circuitBreaker": {
		"enabled":          true,
		"maxRequests":      3,
		"interval":         60 * time.Second,
		"timeout":          60 * time.Second,
		"minRequests":      3,
		"failureThreshold": 0.6,
	},
	"document.s3": {
		"region":          "auto",
		"endpoint":        "",
		"accessKeyId":     "",
		"secretAccessKey": "",
		"usePathStyle":    false,
	},
	"server": {
		"host":         "localhost",
		"port":         "8080",
		"readTimeout":  30 * time.Second,
		"writeTimeout": 60 * time.Second,
		"idleTimeout":  120 * time.Second,
		"apiKeys":      []string{},
	},
	"server.tls": {
		"mode":             "disabled",
		"certFile":         "",
		"keyFile":          "",
		"caFile":           "",
		"minVersion":       "1.2",
		"clientAuthPolicy": "require",
	},
	"server.rateLimit": {
		"enabled":        false,
		"requestsPerMin": 60,
		"burstCapacity":  10,
		"byIP":           true,
		"byAPIKey":       false,
		"window":         time.Minute,
	},
	"app": {
		"logLevel":         "info",
		"defaultFormat":    "json",
		"supportedFormats": []string{"json", "text", "markdown"},
		"maxFileSize":      5 * 1024 * 1024,
	},
	"vault": {
		"enabled":      false,
		"address":      "",
		"token":        "",
		"tokenFile":    "",
		"namespace":    "",
		"pollInterval": 0,
	},
	"vault.secrets": {
		"apiKeys":       "",
		"embeddingKey":  "",
		"s3Credentials": "",
	},
	"observability": {
		"enabled":         true,
		"serviceName":     "atscore",
		"serviceVersion":  "",
		"serviceInstance": "",
		"consoleOutput":   false,
		"sampleRate":      1.0,
	},
	"observability.tracing": {
		"enabled":    true,
		"sampleRate": 1.0,
	},
	"observability.metrics": {
		"enabled":            true,
		"collectionInterval": 15 * time.Second,
	},
	"observability.customMetrics": {
		"analysis":       true,
		"embedding":      true,
		"infrastructure": true,
	},
	"observability.prometheus": {
		"enabled":  true,
		"endpoint": "/metrics",
		"port":     "9090",
	},
	"observability.otlp": {
		"enabled":  false,
		"endpoint": "http://localhost:4318",
		"insecure": true,
		"headers":  map[string]string{},
	},
	"observability.healthCheck": {
		"timeout":               15 * time.Second,
		"embeddingCheckTimeout": 10 * time.Second,
	},
}

func setDefaults(v *viper.Viper) {
	for section, fields := range defaults {
		for key, value := range fields {
			v.SetDefault(section+"."+key, value)
		}
	}
}
