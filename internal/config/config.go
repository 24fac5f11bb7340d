// Package config holds the process configuration: defaults overridden by
// environment variables. A .env file, when present, is loaded into the
// environment by the command layer before Load runs.
package config

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Docs    DocsConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type BackendConfig struct {
	// BaseURL of the document QA engine's HTTP API.
	BaseURL string
	// APIKey is the credential the engine requires. Its absence is not a
	// load error: readiness initialization checks it and records the
	// failure in process state.
	APIKey string
	// DocumentsDir is the local directory of source documents, created at
	// initialization if absent.
	DocumentsDir string
	// AskTimeout bounds a single question round-trip, as a duration string.
	AskTimeout string
}

type DocsConfig struct {
	// RepoBaseURL is the public URL prefix source citations link under.
	RepoBaseURL string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Backend: BackendConfig{
			BaseURL:      "http://127.0.0.1:8700",
			DocumentsDir: "documents",
			AskTimeout:   "60s",
		},
		Docs: DocsConfig{
			RepoBaseURL: "https://github.com/juander/eihub-rag/blob/main/documents/",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults and environment overrides.
// Missing values are never an error here; required-at-runtime values are
// validated where they are consumed.
func Load() (Config, error) {
	cfg := defaults()
	applyEnvOverrides(&cfg)
	return cfg, nil
}
