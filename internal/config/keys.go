package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	legacy  string // pre-rework variable name, still honored
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "EIHUB_SERVER_PORT", legacy: "PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "backend.base_url", typ: kString, env: "EIHUB_BACKEND_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Backend.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.BaseURL },
	},
	{
		key: "backend.api_key", typ: kString, env: "EIHUB_API_KEY", legacy: "OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Backend.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.APIKey },
	},
	{
		key: "backend.documents_dir", typ: kString, env: "EIHUB_DOCUMENTS_DIR", legacy: "DOCUMENTS_DIR",
		apply:   func(cfg *Config, v any) { cfg.Backend.DocumentsDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.DocumentsDir },
	},
	{
		key: "backend.ask_timeout", typ: kString, env: "EIHUB_ASK_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Backend.AskTimeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.AskTimeout },
	},
	{
		key: "docs.repo_base_url", typ: kString, env: "EIHUB_DOCS_REPO_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Docs.RepoBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Docs.RepoBaseURL },
	},
	{
		key: "log.level", typ: kString, env: "EIHUB_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := ""
		if s.legacy != "" {
			raw = os.Getenv(s.legacy)
		}
		// The EIHUB_ name wins over the legacy alias when both are set.
		if v := os.Getenv(s.env); v != "" {
			raw = v
		}
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
