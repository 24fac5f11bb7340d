package config

import "testing"

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
		if s.legacy != "" {
			t.Setenv(s.legacy, "")
		}
	}
}

// TestDefaults verifies all default values apply with an empty environment.
func TestDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8700" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.DocumentsDir != "documents" {
		t.Errorf("Backend.DocumentsDir = %q, want %q", cfg.Backend.DocumentsDir, "documents")
	}
	if cfg.Backend.AskTimeout != "60s" {
		t.Errorf("Backend.AskTimeout = %q, want %q", cfg.Backend.AskTimeout, "60s")
	}
	if cfg.Backend.APIKey != "" {
		t.Errorf("Backend.APIKey = %q, want empty", cfg.Backend.APIKey)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

// TestMissingAPIKeyIsNotALoadError verifies the credential check is
// deferred to state initialization rather than config loading.
func TestMissingAPIKeyIsNotALoadError(t *testing.T) {
	clearConfigEnv(t)

	if _, err := Load(); err != nil {
		t.Fatalf("Load with no credential should succeed, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("EIHUB_SERVER_PORT", "8080")
	t.Setenv("EIHUB_BACKEND_BASE_URL", "http://qa.internal:9000")
	t.Setenv("EIHUB_API_KEY", "sk-env")
	t.Setenv("EIHUB_ASK_TIMEOUT", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://qa.internal:9000" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIKey != "sk-env" {
		t.Errorf("Backend.APIKey = %q", cfg.Backend.APIKey)
	}
	if cfg.Backend.AskTimeout != "15s" {
		t.Errorf("Backend.AskTimeout = %q", cfg.Backend.AskTimeout)
	}
}

// TestLegacyEnvNames verifies the pre-rework variable names still work.
func TestLegacyEnvNames(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("DOCUMENTS_DIR", "/srv/docs")
	t.Setenv("PORT", "5050")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend.APIKey != "sk-legacy" {
		t.Errorf("Backend.APIKey = %q, want legacy value", cfg.Backend.APIKey)
	}
	if cfg.Backend.DocumentsDir != "/srv/docs" {
		t.Errorf("Backend.DocumentsDir = %q", cfg.Backend.DocumentsDir)
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("Server.Port = %d, want 5050", cfg.Server.Port)
	}
}

func TestNewNameWinsOverLegacy(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("EIHUB_API_KEY", "sk-new")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend.APIKey != "sk-new" {
		t.Errorf("Backend.APIKey = %q, want %q", cfg.Backend.APIKey, "sk-new")
	}
}

func TestInvalidPortFallsBackToDefault(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("EIHUB_SERVER_PORT", "not-a-port")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want default 5000", cfg.Server.Port)
	}
}

// TestShowAllHidesSecrets verifies the credential never appears in the
// config listing.
func TestShowAllHidesSecrets(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("EIHUB_API_KEY", "sk-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, k := range ShowAll(cfg) {
		if k.Key == "backend.api_key" {
			t.Errorf("ShowAll exposes secret key %q", k.Key)
		}
		if k.Value == "sk-secret" {
			t.Errorf("ShowAll exposes secret value via %q", k.Key)
		}
	}
}
