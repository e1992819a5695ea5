package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvAPIKey, "")
	return path
}

func TestLoadConfig_Missing(t *testing.T) {
	useTempConfig(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultEnv != "dev" || len(cfg.Environments) != 0 {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}

func TestInitConfig(t *testing.T) {
	path := useTempConfig(t)

	written, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if written != path {
		t.Errorf("written to %s, want %s", written, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	if _, err := InitConfig(false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected refusal to overwrite, got %v", err)
	}
	if _, err := InitConfig(true); err != nil {
		t.Errorf("forced InitConfig: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Environments["dev"].BaseURL != "http://localhost:8080" {
		t.Errorf("unexpected dev env: %+v", cfg.Environments["dev"])
	}
}

func TestGetEnvConfig_Priority(t *testing.T) {
	useTempConfig(t)
	if err := SaveConfig(&Config{
		DefaultEnv: "dev",
		Environments: map[string]EnvConfig{
			"dev":     {BaseURL: "http://file-dev", APIKey: "file-key"},
			"staging": {BaseURL: "http://file-staging"},
		},
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name             string
		env, url, key    string
		envURL, envKey   string
		wantURL, wantKey string
		wantEnv          string
		wantErr          bool
	}{
		{name: "file default env", wantURL: "http://file-dev", wantKey: "file-key", wantEnv: "dev"},
		{name: "file named env", env: "staging", wantURL: "http://file-staging", wantEnv: "staging"},
		{name: "flag key overrides file", key: "flag-key", wantURL: "http://file-dev", wantKey: "flag-key", wantEnv: "dev"},
		{name: "env key overrides file", envKey: "env-key", wantURL: "http://file-dev", wantKey: "env-key", wantEnv: "dev"},
		{name: "flag url skips file", url: "http://flag", wantURL: "http://flag", wantEnv: "custom"},
		{name: "env url skips file", envURL: "http://env", envKey: "env-key", wantURL: "http://env", wantKey: "env-key", wantEnv: "custom"},
		{name: "flags beat env vars", url: "http://flag", key: "flag-key", envURL: "http://env", envKey: "env-key", wantURL: "http://flag", wantKey: "flag-key", wantEnv: "custom"},
		{name: "unknown env", env: "prod", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBaseURL, tt.envURL)
			t.Setenv(EnvAPIKey, tt.envKey)

			cfg, env, err := GetEnvConfig(tt.env, tt.url, tt.key)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetEnvConfig: %v", err)
			}
			if cfg.BaseURL != tt.wantURL || cfg.APIKey != tt.wantKey || env != tt.wantEnv {
				t.Errorf("got %+v env %s, want %s/%s env %s", cfg, env, tt.wantURL, tt.wantKey, tt.wantEnv)
			}
		})
	}
}
