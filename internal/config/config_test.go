package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if cfg.BackendURL != "" {
		t.Errorf("Expected empty backend URL, got %q", cfg.BackendURL)
	}
}

func TestSaveToAndLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{BackendURL: "https://api.example.com/", DataDir: "/tmp/rt", DownloadsDir: "/tmp/dl"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if loaded.BackendURL != cfg.BackendURL || loaded.DataDir != cfg.DataDir || loaded.DownloadsDir != cfg.DownloadsDir {
		t.Errorf("Loaded config %+v does not match saved %+v", loaded, cfg)
	}
	if got := loaded.NormalizedBackendURL(); got != "https://api.example.com" {
		t.Errorf("NormalizedBackendURL() = %q", got)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestApplyEnv_DotEnvAndOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("RESUME_TAILOR_DATA_DIR="+dir+"\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv(BackendURLEnv, "http://localhost:8000")
	t.Setenv(DataDirEnv, "")
	os.Unsetenv(DataDirEnv)

	cfg := &Config{BackendURL: "https://ignored.example.com"}
	if err := cfg.ApplyEnv(envFile); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}

	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("Expected env backend URL, got %q", cfg.BackendURL)
	}
	if cfg.DataDir != dir {
		t.Errorf("Expected data dir from .env %q, got %q", dir, cfg.DataDir)
	}
}

func TestApplyEnv_MissingFileIsIgnored(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ApplyEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Expected missing .env to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "Empty backend is allowed", cfg: Config{DataDir: dir}, wantErr: false},
		{name: "Valid https backend", cfg: Config{BackendURL: "https://api.example.com", DataDir: dir, DownloadsDir: dir}, wantErr: false},
		{name: "Unsupported scheme", cfg: Config{BackendURL: "ftp://api.example.com", DataDir: dir}, wantErr: true},
		{name: "Missing host", cfg: Config{BackendURL: "http://", DataDir: dir}, wantErr: true},
		{name: "Missing data dir", cfg: Config{}, wantErr: true},
		{name: "Missing downloads dir", cfg: Config{DataDir: dir, DownloadsDir: filepath.Join(dir, "nope")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
