package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() of missing file failed: %v", err)
	}
	if f != (File{}) {
		t.Errorf("Load() of missing file = %+v, want zero value", f)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `store: redis://localhost:6379/0
id: anon-fixed
log_level: info
server:
  addr: 127.0.0.1:9000
  shutdown_timeout: 3s
defaults:
  morning: "07:30"
  before_sleep: "22:15"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if f.Store != "redis://localhost:6379/0" {
		t.Errorf("Store = %q", f.Store)
	}
	if f.Server.Addr != "127.0.0.1:9000" || f.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server = %+v", f.Server)
	}
	s := f.Defaults.Settings()
	if s.DefaultMorning != "07:30" || s.DefaultBeforeSleep != "22:15" || s.DefaultNoon != "" {
		t.Errorf("Defaults.Settings() = %+v", s)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad default time", "defaults:\n  noon: \"12:75\"\n", "Noon"},
		{"bad log level", "log_level: loud\n", "LogLevel"},
		{"bad server addr", "server:\n  addr: \"not an address\"\n", "Addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() should reject invalid config")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := File{Store: "firestore://demo-project", Defaults: Defaults{Evening: "18:45"}}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got != want {
		t.Errorf("Load(Save(f)) = %+v, want %+v", got, want)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("MEDREMIND_TEST_ONLY=from-dotenv\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("MEDREMIND_TEST_ONLY", "")
	os.Unsetenv("MEDREMIND_TEST_ONLY")

	loaded, err := LoadEnv(filepath.Join(dir, "missing.env"), envPath)
	if err != nil {
		t.Fatalf("LoadEnv() failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != envPath {
		t.Errorf("LoadEnv() loaded = %v, want [%s]", loaded, envPath)
	}
	if got := os.Getenv("MEDREMIND_TEST_ONLY"); got != "from-dotenv" {
		t.Errorf("MEDREMIND_TEST_ONLY = %q, want from-dotenv", got)
	}
}

func TestResolvePaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	p, err := ResolvePaths("~/.config/medremind")
	if err != nil {
		t.Fatalf("ResolvePaths() failed: %v", err)
	}
	if p.Dir != filepath.Join(home, ".config", "medremind") {
		t.Errorf("Dir = %q", p.Dir)
	}
	if filepath.Base(p.Database) != "medremind.db" || filepath.Base(p.Config) != "config.yaml" {
		t.Errorf("ResolvePaths() = %+v", p)
	}

	abs, _ := ResolvePaths("/srv/medremind")
	if abs.Dir != "/srv/medremind" {
		t.Errorf("absolute Dir = %q", abs.Dir)
	}
}
