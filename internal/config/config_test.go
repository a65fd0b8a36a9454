package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvHost, "0.0.0.0")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvStrict, "true")
	t.Setenv(EnvExternalPort, "1234")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Host != "0.0.0.0" || c.Port != 9090 || !c.Strict || c.ExternalPort != 1234 {
		t.Errorf("config = %+v", c)
	}
	if c.MaxFastWorkers != 0 || c.MaxRounds != 0 {
		t.Errorf("unset values = %+v", c)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "BB_PORT=7070\nBB_MAX_SLOW_WORKERS=2\nBB_HOST=filehost\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// variables already set win over the file
	t.Setenv(EnvHost, "envhost")
	// t.Setenv restores these after the test
	t.Setenv(EnvPort, "")
	os.Unsetenv(EnvPort)
	t.Setenv(EnvMaxSlowWorkers, "")
	os.Unsetenv(EnvMaxSlowWorkers)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 7070 || c.MaxSlowWorkers != 2 || c.Host != "envhost" {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad port", EnvPort, "eighty"},
		{"negative workers", EnvMaxFastWorkers, "-1"},
		{"bad strict", EnvStrict, "maybe"},
		{"bad external port", EnvExternalPort, "x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	if StringOr("", "a") != "a" || StringOr("b", "a") != "b" {
		t.Error("StringOr")
	}
	if IntOr(0, 3) != 3 || IntOr(5, 3) != 5 {
		t.Error("IntOr")
	}
}
