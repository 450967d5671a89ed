package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_RoundTrip(t *testing.T) {
	setHome(t)

	want, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DataRoot != want.DataRoot {
		t.Fatalf("DataRoot = %q, want %q", got.DataRoot, want.DataRoot)
	}
	if len(got.Datasets) != 2 || got.Datasets[0].ExpectedImages != 497 || got.Datasets[1].ExpectedImages != 496 {
		t.Fatalf("datasets = %+v", got.Datasets)
	}
}

func TestLoad_EnvOverridesDataRoot(t *testing.T) {
	setHome(t)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	override := t.TempDir()
	t.Setenv("BTT_DATA_ROOT", override)

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.DataRoot != override {
		t.Fatalf("DataRoot = %q, want env override %q", got.DataRoot, override)
	}
}

func TestLoad_DotEnvFallback(t *testing.T) {
	home := setHome(t)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	override := t.TempDir()
	dotenv := "BTT_DATA_ROOT=" + override + "\n"
	if err := os.WriteFile(filepath.Join(home, ".bttctl", ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.DataRoot != override {
		t.Fatalf("DataRoot = %q, want dotenv override %q", got.DataRoot, override)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	home := setHome(t)
	if err := os.MkdirAll(filepath.Join(home, ".bttctl"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, ".bttctl", "bttctl.yaml"), []byte("data_root: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestFind(t *testing.T) {
	cfg := &Config{Datasets: []DatasetRef{
		{ID: "852a64c6-4bd3-495f-8ff7-f5cc85e34316", Name: "synthetic-train"},
	}}

	if _, ok := cfg.Find("synthetic-train"); !ok {
		t.Fatal("lookup by name failed")
	}
	if _, ok := cfg.Find("852a64c6-4bd3-495f-8ff7-f5cc85e34316"); !ok {
		t.Fatal("lookup by id failed")
	}
	if _, ok := cfg.Find("nope"); ok {
		t.Fatal("unexpected match")
	}
}

func TestEnsureDotEnvTemplate_DoesNotOverwrite(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ".bttctl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("BTT_DATA_ROOT=/keep\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "BTT_DATA_ROOT=/keep\n" {
		t.Fatalf("template overwrote existing file: %q", b)
	}
}
