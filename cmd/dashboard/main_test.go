package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigBootstrapsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "skills.yml"), []byte("skills:\n  - tag: Go\n    any: [golang]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := loadConfig(dir, "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if path != filepath.Join(dir, "config.yml") {
		t.Fatalf("path=%q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("user config not written: %v", err)
	}
	if cfg.App.DataDir != dir {
		t.Fatalf("data dir=%q", cfg.App.DataDir)
	}
	if len(cfg.Skills) != 1 || cfg.Skills[0].Tag != "Go" {
		t.Fatalf("skills overlay not applied: %+v", cfg.Skills)
	}

	if _, _, err := loadConfig(dir, filepath.Join(dir, "absent.yml")); err == nil {
		t.Fatalf("explicit missing config should fail")
	}
}
