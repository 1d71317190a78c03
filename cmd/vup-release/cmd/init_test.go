package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vup-linux/vup-release/internal/config"
)

func useConfigPath(t *testing.T, path string) {
	t.Helper()
	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })
}

func TestInitCreatesConfig(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "vup-release.yaml")
	useConfigPath(t, outPath)

	initForce = false
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "vup-release.yaml")
	if err := os.WriteFile(outPath, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}
	useConfigPath(t, outPath)

	initForce = false
	err := initCmd.RunE(initCmd, nil)
	if err == nil {
		t.Fatal("expected error when file exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error should mention 'already exists': %v", err)
	}
}

func TestInitForceOverwrites(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "vup-release.yaml")
	if err := os.WriteFile(outPath, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}
	useConfigPath(t, outPath)

	initForce = true
	defer func() { initForce = false }()
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "old content" {
		t.Error("file was not overwritten")
	}
}

func TestInitTemplateLoadsAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vup-release.yaml")
	if err := os.WriteFile(path, []byte(initTemplate), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	config.ApplyDefaults(cfg)
	if err := config.Check(config.Validate(cfg), config.ValidateAssetStore(cfg)); err != nil {
		t.Errorf("template does not validate: %v", err)
	}
	if cfg.Tag() != "core-x86_64-current" {
		t.Errorf("tag = %q", cfg.Tag())
	}
}
