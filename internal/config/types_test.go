package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

const exampleConfig = `
version: 1
repository: vup-linux/vup
category: core
arch: aarch64
dist_dir: build/dist
timeout: 5m

oracle:
  binary: /usr/bin/xbps-uhelper

object_store:
  bucket: vup-repo
  endpoint: https://abc123.r2.cloudflarestorage.com
  region: auto
  access_key_env: VUP_R2_KEY
  secret_key_env: VUP_R2_SECRET
`

func TestUnmarshalExample(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(exampleConfig), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("version = %d, want 1", cfg.Version)
	}
	if cfg.Repository != "vup-linux/vup" {
		t.Errorf("repository = %q", cfg.Repository)
	}
	if cfg.Category != "core" || cfg.Arch != "aarch64" {
		t.Errorf("category/arch = %q/%q", cfg.Category, cfg.Arch)
	}
	if cfg.DistDir != "build/dist" {
		t.Errorf("dist_dir = %q", cfg.DistDir)
	}
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("timeout = %s, want 5m", cfg.Timeout)
	}
	if !cfg.Oracle.Enabled() || cfg.Oracle.Binary != "/usr/bin/xbps-uhelper" {
		t.Errorf("oracle = %+v", cfg.Oracle)
	}

	oc := cfg.ObjectStore
	if oc.Bucket != "vup-repo" || oc.Endpoint != "https://abc123.r2.cloudflarestorage.com" {
		t.Errorf("object_store = %+v", oc)
	}
	if oc.AccessKeyEnv != "VUP_R2_KEY" || oc.SecretKeyEnv != "VUP_R2_SECRET" {
		t.Errorf("credential env names = %q/%q", oc.AccessKeyEnv, oc.SecretKeyEnv)
	}
}

func TestTag(t *testing.T) {
	cfg := &Config{Category: "nonfree", Arch: "x86_64"}
	if got := cfg.Tag(); got != "nonfree-x86_64-current" {
		t.Errorf("Tag() = %q", got)
	}
}
