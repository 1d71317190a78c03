package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vup-linux/vup-release/internal/remote"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "vup-release.yaml")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noInherit(project string) DiscoverOptions {
	return DiscoverOptions{
		ProjectPath:      project,
		SystemConfigPath: filepath.Join(os.TempDir(), "vup-release-none", "system.yaml"),
		UserConfigPath:   filepath.Join(os.TempDir(), "vup-release-none", "user.yaml"),
	}
}

func validConfig() *Config {
	cfg := &Config{Category: "core", Repository: "vup-linux/vup"}
	ApplyDefaults(cfg)
	return cfg
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), exampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Category != "core" {
		t.Errorf("category = %q", cfg.Category)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/vup-release.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: [1\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Version != 1 {
		t.Errorf("version = %d", cfg.Version)
	}
	if cfg.Arch != DefaultArch || cfg.DistDir != DefaultDistDir || cfg.Timeout != DefaultTimeout {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.ObjectStore.AccessKeyEnv != DefaultAccessKeyEnv || cfg.ObjectStore.SecretKeyEnv != DefaultSecretKeyEnv {
		t.Errorf("credential env defaults not applied: %+v", cfg.ObjectStore)
	}

	set := &Config{Arch: "i686", DistDir: "out"}
	ApplyDefaults(set)
	if set.Arch != "i686" || set.DistDir != "out" {
		t.Errorf("defaults overwrote explicit values: %+v", set)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{Category: "core", Arch: "x86_64"}
	err := ApplyEnv(cfg, env(map[string]string{
		EnvRepository: "vup-linux/vup",
		EnvArch:       " aarch64 ",
		EnvBucket:     "vup-repo",
		EnvTimeout:    "90s",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Repository != "vup-linux/vup" {
		t.Errorf("repository = %q", cfg.Repository)
	}
	if cfg.Category != "core" {
		t.Errorf("unset variable changed category to %q", cfg.Category)
	}
	if cfg.Arch != "aarch64" {
		t.Errorf("arch = %q, want trimmed aarch64", cfg.Arch)
	}
	if cfg.ObjectStore.Bucket != "vup-repo" {
		t.Errorf("bucket = %q", cfg.ObjectStore.Bucket)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
}

func TestApplyEnvBadTimeout(t *testing.T) {
	err := ApplyEnv(&Config{}, env(map[string]string{EnvTimeout: "soon"}))
	if err == nil || !strings.Contains(err.Error(), EnvTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"version", func(c *Config) { c.Version = 99 }, "unsupported version"},
		{"category missing", func(c *Config) { c.Category = "" }, "'category' is required"},
		{"category slash", func(c *Config) { c.Category = "core/extra" }, "invalid category"},
		{"arch space", func(c *Config) { c.Arch = "x86 64" }, "invalid arch"},
		{"dist dir", func(c *Config) { c.DistDir = "" }, "'dist_dir' is required"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if tt.want == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if !containsSubstring(errs, tt.want) {
				t.Errorf("errors %v missing %q", errs, tt.want)
			}
		})
	}
}

func TestValidateAssetStore(t *testing.T) {
	for _, repo := range []string{"", "vup", "/vup", "vup-linux/", "a/b/c"} {
		cfg := validConfig()
		cfg.Repository = repo
		if errs := ValidateAssetStore(cfg); len(errs) == 0 {
			t.Errorf("repository %q should be rejected", repo)
		}
	}
	if errs := ValidateAssetStore(validConfig()); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidateObjectStore(t *testing.T) {
	cfg := validConfig()
	errs := ValidateObjectStore(cfg)
	if !containsSubstring(errs, "object_store.bucket") || !containsSubstring(errs, "object_store.endpoint") {
		t.Errorf("expected bucket and endpoint errors, got %v", errs)
	}

	cfg.ObjectStore.Bucket = "vup-repo"
	cfg.ObjectStore.Endpoint = "https://r2.example.com"
	if errs := ValidateObjectStore(cfg); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestCheck(t *testing.T) {
	if err := Check(nil, []string{}); err != nil {
		t.Errorf("Check of no messages = %v", err)
	}

	err := Check([]string{"a"}, []string{"b"})
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 2 {
		t.Fatalf("Check = %v", err)
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError = false")
	}
	if !strings.Contains(err.Error(), "  - a\n  - b") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCredentials(t *testing.T) {
	oc := ObjectStoreConfig{}

	_, _, err := oc.Credentials(env(map[string]string{DefaultAccessKeyEnv: "key"}))
	if !errors.Is(err, remote.ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), DefaultSecretKeyEnv) {
		t.Errorf("error should name the missing variable: %v", err)
	}

	oc.AccessKeyEnv, oc.SecretKeyEnv = "MY_KEY", "MY_SECRET"
	ak, sk, err := oc.Credentials(env(map[string]string{"MY_KEY": "k", "MY_SECRET": "s"}))
	if err != nil || ak != "k" || sk != "s" {
		t.Errorf("Credentials = %q, %q, %v", ak, sk, err)
	}
}

func TestLoadLayeredMergesAndAppliesEnv(t *testing.T) {
	root := t.TempDir()
	system := writeConfig(t, filepath.Join(root, "system"), "version: 1\nrepository: vup-linux/vup\narch: i686\n")
	project := writeConfig(t, filepath.Join(root, "project"), "category: core\narch: aarch64\n")

	cfg, layers, err := LoadLayered(LoadOptions{
		DiscoverOptions: DiscoverOptions{
			ProjectPath:      project,
			SystemConfigPath: system,
			UserConfigPath:   filepath.Join(root, "missing", "vup-release.yaml"),
		},
		Getenv: env(map[string]string{EnvDistDir: "out"}),
	})
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}

	if cfg.Repository != "vup-linux/vup" {
		t.Errorf("repository = %q, want inherited from system", cfg.Repository)
	}
	if cfg.Arch != "aarch64" {
		t.Errorf("arch = %q, want project value", cfg.Arch)
	}
	if cfg.DistDir != "out" {
		t.Errorf("dist_dir = %q, want env value", cfg.DistDir)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout = %s, want default", cfg.Timeout)
	}

	loaded := 0
	for _, l := range layers {
		if l.Loaded && l.Path != "" {
			loaded++
		}
	}
	if loaded != 2 {
		t.Errorf("loaded files = %d, want 2", loaded)
	}
}

func TestLoadLayeredNoInherit(t *testing.T) {
	root := t.TempDir()
	system := writeConfig(t, filepath.Join(root, "system"), "repository: vup-linux/vup\n")
	project := writeConfig(t, filepath.Join(root, "project"), "category: core\n")

	cfg, _, err := LoadLayered(LoadOptions{
		DiscoverOptions: DiscoverOptions{ProjectPath: project, SystemConfigPath: system},
		NoInherit:       true,
		Getenv:          env(nil),
	})
	if err != nil {
		t.Fatalf("LoadLayered: %v", err)
	}
	if cfg.Repository != "" {
		t.Errorf("repository = %q, system layer should be skipped", cfg.Repository)
	}
}

func TestLoadLayeredMissingProject(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "vup-release.yaml")

	cfg, _, err := LoadLayered(LoadOptions{DiscoverOptions: noInherit(missing), Getenv: env(nil)})
	if err != nil {
		t.Fatalf("optional project config: %v", err)
	}
	if cfg.Arch != DefaultArch {
		t.Errorf("arch = %q, want default", cfg.Arch)
	}

	_, _, err = LoadLayered(LoadOptions{DiscoverOptions: noInherit(missing), ProjectRequired: true, Getenv: env(nil)})
	if err == nil {
		t.Fatal("expected error for required project config")
	}
}

func TestLoadLayeredVersionMismatch(t *testing.T) {
	root := t.TempDir()
	system := writeConfig(t, filepath.Join(root, "system"), "version: 2\n")
	project := writeConfig(t, filepath.Join(root, "project"), "version: 1\n")

	_, _, err := LoadLayered(LoadOptions{
		DiscoverOptions: DiscoverOptions{
			ProjectPath:      project,
			SystemConfigPath: system,
			UserConfigPath:   filepath.Join(root, "missing", "vup-release.yaml"),
		},
		Getenv: env(nil),
	})
	if err == nil || !strings.Contains(err.Error(), "version mismatch") {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func containsSubstring(errs []string, sub string) bool {
	for _, e := range errs {
		if strings.Contains(e, sub) {
			return true
		}
	}
	return false
}
