package config

import (
	"time"

	"github.com/vup-linux/vup-release/internal/remote"
)

// Config represents the vup-release.yaml configuration file.
type Config struct {
	Version    int    `yaml:"version"`
	Repository string `yaml:"repository,omitempty"` // "owner/name" of the GitHub repository
	Category   string `yaml:"category,omitempty"`
	Arch       string `yaml:"arch,omitempty"`
	DistDir    string `yaml:"dist_dir,omitempty"`

	// Timeout bounds one command invocation, external calls included.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Oracle      OracleConfig      `yaml:"oracle,omitempty"`
	ObjectStore ObjectStoreConfig `yaml:"object_store,omitempty"`
}

// OracleConfig controls the external version comparison tool. Disabled is a
// pointer so a higher layer can turn the oracle back on with "disabled: false".
type OracleConfig struct {
	Disabled *bool  `yaml:"disabled,omitempty"`
	Binary   string `yaml:"binary,omitempty"`
}

// Enabled reports whether the oracle may be consulted.
func (o OracleConfig) Enabled() bool {
	return o.Disabled == nil || !*o.Disabled
}

// ObjectStoreConfig describes the S3-compatible bucket. Credentials are never
// read from the file; only the names of the variables holding them are.
type ObjectStoreConfig struct {
	Bucket       string `yaml:"bucket,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	Region       string `yaml:"region,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
	AccessKeyEnv string `yaml:"access_key_env,omitempty"`
	SecretKeyEnv string `yaml:"secret_key_env,omitempty"`
}

// Tag returns the release line name, e.g. "core-x86_64-current".
func (c *Config) Tag() string {
	return remote.ReleaseTag(c.Category, c.Arch)
}
