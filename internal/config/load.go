package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vup-linux/vup-release/internal/remote"
)

const (
	DefaultArch         = "x86_64"
	DefaultDistDir      = "dist"
	DefaultTimeout      = 10 * time.Minute
	DefaultRegion       = "auto"
	DefaultAccessKeyEnv = "R2_ACCESS_KEY_ID"
	DefaultSecretKeyEnv = "R2_SECRET_ACCESS_KEY"
)

// Environment variables read by ApplyEnv. They carry the names used by the
// CI workflows that drive the release jobs.
const (
	EnvRepository = "GITHUB_REPOSITORY"
	EnvCategory   = "CATEGORY"
	EnvArch       = "ARCH"
	EnvDistDir    = "VUP_DIST_DIR"
	EnvTimeout    = "VUP_TIMEOUT"
	EnvBucket     = "R2_BUCKET"
	EnvEndpoint   = "R2_ENDPOINT"
	EnvRegion     = "R2_REGION"
)

// Load reads and parses a vup-release.yaml file. Validation happens after
// all layers, environment and flags have been applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOptions controls LoadLayered.
type LoadOptions struct {
	DiscoverOptions

	// ProjectRequired makes a missing project config an error.
	ProjectRequired bool

	// NoInherit skips the system and user layers.
	NoInherit bool

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// LoadLayered loads every discovered config file that exists, merges them
// lowest precedence first, then applies environment overrides and defaults.
// The returned layers record what each file and the environment set; a
// missing optional file is returned with Loaded false.
func LoadLayered(opts LoadOptions) (*Config, []ConfigLayerInfo, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var layers []ConfigLayerInfo
	var configs []*Config
	for _, l := range DiscoverPaths(opts.DiscoverOptions) {
		if opts.NoInherit && l.Level != LevelProject {
			continue
		}
		cfg, err := loadLayer(&l, opts.ProjectRequired)
		layers = append(layers, l)
		if err != nil {
			return nil, layers, err
		}
		if cfg != nil {
			configs = append(configs, cfg)
		}
	}
	if opts.ProjectRequired && opts.ProjectPath == "" && !hasLevel(layers, LevelProject) {
		return nil, layers, fmt.Errorf("no %s found between %s and the repository root", FileName, orDefault(opts.WorkDir, "."))
	}

	merged := &Config{}
	if len(configs) > 0 {
		var err error
		if merged, err = MergeAll(configs); err != nil {
			return nil, layers, err
		}
	}

	fields, err := applyEnv(merged, getenv)
	if err != nil {
		return nil, layers, err
	}
	layers = append(layers, ConfigLayerInfo{Level: LevelEnv, Loaded: len(fields) > 0, Fields: fields})

	ApplyDefaults(merged)
	return merged, layers, nil
}

// loadLayer reads one discovered file into l. A missing file is skipped
// unless it is the required project config.
func loadLayer(l *ConfigLayerInfo, projectRequired bool) (*Config, error) {
	if _, err := os.Stat(l.Path); err != nil {
		if os.IsNotExist(err) && !(l.Level == LevelProject && projectRequired) {
			return nil, nil
		}
		l.Err = err
		return nil, fmt.Errorf("config %s: %w", l.Path, err)
	}
	cfg, err := Load(l.Path)
	if err != nil {
		l.Err = err
		return nil, err
	}
	l.Loaded = true
	l.Fields = fieldsSet(cfg)
	return cfg, nil
}

func hasLevel(layers []ConfigLayerInfo, level ConfigLevel) bool {
	for _, l := range layers {
		if l.Level == level {
			return true
		}
	}
	return false
}

// envBindings maps each recognized variable to the setting it overrides.
var envBindings = []struct {
	env, key string
	field    func(*Config) *string
}{
	{EnvRepository, "repository", func(c *Config) *string { return &c.Repository }},
	{EnvCategory, "category", func(c *Config) *string { return &c.Category }},
	{EnvArch, "arch", func(c *Config) *string { return &c.Arch }},
	{EnvDistDir, "dist_dir", func(c *Config) *string { return &c.DistDir }},
	{EnvBucket, "object_store.bucket", func(c *Config) *string { return &c.ObjectStore.Bucket }},
	{EnvEndpoint, "object_store.endpoint", func(c *Config) *string { return &c.ObjectStore.Endpoint }},
	{EnvRegion, "object_store.region", func(c *Config) *string { return &c.ObjectStore.Region }},
}

// ApplyEnv overrides cfg with any of the recognized environment variables
// that are set.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	_, err := applyEnv(cfg, getenv)
	return err
}

func applyEnv(cfg *Config, getenv func(string) string) ([]string, error) {
	var fields []string
	for _, b := range envBindings {
		if v := strings.TrimSpace(getenv(b.env)); v != "" {
			*b.field(cfg) = v
			fields = append(fields, b.key)
		}
	}

	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid duration '%s': %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
		fields = append(fields, "timeout")
	}
	return fields, nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Arch == "" {
		cfg.Arch = DefaultArch
	}
	if cfg.DistDir == "" {
		cfg.DistDir = DefaultDistDir
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ObjectStore.Region == "" {
		cfg.ObjectStore.Region = DefaultRegion
	}
	if cfg.ObjectStore.AccessKeyEnv == "" {
		cfg.ObjectStore.AccessKeyEnv = DefaultAccessKeyEnv
	}
	if cfg.ObjectStore.SecretKeyEnv == "" {
		cfg.ObjectStore.SecretKeyEnv = DefaultSecretKeyEnv
	}
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Check wraps a list of validation messages into a *ValidationError, or
// returns nil when the list is empty.
func Check(errs ...[]string) error {
	var all []string
	for _, e := range errs {
		all = append(all, e...)
	}
	if len(all) == 0 {
		return nil
	}
	return &ValidationError{Errors: all}
}

// Validate checks the settings every command needs.
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}
	errs = append(errs, validateSegment("category", cfg.Category, EnvCategory)...)
	errs = append(errs, validateSegment("arch", cfg.Arch, EnvArch)...)
	if cfg.DistDir == "" {
		errs = append(errs, "'dist_dir' is required")
	}
	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("'timeout' must not be negative, got %s", cfg.Timeout))
	}
	return errs
}

// ValidateAssetStore checks the settings of the release-asset tier.
func ValidateAssetStore(cfg *Config) []string {
	if cfg.Repository == "" {
		return []string{fmt.Sprintf("'repository' is required — set it in the config or via %s", EnvRepository)}
	}
	owner, name, ok := strings.Cut(cfg.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return []string{fmt.Sprintf("invalid repository '%s' — expected 'owner/name'", cfg.Repository)}
	}
	return nil
}

// ValidateObjectStore checks the settings of the bucket tier. Credentials are
// checked separately by Credentials.
func ValidateObjectStore(cfg *Config) []string {
	var errs []string
	if cfg.ObjectStore.Bucket == "" {
		errs = append(errs, fmt.Sprintf("'object_store.bucket' is required — set it in the config or via %s", EnvBucket))
	}
	if cfg.ObjectStore.Endpoint == "" {
		errs = append(errs, fmt.Sprintf("'object_store.endpoint' is required — set it in the config or via %s", EnvEndpoint))
	}
	return errs
}

// Credentials reads the bucket access keys from the environment. Missing
// values return an error wrapping remote.ErrCredentialsMissing.
func (o ObjectStoreConfig) Credentials(getenv func(string) string) (accessKey, secretKey string, err error) {
	akEnv, skEnv := o.AccessKeyEnv, o.SecretKeyEnv
	if akEnv == "" {
		akEnv = DefaultAccessKeyEnv
	}
	if skEnv == "" {
		skEnv = DefaultSecretKeyEnv
	}
	accessKey, secretKey = getenv(akEnv), getenv(skEnv)

	var missing []string
	if accessKey == "" {
		missing = append(missing, akEnv)
	}
	if secretKey == "" {
		missing = append(missing, skEnv)
	}
	if len(missing) > 0 {
		return "", "", fmt.Errorf("%w: %s not set", remote.ErrCredentialsMissing, strings.Join(missing, ", "))
	}
	return accessKey, secretKey, nil
}

// IsValidationError reports whether err came from config validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateSegment(field, value, env string) []string {
	if value == "" {
		return []string{fmt.Sprintf("'%s' is required — set it in the config or via %s", field, env)}
	}
	if strings.ContainsAny(value, "/ \t\n") {
		return []string{fmt.Sprintf("invalid %s '%s' — must not contain '/' or whitespace", field, value)}
	}
	return nil
}
