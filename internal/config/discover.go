package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FileName is the name of a vup-release config file at every level.
const FileName = "vup-release.yaml"

// EnvNoInheritVar names the variable that skips the system and user layers.
const EnvNoInheritVar = "VUP_NO_INHERIT"

// ConfigLevel names where a setting came from. Levels are listed lowest
// precedence first.
type ConfigLevel string

const (
	LevelDefault ConfigLevel = "default"
	LevelSystem  ConfigLevel = "system"
	LevelUser    ConfigLevel = "user"
	LevelProject ConfigLevel = "project"
	LevelEnv     ConfigLevel = "env"
	LevelFlag    ConfigLevel = "flag"
)

// ConfigLayerInfo describes one source of settings and what it contributed.
type ConfigLayerInfo struct {
	Level ConfigLevel
	// Path is the config file; empty for the env and flag layers.
	Path   string
	Loaded bool
	// Fields lists the settings this layer set, as dotted YAML keys.
	Fields []string
	Err    error
}

// DiscoverOptions controls where config files are looked for.
type DiscoverOptions struct {
	// ProjectPath is an explicit project config. When empty, FileName is
	// searched for from WorkDir up to the root of the package repository.
	ProjectPath string

	// WorkDir defaults to the current directory.
	WorkDir string

	// SystemConfigPath and UserConfigPath replace /etc/vup-release and the
	// XDG config directory. Point them at a missing file to skip a level.
	SystemConfigPath string
	UserConfigPath   string
}

// DiscoverPaths returns the candidate config files, system first and project
// last. A file reachable from two levels is only read at the lower one.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	project := opts.ProjectPath
	if project == "" {
		project = FindProjectConfig(opts.WorkDir)
	}

	candidates := []ConfigLayerInfo{
		{Level: LevelSystem, Path: orDefault(opts.SystemConfigPath, filepath.Join("/etc", "vup-release", FileName))},
		{Level: LevelUser, Path: orDefault(opts.UserConfigPath, userConfigPath())},
		{Level: LevelProject, Path: project},
	}

	var layers []ConfigLayerInfo
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c.Path == "" {
			continue
		}
		key := c.Path
		if abs, err := filepath.Abs(c.Path); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		layers = append(layers, c)
	}
	return layers
}

// FindProjectConfig walks from dir toward the filesystem root looking for
// FileName. The walk stops at the repository root, the first directory
// holding .git, so a config outside the package repository is never picked
// up. It returns "" when there is none.
func FindProjectConfig(dir string) string {
	if dir == "" {
		dir = "."
	}
	cur, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(cur, FileName)
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			return candidate
		}
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			return ""
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vup-release", FileName)
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// EnvNoInherit reports whether VUP_NO_INHERIT holds a true boolean.
func EnvNoInherit(getenv func(string) string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getenv(EnvNoInheritVar)))
	return err == nil && v
}

// Origins maps every setting to the level that last set it. Settings that
// no layer mentions come from LevelDefault.
func Origins(layers []ConfigLayerInfo) map[string]ConfigLevel {
	origins := make(map[string]ConfigLevel, len(settingKeys))
	for _, key := range settingKeys {
		origins[key] = LevelDefault
	}
	for _, l := range layers {
		for _, f := range l.Fields {
			origins[f] = l.Level
		}
	}
	return origins
}

// SortedKeys returns the keys of an Origins map in a stable order.
func SortedKeys(origins map[string]ConfigLevel) []string {
	keys := make([]string, 0, len(origins))
	for k := range origins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// settingKeys lists every setting that Origins reports on.
var settingKeys = []string{
	"version", "repository", "category", "arch", "dist_dir", "timeout",
	"oracle.disabled", "oracle.binary",
	"object_store.bucket", "object_store.endpoint", "object_store.region",
	"object_store.insecure", "object_store.access_key_env", "object_store.secret_key_env",
}

// fieldsSet lists the settings a single file sets.
func fieldsSet(cfg *Config) []string {
	var keys []string
	add := func(key string, set bool) {
		if set {
			keys = append(keys, key)
		}
	}
	add("version", cfg.Version != 0)
	add("repository", cfg.Repository != "")
	add("category", cfg.Category != "")
	add("arch", cfg.Arch != "")
	add("dist_dir", cfg.DistDir != "")
	add("timeout", cfg.Timeout != 0)
	add("oracle.disabled", cfg.Oracle.Disabled != nil)
	add("oracle.binary", cfg.Oracle.Binary != "")
	store := cfg.ObjectStore
	add("object_store.bucket", store.Bucket != "")
	add("object_store.endpoint", store.Endpoint != "")
	add("object_store.region", store.Region != "")
	add("object_store.insecure", store.Insecure)
	add("object_store.access_key_env", store.AccessKeyEnv != "")
	add("object_store.secret_key_env", store.SecretKeyEnv != "")
	return keys
}
