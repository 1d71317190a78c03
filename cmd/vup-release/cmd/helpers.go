package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/config"
	"github.com/vup-linux/vup-release/internal/logging"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/runner"
	"github.com/vup-linux/vup-release/internal/version"
)

// loadConfig merges the config layers, the environment and the global flags,
// then validates the settings every command needs.
func loadConfig() (*config.Config, error) {
	cfg, _, err := loadConfigLayers()
	return cfg, err
}

// loadConfigLayers is loadConfig that also reports what each layer set, the
// global flags last.
func loadConfigLayers() (*config.Config, []config.ConfigLayerInfo, error) {
	cfg, layers, err := config.LoadLayered(config.LoadOptions{
		DiscoverOptions: config.DiscoverOptions{ProjectPath: configPath},
		ProjectRequired: rootCmd.PersistentFlags().Changed("config"),
		NoInherit:       config.EnvNoInherit(os.Getenv),
	})
	if err != nil {
		return nil, layers, err
	}
	if fields := applyFlags(cfg); len(fields) > 0 {
		layers = append(layers, config.ConfigLayerInfo{Level: config.LevelFlag, Loaded: true, Fields: fields})
	}

	if err := config.Check(config.Validate(cfg)); err != nil {
		return nil, layers, err
	}
	return cfg, layers, nil
}

// applyFlags overrides cfg with the global flags that were given and returns
// the settings they replaced.
func applyFlags(cfg *config.Config) []string {
	var fields []string
	for _, f := range []struct {
		value string
		key   string
		dst   *string
	}{
		{distDirFlag, "dist_dir", &cfg.DistDir},
		{categoryFlag, "category", &cfg.Category},
		{archFlag, "arch", &cfg.Arch},
		{repoFlag, "repository", &cfg.Repository},
	} {
		if f.value != "" {
			*f.dst = f.value
			fields = append(fields, f.key)
		}
	}
	return fields
}

// newLogger builds the diagnostic logger from the global flags.
func newLogger() zerolog.Logger {
	return logging.New(logging.Options{Verbose: verbose, Quiet: quiet, NoColor: noColor})
}

// commandContext bounds a command by the configured timeout.
func commandContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Timeout)
}

// newComparator returns a comparator backed by xbps-uhelper when it is
// installed and not disabled.
func newComparator(cfg *config.Config, log zerolog.Logger) version.Comparator {
	cmp := version.Comparator{Oracle: version.NoOracle{}, Log: log}
	if !cfg.Oracle.Enabled() {
		return cmp
	}
	binary := cfg.Oracle.Binary
	if binary == "" {
		binary = version.DefaultOracleBinary
	}
	if !runner.Available(binary) {
		log.Debug().Str("binary", binary).Msg("version oracle not installed, using structural comparison")
		return cmp
	}
	cmp.Oracle = version.XbpsOracle{Runner: runner.ExecRunner{}, Binary: binary}
	return cmp
}

// newAssetStore returns the GitHub release tier.
func newAssetStore(cfg *config.Config) (remote.AssetStore, error) {
	if err := config.Check(config.ValidateAssetStore(cfg)); err != nil {
		return nil, err
	}
	return &remote.GitHubReleases{Repo: cfg.Repository, Runner: runner.ExecRunner{}}, nil
}

// newObjectStore returns the bucket tier. Missing credentials fail here and
// only here.
func newObjectStore(cfg *config.Config) (remote.ObjectStore, error) {
	if err := config.Check(config.ValidateObjectStore(cfg)); err != nil {
		return nil, err
	}
	accessKey, secretKey, err := cfg.ObjectStore.Credentials(os.Getenv)
	if err != nil {
		return nil, &remote.TierError{
			Tier: remote.TierObjectStore,
			Operation: "connect",
			Err:       err,
			Hint:      "export the bucket credentials before running this command",
		}
	}
	return remote.NewS3Store(remote.S3Config{
		Endpoint:  cfg.ObjectStore.Endpoint,
		Bucket:    cfg.ObjectStore.Bucket,
		Region:    cfg.ObjectStore.Region,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Insecure:  cfg.ObjectStore.Insecure,
	})
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
