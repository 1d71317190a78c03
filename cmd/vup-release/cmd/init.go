package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/config"
)

var initForce bool

// initTemplate is the default vup-release.yaml scaffold.
const initTemplate = `# vup-release configuration
version: 1

# GitHub repository holding the {category}-{arch}-current releases.
# Overridden by GITHUB_REPOSITORY.
repository: your-org/vup

# Release line. Overridden by CATEGORY and ARCH.
category: core
arch: x86_64

# Local working directory. Overridden by VUP_DIST_DIR.
dist_dir: dist

# Upper bound for one command, external calls included.
timeout: 10m

# Authoritative version comparison. Falls back to structural comparison
# when the binary is not installed.
# oracle:
#   disabled: false
#   binary: xbps-uhelper

# S3-compatible mirror (Cloudflare R2, MinIO, S3).
# Overridden by R2_BUCKET, R2_ENDPOINT and R2_REGION.
# Credentials are only ever read from the environment.
# object_store:
#   bucket: vup-packages
#   endpoint: <account>.r2.cloudflarestorage.com
#   region: auto
#   access_key_env: R2_ACCESS_KEY_ID
#   secret_key_env: R2_SECRET_ACCESS_KEY
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter vup-release.yaml configuration",
	Long: `Creates a vup-release.yaml file in the current directory with a commented
template covering the release line, the dist directory and the object store.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if outPath == "" {
			outPath = config.FileName
		}
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Set repository and category for your release line")
		info("  2. Run 'vup-release download' to fetch the current release")
		info("  3. Run 'vup-release prune' after each build")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
