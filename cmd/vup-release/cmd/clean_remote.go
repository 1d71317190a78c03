package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/engine"
)

var cleanRemoteDryRun bool

var cleanRemoteCmd = &cobra.Command{
	Use:     "clean-remote",
	Aliases: []string{"clean_remote"},
	Short:   "Delete release assets that no longer exist locally",
	Long: `Lists the assets of the {category}-{arch}-current release and deletes
every asset without a counterpart in the dist directory. Nothing is uploaded:
new packages are published by the build workflow.

If the release cannot be listed (missing release, gh not installed, network
down) the pass is skipped with a warning rather than treated as empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assets, err := newAssetStore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd, cfg)
		defer cancel()

		eng := &engine.ReconcileEngine{Dir: cfg.DistDir, Assets: assets, Log: newLogger()}
		result, err := eng.CleanAssets(ctx, cfg.Tag(), engine.ReconcileOptions{DryRun: cleanRemoteDryRun})
		if result != nil {
			reportReconcile(result)
		}
		return err
	},
}

// reportReconcile prints the outcome of one reconciliation pass.
func reportReconcile(result *engine.ReconcileResult) {
	if result.DryRun {
		info("Dry run — remote %s not modified.", result.Tier)
	}
	if result.Skipped {
		info("Skipped %s %s: %s", result.Tier, result.Tag, result.Reason)
		return
	}
	if len(result.Uploaded) == 0 && len(result.Deleted) == 0 {
		info("Remote %s is in sync.", result.Tier)
		return
	}
	for _, f := range result.Uploaded {
		info("  %s  %s", f.Action, f.Path)
	}
	for _, f := range result.Deleted {
		info("  %s  %s", f.Action, f.Path)
	}
	info("\n%s %s: %d uploaded, %d deleted.", result.Tier, result.Tag, len(result.Uploaded), len(result.Deleted))
}

func init() {
	cleanRemoteCmd.Flags().BoolVar(&cleanRemoteDryRun, "dry-run", false, "show what would be deleted without acting")
	rootCmd.AddCommand(cleanRemoteCmd)
}
