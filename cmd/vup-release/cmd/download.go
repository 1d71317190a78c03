package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/engine"
)

var downloadDryRun bool

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Populate the dist directory from the current GitHub release",
	Long: `Downloads every asset of the {category}-{arch}-current release into the
dist directory, replacing local copies. If the release does not exist yet the
command succeeds without changes so a first build can start fresh.`,
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

		eng := &engine.DownloadEngine{Dir: cfg.DistDir, Assets: assets, Log: newLogger()}
		result, err := eng.Download(ctx, cfg.Tag(), engine.DownloadOptions{DryRun: downloadDryRun})
		if err != nil {
			return err
		}

		if result.DryRun {
			info("Dry run — nothing downloaded.")
		}
		if result.Fresh {
			info("Release %s not found, starting fresh.", result.Tag)
			return nil
		}
		for _, f := range result.Downloaded {
			detail("%-10s %s", f.Action, f.Path)
		}
		info("Downloaded %d file(s) from %s into %s.", len(result.Downloaded), result.Tag, cfg.DistDir)
		return nil
	},
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadDryRun, "dry-run", false, "list the assets without downloading")
	rootCmd.AddCommand(downloadCmd)
}
