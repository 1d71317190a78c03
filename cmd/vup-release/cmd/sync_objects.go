package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/engine"
)

var (
	syncDryRun     bool
	syncUploadOnly bool
	syncDeleteOnly bool
)

var syncObjectsCmd = &cobra.Command{
	Use:     "sync-objects",
	Aliases: []string{"object_store_sync"},
	Short:   "Mirror the dist directory into the object store",
	Long: `Converges the objects under {category}-{arch}-current/ in the bucket to
the dist directory: files missing remotely or differing in size are uploaded,
then objects without a local counterpart are deleted in batches of 1000.
Objects under other prefixes are never listed or touched.

Credentials are read from R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY (or the
variables named by object_store.access_key_env / secret_key_env).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		objects, err := newObjectStore(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd, cfg)
		defer cancel()

		eng := &engine.ReconcileEngine{Dir: cfg.DistDir, Objects: objects, Log: newLogger()}
		result, err := eng.SyncObjects(ctx, cfg.Tag(), engine.ReconcileOptions{
			DryRun:     syncDryRun,
			SkipUpload: syncDeleteOnly,
			SkipDelete: syncUploadOnly,
		})
		if result != nil {
			reportReconcile(result)
		}
		return err
	},
}

func init() {
	syncObjectsCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "show what would be transferred without acting")
	syncObjectsCmd.Flags().BoolVar(&syncUploadOnly, "upload-only", false, "run only the upload phase")
	syncObjectsCmd.Flags().BoolVar(&syncDeleteOnly, "delete-only", false, "run only the delete phase")
	syncObjectsCmd.MarkFlagsMutuallyExclusive("upload-only", "delete-only")
	rootCmd.AddCommand(syncObjectsCmd)
}
