package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/engine"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove superseded packages and invalid signatures locally",
	Long: `Keeps only the newest build of every package in the dist directory and
removes the older builds together with their .sig and .sig2 files. Then
removes signatures older than the package they sign and signatures whose
package is gone. Repository index files are never touched.
Use --dry-run to see what would be removed without acting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd, cfg)
		defer cancel()

		log := newLogger()
		pruner := &engine.PruneEngine{Dir: cfg.DistDir, Comparator: newComparator(cfg, log), Log: log}
		pruned, err := pruner.Prune(ctx, engine.PruneOptions{DryRun: pruneDryRun})
		if pruned == nil {
			return err
		}
		pruneErr := err

		sigs := &engine.SignatureEngine{Dir: cfg.DistDir, Log: log}
		checked, err := sigs.Validate(ctx, engine.SignatureOptions{DryRun: pruneDryRun})
		if checked == nil {
			return err
		}
		sigErr := err

		if pruneDryRun {
			info("Dry run — no files removed.")
		}
		for _, f := range pruned.Skipped {
			detail("skipped  %s", f)
		}

		total := len(pruned.Removed) + len(checked.Stale) + len(checked.Orphans)
		if total == 0 && pruneErr == nil && sigErr == nil {
			info("Nothing to prune.")
			return nil
		}
		for _, group := range [][]engine.FileAction{pruned.Removed, checked.Stale, checked.Orphans} {
			for _, f := range group {
				info("  %s  %s (%s)", f.Action, f.Path, f.Reason)
			}
		}
		info("\nPruned %d file(s).", total)

		errs := append(append([]engine.FileError(nil), pruned.Errors...), checked.Errors...)
		if len(errs) > 0 {
			for _, e := range errs {
				errorf("%s: %s", e.Path, e.Err)
			}
			return fmt.Errorf("%d error(s) during prune", len(errs))
		}
		if pruneErr != nil {
			return pruneErr
		}
		return sigErr
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "show what would be removed without acting")
	rootCmd.AddCommand(pruneCmd)
}
