package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/config"
	"github.com/vup-linux/vup-release/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the packages in the dist directory and their state",
	Long: `Lists every package in the dist directory with its parsed name, version,
revision and architecture, its signatures, and its state (current, superseded,
unsigned, stale-signature). Unparseable packages and orphaned signatures are
listed separately. Nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, layers, err := loadConfigLayers()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd, cfg)
		defer cancel()

		log := newLogger()
		eng := &engine.StatusEngine{Dir: cfg.DistDir, Comparator: newComparator(cfg, log)}
		report, err := eng.Status(ctx)
		if err != nil {
			return err
		}

		info("Release line %s in %s", cfg.Tag(), cfg.DistDir)
		if len(report.Packages) == 0 {
			info("No packages.")
		} else {
			fmt.Printf("%-28s %-16s %-8s %-5s %-16s %s\n", "NAME", "VERSION", "ARCH", "SIGS", "STATE", "SIZE")
			for _, ps := range report.Packages {
				size := "?"
				if ps.Size != artifact.UnknownSize {
					size = humanSize(ps.Size)
				}
				fmt.Printf("%-28s %-16s %-8s %-5d %-16s %s\n",
					ps.Package.Name, ps.Package.Key().String(), ps.Package.Arch, len(ps.Signatures), ps.State, size)
			}
		}

		for _, fe := range report.Unparseable {
			info("unparseable: %s", fe)
		}
		for _, o := range report.Orphans {
			info("orphaned signature: %s", o)
		}
		for _, o := range report.Other {
			detail("other: %s", o)
		}

		if verbose {
			printOrigins(layers)
		}
		return nil
	},
}

// printOrigins lists the config files that were read and where every
// setting came from.
func printOrigins(layers []config.ConfigLayerInfo) {
	fmt.Println("\nConfiguration:")
	for _, l := range layers {
		if l.Path == "" {
			continue
		}
		state := "not found"
		if l.Loaded {
			state = "loaded"
		}
		fmt.Printf("  %-8s %s (%s)\n", l.Level, l.Path, state)
	}
	origins := config.Origins(layers)
	for _, key := range config.SortedKeys(origins) {
		fmt.Printf("  %-30s %s\n", key, origins[key])
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
