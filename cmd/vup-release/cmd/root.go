package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// Global flags.
var (
	configPath   string
	distDirFlag  string
	categoryFlag string
	archFlag     string
	repoFlag     string
	verbose      bool
	quiet        bool
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "vup-release",
	Short: "Keep a package repository's release tiers converged",
	Long: `vup-release keeps one canonical set of xbps packages across the local
dist directory, the GitHub release for a {category}-{arch}-current line,
and the S3-compatible bucket that mirrors it. The newest build of every
package wins; superseded builds and their signatures are purged.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vup-release %s\n", buildVersion)
		fmt.Printf("  commit:  %s\n", buildCommit)
		fmt.Printf("  built:   %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: vup-release.yaml found from here up to the repository root)")
	rootCmd.PersistentFlags().StringVar(&distDirFlag, "dir", "", "local dist directory (default from config, then \"dist\")")
	rootCmd.PersistentFlags().StringVar(&categoryFlag, "category", "", "package category, e.g. core")
	rootCmd.PersistentFlags().StringVar(&archFlag, "arch", "", "target architecture (default x86_64)")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "GitHub repository as owner/name")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
