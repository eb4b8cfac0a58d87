package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "airtime",
	Short: "Last.fm listening time tracker",
	Long: `airtime aggregates a Last.fm user's scrobble history and serves
daily and weekly listening-time reports over HTTP.

It paginates the Last.fm API to collect every scrobble in a day,
resolves each track's duration through a local cache (falling back
to the track catalogue), and totals the listening time. Past days
are cached on disk so they are only computed once.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
