package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cqlsession",
	Short: "Cassandra session lifecycle manager",
	Long: `Opens a single shared Cassandra session from declarative settings, holds it
while active and closes it cleanly on shutdown.

Settings are read from CASSANDRA_* environment variables; flags override them.
The consistency level is applied as the default for every request issued on
the session, not as a property of the connection.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
