package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/cqlsession/logger"
	"github.com/adamgarcia4/goLearning/cqlsession/session"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open a session and hold it until interrupted",
	Long: `Activate a Cassandra session, report the cluster it connected to and keep it
open until SIGINT or SIGTERM, then close it.

Examples:
  # Two nodes, second one on the default port
  cqlsession connect --contact-points=node1:9042,node2 --consistency=QUORUM

  # Authenticated TLS connection
  cqlsession connect --contact-points=db.internal --tls-ca=ca.pem \
    --client-auth=NONE --username=app --password=secret`,
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	addSessionFlags(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	// Initialize logger for non-interactive mode (write to stdout)
	logger.Init("", true)

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	props, err := settings.Properties()
	if err != nil {
		return err
	}

	m := session.NewManager()
	if err := m.Activate(cmd.Context(), props); err != nil {
		return fmt.Errorf("failed to activate session: %w", err)
	}

	s, err := m.Session()
	if err != nil {
		return err
	}
	logger.Infof("[session] Session ready (cluster: %s, consistency: %s, keyspace: %q)",
		s.ClusterName(), s.Consistency(), s.Keyspace())

	waitForSignal()

	logger.Info("Shutting down...")
	m.Deactivate()
	return nil
}

// waitForSignal blocks until SIGINT or SIGTERM.
func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	<-sigChan
}
