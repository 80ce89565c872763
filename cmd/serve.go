package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/cqlsession/config"
	"github.com/adamgarcia4/goLearning/cqlsession/logger"
	"github.com/adamgarcia4/goLearning/cqlsession/session"
	"github.com/adamgarcia4/goLearning/cqlsession/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Hold a session and report its state over gRPC health checks",
	Long: `Activate a Cassandra session and serve the standard gRPC health protocol.
The "cassandra.Session" service reports SERVING while the session is connected
and NOT_SERVING otherwise.

Examples:
  cqlsession serve --contact-points=node1,node2 --health-addr=127.0.0.1:50051
  grpcurl -plaintext -d '{"service":"cassandra.Session"}' 127.0.0.1:50051 grpc.health.v1.Health/Check`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addSessionFlags(serveCmd)
	serveCmd.Flags().StringVar(&flagValues.HealthAddr, "health-addr", config.DefaultHealthAddr, "Address for the gRPC health server")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Init("", true)

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	props, err := settings.Properties()
	if err != nil {
		return err
	}

	health, err := transport.NewGRPC(settings.HealthAddr)
	if err != nil {
		return fmt.Errorf("failed to create health server: %w", err)
	}
	if err := health.Start(); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}
	defer health.Stop()

	m := session.NewManager(session.WithStateListener(health.SetState))
	if err := m.Activate(cmd.Context(), props); err != nil {
		return fmt.Errorf("failed to activate session: %w", err)
	}

	waitForSignal()

	logger.Info("Shutting down...")
	m.Deactivate()
	return nil
}
