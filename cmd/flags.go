package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/cqlsession/config"
)

type settingFlag struct {
	name   string
	usage  string
	target func(*config.Settings) *string
}

var sessionFlags = []settingFlag{
	{"contact-points", "Comma-separated host[:port] list; port defaults to 9042", func(s *config.Settings) *string { return &s.ContactPoints }},
	{"keyspace", "Default keyspace bound to the session", func(s *config.Settings) *string { return &s.Keyspace }},
	{"consistency", "Default per-request consistency level (ONE, QUORUM, ALL, ...)", func(s *config.Settings) *string { return &s.ConsistencyLevel }},
	{"compression", "Compression hint: NONE, SNAPPY or LZ4 (advisory)", func(s *config.Settings) *string { return &s.CompressionType }},
	{"tls-cert", "Client certificate PEM file", func(s *config.Settings) *string { return &s.TLSCertFile }},
	{"tls-key", "Client private key PEM file", func(s *config.Settings) *string { return &s.TLSKeyFile }},
	{"tls-ca", "CA bundle PEM file used to verify the cluster", func(s *config.Settings) *string { return &s.TLSCAFile }},
	{"tls-server-name", "Server name expected in the cluster certificate", func(s *config.Settings) *string { return &s.TLSServerName }},
	{"client-auth", "TLS client auth policy: REQUIRED, WANT or NONE", func(s *config.Settings) *string { return &s.ClientAuth }},
	{"username", "Username; requires --password", func(s *config.Settings) *string { return &s.Username }},
	{"password", "Password; requires --username", func(s *config.Settings) *string { return &s.Password }},
	{"read-timeout-ms", "Read timeout in milliseconds; 0 disables, unset keeps the driver default", func(s *config.Settings) *string { return &s.ReadTimeoutMillis }},
	{"connect-timeout-ms", "Connect timeout in milliseconds; 0 disables, unset keeps the driver default", func(s *config.Settings) *string { return &s.ConnectTimeoutMillis }},
}

// flagValues receives raw flag input; only flags the user changed are
// copied over the environment.
var flagValues config.Settings

func addSessionFlags(cmd *cobra.Command) {
	for _, f := range sessionFlags {
		cmd.Flags().StringVar(f.target(&flagValues), f.name, "", f.usage)
	}
}

func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return config.Settings{}, err
	}
	for _, f := range sessionFlags {
		if cmd.Flags().Changed(f.name) {
			*f.target(&s) = *f.target(&flagValues)
		}
	}
	if cmd.Flags().Lookup("health-addr") != nil && cmd.Flags().Changed("health-addr") {
		s.HealthAddr = flagValues.HealthAddr
	}
	if s.HealthAddr == "" {
		s.HealthAddr = config.DefaultHealthAddr
	}
	return s, nil
}
