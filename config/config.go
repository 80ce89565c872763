// Package config loads session settings from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/adamgarcia4/goLearning/cqlsession/session"
	"github.com/adamgarcia4/goLearning/cqlsession/tlsprovider"
)

// Default configuration constants
const (
	DefaultHealthAddr = "127.0.0.1:50051"
)

// Settings are the raw values recognized by the session host. Flags are
// bound on top of the values loaded from the environment.
type Settings struct {
	ContactPoints    string `env:"CASSANDRA_CONTACT_POINTS"`
	Keyspace         string `env:"CASSANDRA_KEYSPACE"`
	ConsistencyLevel string `env:"CASSANDRA_CONSISTENCY_LEVEL" envDefault:"ONE"`
	CompressionType  string `env:"CASSANDRA_COMPRESSION_TYPE" envDefault:"NONE"`

	TLSCertFile   string `env:"CASSANDRA_TLS_CERT_FILE"`
	TLSKeyFile    string `env:"CASSANDRA_TLS_KEY_FILE"`
	TLSCAFile     string `env:"CASSANDRA_TLS_CA_FILE"`
	TLSServerName string `env:"CASSANDRA_TLS_SERVER_NAME"`
	ClientAuth    string `env:"CASSANDRA_CLIENT_AUTH" envDefault:"REQUIRED"`

	Username string `env:"CASSANDRA_USERNAME"`
	Password string `env:"CASSANDRA_PASSWORD"`

	// Milliseconds; empty keeps the driver default.
	ReadTimeoutMillis    string `env:"CASSANDRA_READ_TIMEOUT_MS"`
	ConnectTimeoutMillis string `env:"CASSANDRA_CONNECT_TIMEOUT_MS"`

	HealthAddr string `env:"CASSANDRA_SESSION_HEALTH_ADDR" envDefault:"127.0.0.1:50051"`
}

// Load reads Settings from the environment.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Properties converts the settings into session properties. Only numeric
// parsing happens here; everything else is validated on activation.
func (s Settings) Properties() (session.Properties, error) {
	readTimeout, err := parseMillis("read timeout", s.ReadTimeoutMillis)
	if err != nil {
		return session.Properties{}, err
	}
	connectTimeout, err := parseMillis("connect timeout", s.ConnectTimeoutMillis)
	if err != nil {
		return session.Properties{}, err
	}

	props := session.Properties{
		ContactPoints:        s.ContactPoints,
		Keyspace:             s.Keyspace,
		ConsistencyLevel:     s.ConsistencyLevel,
		CompressionType:      s.CompressionType,
		ClientAuth:           s.ClientAuth,
		Username:             s.Username,
		Password:             s.Password,
		ReadTimeoutMillis:    readTimeout,
		ConnectTimeoutMillis: connectTimeout,
	}

	files := tlsprovider.FileProvider{
		CertFile:   s.TLSCertFile,
		KeyFile:    s.TLSKeyFile,
		CAFile:     s.TLSCAFile,
		ServerName: s.TLSServerName,
	}
	if files.Enabled() {
		props.TLS = files
	}
	return props, nil
}

func parseMillis(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, &session.ConfigError{Field: field, Err: fmt.Errorf("not an integer: %q", value)}
	}
	if n < 0 {
		return nil, &session.ConfigError{Field: field, Err: fmt.Errorf("%w: %d", session.ErrNegativeTimeout, n)}
	}
	return &n, nil
}
