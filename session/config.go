package session

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/adamgarcia4/goLearning/cqlsession/tlsprovider"
)

// Default configuration constants
const (
	DefaultConsistency = "ONE"
	DefaultCompression = CompressionNone
)

// Compression is the transport compression hint. It is advisory: the value
// is validated and reported on the Session but never negotiated with the
// cluster.
type Compression string

const (
	CompressionNone   Compression = "NONE"
	CompressionSnappy Compression = "SNAPPY"
	CompressionLZ4    Compression = "LZ4"
)

// ParseCompression parses a compression token case-insensitively. An empty
// token yields NONE.
func ParseCompression(s string) (Compression, error) {
	switch Compression(strings.ToUpper(strings.TrimSpace(s))) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionSnappy:
		return CompressionSnappy, nil
	case CompressionLZ4:
		return CompressionLZ4, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

// Properties are the declarative settings handed to Manager.Activate by the
// embedding host. They are validated into a ConnectionConfig on activation.
type Properties struct {
	ContactPoints    string
	Keyspace         string
	ConsistencyLevel string
	CompressionType  string

	// TLS is optional; when nil the session connects in plaintext.
	TLS        tlsprovider.Provider
	ClientAuth string

	Username string
	Password string

	// Timeouts in milliseconds. Nil keeps the driver default, 0 disables.
	ReadTimeoutMillis    *int
	ConnectTimeoutMillis *int
}

// ConnectionConfig is an immutable snapshot of everything needed to open a
// session. Build one with NewConnectionConfig.
type ConnectionConfig struct {
	endpoints      []Endpoint
	keyspace       string
	consistency    string
	compression    Compression
	tls            *tls.Config
	username       string
	password       string
	readTimeout    *time.Duration
	connectTimeout *time.Duration
}

// Option configures a ConnectionConfig under construction.
type Option func(*ConnectionConfig) error

// WithKeyspace sets the default keyspace; empty leaves it unset.
func WithKeyspace(keyspace string) Option {
	return func(c *ConnectionConfig) error {
		c.keyspace = strings.TrimSpace(keyspace)
		return nil
	}
}

// WithConsistency sets the default per-request consistency token. It is
// resolved against the driver when the session is built.
func WithConsistency(level string) Option {
	return func(c *ConnectionConfig) error {
		if level = strings.TrimSpace(level); level != "" {
			c.consistency = strings.ToUpper(level)
		}
		return nil
	}
}

// WithCompression records the requested transport compression.
func WithCompression(compression string) Option {
	return func(c *ConnectionConfig) error {
		parsed, err := ParseCompression(compression)
		if err != nil {
			return &ConfigError{Field: "compression type", Err: err}
		}
		c.compression = parsed
		return nil
	}
}

// WithTLS enables TLS using a copy of cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(c *ConnectionConfig) error {
		if cfg != nil {
			c.tls = cfg.Clone()
		}
		return nil
	}
}

// WithCredentials sets the username/password pair. Both empty means an
// anonymous connection; exactly one empty is rejected.
func WithCredentials(username, password string) Option {
	return func(c *ConnectionConfig) error {
		if (username == "") != (password == "") {
			return &ConfigError{Field: "username/password", Err: ErrPartialCredentials}
		}
		c.username = username
		c.password = password
		return nil
	}
}

// WithReadTimeout sets the per-request read timeout in milliseconds.
func WithReadTimeout(millis int) Option {
	return func(c *ConnectionConfig) error {
		d, err := millisToDuration("read timeout", millis)
		if err != nil {
			return err
		}
		c.readTimeout = &d
		return nil
	}
}

// WithConnectTimeout sets the connection establishment timeout in milliseconds.
func WithConnectTimeout(millis int) Option {
	return func(c *ConnectionConfig) error {
		d, err := millisToDuration("connect timeout", millis)
		if err != nil {
			return err
		}
		c.connectTimeout = &d
		return nil
	}
}

func millisToDuration(field string, millis int) (time.Duration, error) {
	if millis < 0 {
		return 0, &ConfigError{Field: field, Err: fmt.Errorf("%w: %d", ErrNegativeTimeout, millis)}
	}
	return time.Duration(millis) * time.Millisecond, nil
}

// NewConnectionConfig validates the options and returns an immutable config.
func NewConnectionConfig(endpoints []Endpoint, opts ...Option) (*ConnectionConfig, error) {
	if len(endpoints) == 0 {
		return nil, &ConfigError{Field: "contact points", Err: ErrEmptyContactPoints}
	}

	c := &ConnectionConfig{
		endpoints:   append([]Endpoint(nil), endpoints...),
		consistency: DefaultConsistency,
		compression: DefaultCompression,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Endpoints returns a copy of the contact points in connect order.
func (c *ConnectionConfig) Endpoints() []Endpoint {
	return append([]Endpoint(nil), c.endpoints...)
}

func (c *ConnectionConfig) Keyspace() string         { return c.keyspace }
func (c *ConnectionConfig) Consistency() string      { return c.consistency }
func (c *ConnectionConfig) Compression() Compression { return c.compression }

// TLS returns the TLS configuration, or nil for plaintext.
func (c *ConnectionConfig) TLS() *tls.Config { return c.tls }

// Credentials returns the username/password pair and whether it is set.
func (c *ConnectionConfig) Credentials() (username, password string, ok bool) {
	return c.username, c.password, c.username != ""
}

// ReadTimeout returns the configured read timeout and whether it was set.
func (c *ConnectionConfig) ReadTimeout() (time.Duration, bool) {
	if c.readTimeout == nil {
		return 0, false
	}
	return *c.readTimeout, true
}

// ConnectTimeout returns the configured connect timeout and whether it was set.
func (c *ConnectionConfig) ConnectTimeout() (time.Duration, bool) {
	if c.connectTimeout == nil {
		return 0, false
	}
	return *c.connectTimeout, true
}

// ConnectionConfig parses the contact points, resolves the TLS context and
// validates the remaining properties. No network I/O is performed.
func (p Properties) ConnectionConfig() (*ConnectionConfig, error) {
	endpoints, err := ParseContactPoints(p.ContactPoints)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithKeyspace(p.Keyspace),
		WithConsistency(p.ConsistencyLevel),
		WithCompression(p.CompressionType),
		WithCredentials(p.Username, p.Password),
	}

	if p.TLS != nil {
		auth, err := tlsprovider.ParseClientAuth(p.ClientAuth)
		if err != nil {
			return nil, &ConfigError{Field: "client auth", Err: err}
		}
		tlsConfig, err := p.TLS.TLSConfig(auth)
		if err != nil {
			return nil, &ConfigError{Field: "ssl context", Err: err}
		}
		opts = append(opts, WithTLS(tlsConfig))
	}

	if p.ReadTimeoutMillis != nil {
		opts = append(opts, WithReadTimeout(*p.ReadTimeoutMillis))
	}
	if p.ConnectTimeoutMillis != nil {
		opts = append(opts, WithConnectTimeout(*p.ConnectTimeoutMillis))
	}

	return NewConnectionConfig(endpoints, opts...)
}
