package session

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/gocql/gocql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamgarcia4/goLearning/cqlsession/logger"
)

const tracerName = "github.com/adamgarcia4/goLearning/cqlsession/session"

// Builder turns a ConnectionConfig into a live Session. It never retries;
// retry policy belongs to the caller.
type Builder struct {
	dial         Dialer
	driverLogger gocql.StdLogger
	tracer       trace.Tracer
	now          func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDialer replaces the driver handshake, mainly for tests.
func WithDialer(d Dialer) BuilderOption {
	return func(b *Builder) { b.dial = d }
}

// WithDriverLogger routes driver diagnostics to l.
func WithDriverLogger(l gocql.StdLogger) BuilderOption {
	return func(b *Builder) { b.driverLogger = l }
}

// WithTracer sets the tracer used for Build spans.
func WithTracer(t trace.Tracer) BuilderOption {
	return func(b *Builder) { b.tracer = t }
}

// NewBuilder creates a builder that dials with the gocql driver.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		dial:         DialCluster,
		driverLogger: logger.DriverLogger{Prefix: "gocql"},
		tracer:       otel.Tracer(tracerName),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build performs the connect handshake for cfg. It blocks on network I/O
// bounded only by the configured connect timeout.
func (b *Builder) Build(ctx context.Context, cfg *ConnectionConfig) (_ *Session, err error) {
	if cfg == nil || len(cfg.endpoints) == 0 {
		return nil, &ConfigError{Field: "contact points", Err: ErrEmptyContactPoints}
	}

	ctx, span := b.tracer.Start(ctx, "session.Build", trace.WithAttributes(
		attribute.String("db.system", "cassandra"),
		attribute.String("cassandra.contact_points", FormatContactPoints(cfg.endpoints)),
		attribute.String("cassandra.keyspace", cfg.keyspace),
		attribute.String("cassandra.consistency", cfg.consistency),
		attribute.Bool("cassandra.tls", cfg.tls != nil),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	cluster, consistency, err := b.clusterConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.compression != CompressionNone {
		logf("Compression %s requested; transport compression is advisory and not negotiated", cfg.compression)
	}

	logf("Connecting to %s (keyspace: %q, consistency: %s, tls: %t)",
		FormatContactPoints(cfg.endpoints), cfg.keyspace, consistency, cfg.tls != nil)

	conn, err := b.dial(ctx, cluster)
	if err != nil {
		return nil, newConnectionError(cfg.endpoints, err)
	}

	name, err := conn.ClusterName(ctx)
	if err != nil {
		// Cluster name is only used for observability.
		logf("Failed to read cluster name: %v", err)
	} else {
		logf("Connected to Cassandra cluster: %s", name)
		span.SetAttributes(attribute.String("cassandra.cluster_name", name))
	}

	return &Session{
		conn:        conn,
		clusterName: name,
		endpoints:   cfg.Endpoints(),
		keyspace:    cfg.keyspace,
		consistency: consistency,
		compression: cfg.compression,
		connectedAt: b.now(),
	}, nil
}

// clusterConfig maps cfg onto a driver cluster config. Options that are not
// set in cfg keep the driver defaults.
func (b *Builder) clusterConfig(cfg *ConnectionConfig) (*gocql.ClusterConfig, gocql.Consistency, error) {
	consistency, err := gocql.ParseConsistencyWrapper(cfg.consistency)
	if err != nil {
		return nil, 0, &ConnectionError{Endpoints: cfg.Endpoints(), Reason: ReasonConsistency, Err: err}
	}

	hosts := make([]string, len(cfg.endpoints))
	for i, ep := range cfg.endpoints {
		hosts[i] = net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
	}

	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = cfg.keyspace
	cluster.Consistency = consistency

	if cfg.tls != nil {
		cluster.SslOpts = &gocql.SslOptions{
			Config:                 cfg.tls,
			EnableHostVerification: !cfg.tls.InsecureSkipVerify,
		}
	}

	if username, password, ok := cfg.Credentials(); ok {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: username,
			Password: password,
		}
	}

	if d, ok := cfg.ReadTimeout(); ok {
		cluster.Timeout = d
	}
	if d, ok := cfg.ConnectTimeout(); ok {
		cluster.ConnectTimeout = d
	}

	if b.driverLogger != nil {
		cluster.Logger = b.driverLogger
	}

	return cluster, consistency, nil
}

func newConnectionError(endpoints []Endpoint, err error) *ConnectionError {
	reason := classify(err)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = ReasonCanceled
	case errors.Is(err, gocql.ErrNoConnectionsStarted):
		reason = ReasonUnreachable
	}
	return &ConnectionError{
		Endpoints: append([]Endpoint(nil), endpoints...),
		Reason:    reason,
		Err:       err,
	}
}

func logf(format string, args ...interface{}) {
	logger.Printf("[session] "+format, args...)
}
