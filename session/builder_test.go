package session

import (
	"context"
	"crypto/tls"
	"errors"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, text string, opts ...Option) *ConnectionConfig {
	t.Helper()
	endpoints, err := ParseContactPoints(text)
	require.NoError(t, err)
	cfg, err := NewConnectionConfig(endpoints, opts...)
	require.NoError(t, err)
	return cfg
}

func TestBuildAppliesConfig(t *testing.T) {
	d := newFakeDialer("prod")
	b := NewBuilder(WithDialer(d.dial))

	tlsConfig := &tls.Config{ServerName: "db.internal"}
	cfg := mustConfig(t, "node1:9042,node2",
		WithKeyspace("metrics"),
		WithConsistency("QUORUM"),
		WithTLS(tlsConfig),
		WithCredentials("app", "secret"),
		WithReadTimeout(2500),
		WithConnectTimeout(750),
	)

	s, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)

	cluster := d.lastCluster()
	require.NotNil(t, cluster)
	assert.Equal(t, []string{"node1:9042", "node2:9042"}, cluster.Hosts)
	assert.Equal(t, "metrics", cluster.Keyspace)
	assert.Equal(t, gocql.Quorum, cluster.Consistency)
	assert.Equal(t, 2500*time.Millisecond, cluster.Timeout)
	assert.Equal(t, 750*time.Millisecond, cluster.ConnectTimeout)

	require.NotNil(t, cluster.SslOpts)
	assert.Equal(t, "db.internal", cluster.SslOpts.Config.ServerName)
	assert.True(t, cluster.SslOpts.EnableHostVerification)

	auth, ok := cluster.Authenticator.(gocql.PasswordAuthenticator)
	require.True(t, ok, "want PasswordAuthenticator, got %T", cluster.Authenticator)
	assert.Equal(t, "app", auth.Username)
	assert.Equal(t, "secret", auth.Password)

	assert.Equal(t, "prod", s.ClusterName())
	assert.Equal(t, gocql.Quorum, s.Consistency())
	assert.Equal(t, "metrics", s.Keyspace())
	assert.Equal(t, []Endpoint{{"node1", 9042}, {"node2", 9042}}, s.Endpoints())
	assert.False(t, s.ConnectedAt().IsZero())
}

func TestBuildKeepsDriverDefaults(t *testing.T) {
	d := newFakeDialer("prod")
	b := NewBuilder(WithDialer(d.dial))

	_, err := b.Build(context.Background(), mustConfig(t, "node1"))
	require.NoError(t, err)

	defaults := gocql.NewCluster("node1")
	cluster := d.lastCluster()
	assert.Equal(t, defaults.Timeout, cluster.Timeout)
	assert.Equal(t, defaults.ConnectTimeout, cluster.ConnectTimeout)
	assert.Nil(t, cluster.SslOpts)
	assert.Nil(t, cluster.Authenticator)
	assert.Equal(t, gocql.One, cluster.Consistency)
}

func TestBuildCompressionIsAdvisory(t *testing.T) {
	d := newFakeDialer("prod")
	b := NewBuilder(WithDialer(d.dial))

	s, err := b.Build(context.Background(), mustConfig(t, "node1", WithCompression("SNAPPY")))
	require.NoError(t, err)

	assert.Nil(t, d.lastCluster().Compressor)
	assert.Equal(t, CompressionSnappy, s.Compression())
}

func TestBuildRejectsUnknownConsistency(t *testing.T) {
	d := newFakeDialer("prod")
	b := NewBuilder(WithDialer(d.dial))

	_, err := b.Build(context.Background(), mustConfig(t, "node1", WithConsistency("MOST")))

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "want *ConnectionError, got %v", err)
	assert.Equal(t, ReasonConsistency, connErr.Reason)
	assert.Zero(t, d.Attempts())
}

func TestBuildRequiresEndpoints(t *testing.T) {
	b := NewBuilder(WithDialer(newFakeDialer("prod").dial))

	_, err := b.Build(context.Background(), &ConnectionConfig{})
	assert.ErrorIs(t, err, ErrEmptyContactPoints)

	_, err = b.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyContactPoints)
}

func TestBuildWrapsDialFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason Reason
	}{
		{"no connections", gocql.ErrNoConnectionsStarted, ReasonUnreachable},
		{"refused", errors.New("gocql: unable to create session: unable to discover protocol version: dial tcp 10.0.0.1:9042: connect: connection refused"), ReasonUnreachable},
		{"auth required", errors.New(`gocql: unable to create session: authentication required (using "org.apache.cassandra.auth.PasswordAuthenticator")`), ReasonAuthentication},
		{"bad credentials", errors.New("gocql: unable to create session: Provided username app and/or password are incorrect"), ReasonAuthentication},
		{"tls", errors.New("gocql: unable to create session: tls: failed to verify certificate: x509: certificate signed by unknown authority"), ReasonTLS},
		{"no route", errors.New("gocql: unable to create session: unable to discover protocol version: dial tcp 10.0.0.1:9042: connect: no route to host"), ReasonUnreachable},
		{"network unreachable", errors.New("gocql: unable to create session: unable to discover protocol version: dial tcp 10.0.0.1:9042: connect: network is unreachable"), ReasonUnreachable},
		{"connection reset", errors.New("gocql: unable to create session: unable to discover protocol version: read tcp 10.0.0.2:51234->10.0.0.1:9042: read: connection reset by peer"), ReasonUnreachable},
		{"tls in host name", errors.New("gocql: unable to create session: unable to discover protocol version: dial tcp: lookup tls-gw.internal: no such host"), ReasonUnreachable},
		{"certificate in host name", errors.New("gocql: unable to create session: unable to discover protocol version: dial tcp: lookup certificate-store.internal: no such host"), ReasonUnreachable},
		{"authentication in host name", errors.New("gocql: unable to create session: unable to discover protocol version: dial tcp 10.0.0.1:9042: lookup authentication.internal: i/o timeout"), ReasonUnreachable},
		{"auth behind control wrapper", errors.New("gocql: unable to create session: control: unable to connect to initial hosts: Provided username app and/or password are incorrect"), ReasonAuthentication},
		{"tls behind control wrapper", errors.New("gocql: unable to create session: control: unable to connect to initial hosts: x509: certificate has expired or is not yet valid"), ReasonTLS},
		{"tls host without tls failure", errors.New("gocql: unable to create session: control: unable to connect to initial hosts to tls-gw.internal:9042"), ReasonUnreachable},
		{"canceled", context.Canceled, ReasonCanceled},
		{"other", errors.New("boom"), ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDialer("prod")
			d.err = tt.err
			b := NewBuilder(WithDialer(d.dial))

			_, err := b.Build(context.Background(), mustConfig(t, "node1,node2:9043"))

			var connErr *ConnectionError
			require.True(t, errors.As(err, &connErr), "want *ConnectionError, got %v", err)
			assert.Equal(t, tt.reason, connErr.Reason)
			assert.Equal(t, []Endpoint{{"node1", 9042}, {"node2", 9043}}, connErr.Endpoints)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "node1:9042,node2:9043")
		})
	}
}

func TestBuildToleratesClusterNameFailure(t *testing.T) {
	d := newFakeDialer("")
	d.conn.nameErr = errors.New("read timeout")
	b := NewBuilder(WithDialer(d.dial))

	s, err := b.Build(context.Background(), mustConfig(t, "node1"))
	require.NoError(t, err)
	assert.Empty(t, s.ClusterName())
	assert.Zero(t, d.conn.closed.Load())
}

func TestDialClusterHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DialCluster(ctx, gocql.NewCluster("127.0.0.1"))
	assert.ErrorIs(t, err, context.Canceled)
}
