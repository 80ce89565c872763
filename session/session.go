package session

import (
	"context"
	"time"

	"github.com/gocql/gocql"
)

// Conn is an established cluster connection as seen by the lifecycle.
type Conn interface {
	ClusterName(ctx context.Context) (string, error)
	Close()
}

// Dialer opens a connection for a fully prepared driver cluster config.
type Dialer func(ctx context.Context, cluster *gocql.ClusterConfig) (Conn, error)

// DialCluster is the default Dialer. It performs the driver handshake.
func DialCluster(ctx context.Context, cluster *gocql.ClusterConfig) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}
	return &cqlConn{session: s}, nil
}

type cqlConn struct {
	session *gocql.Session
}

func (c *cqlConn) ClusterName(ctx context.Context) (string, error) {
	var name string
	err := c.session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&name)
	return name, err
}

func (c *cqlConn) Close() { c.session.Close() }

// Session is the shared handle to an established cluster connection. It is
// safe for concurrent use; callers must not close it, the Manager owns it.
//
// Consistency is a per-request default: the native protocol binds
// consistency to each query, so the configured level is applied to every
// query created from CQL() unless the query overrides it.
type Session struct {
	conn        Conn
	clusterName string
	endpoints   []Endpoint
	keyspace    string
	consistency gocql.Consistency
	compression Compression
	connectedAt time.Time
}

// CQL returns the driver session for issuing queries. It is nil when the
// connection was not opened by the driver, which only happens in tests.
func (s *Session) CQL() *gocql.Session {
	if c, ok := s.conn.(*cqlConn); ok {
		return c.session
	}
	return nil
}

func (s *Session) ClusterName() string { return s.clusterName }
func (s *Session) Keyspace() string    { return s.keyspace }

// Consistency returns the default per-request consistency.
func (s *Session) Consistency() gocql.Consistency { return s.consistency }

// Compression returns the advisory compression hint the session was
// configured with.
func (s *Session) Compression() Compression { return s.compression }

// Endpoints returns the contact points the session was bootstrapped from.
func (s *Session) Endpoints() []Endpoint {
	return append([]Endpoint(nil), s.endpoints...)
}

func (s *Session) ConnectedAt() time.Time { return s.connectedAt }

func (s *Session) close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
