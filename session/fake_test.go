package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocql/gocql"
)

type fakeConn struct {
	name    string
	nameErr error
	closed  atomic.Int32
}

func (c *fakeConn) ClusterName(ctx context.Context) (string, error) {
	return c.name, c.nameErr
}

func (c *fakeConn) Close() { c.closed.Add(1) }

// fakeDialer records every handshake attempt instead of touching the
// network.
type fakeDialer struct {
	mu       sync.Mutex
	attempts int
	clusters []*gocql.ClusterConfig
	conn     *fakeConn
	err      error
	delay    time.Duration
}

func newFakeDialer(clusterName string) *fakeDialer {
	return &fakeDialer{conn: &fakeConn{name: clusterName}}
}

func (d *fakeDialer) dial(ctx context.Context, cluster *gocql.ClusterConfig) (Conn, error) {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	d.clusters = append(d.clusters, cluster)
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *fakeDialer) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func (d *fakeDialer) lastCluster() *gocql.ClusterConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.clusters) == 0 {
		return nil
	}
	return d.clusters[len(d.clusters)-1]
}

func newTestManager(d *fakeDialer, opts ...ManagerOption) *Manager {
	opts = append([]ManagerOption{WithBuilder(NewBuilder(WithDialer(d.dial)))}, opts...)
	return NewManager(opts...)
}
