// Package transport exposes the session lifecycle over the standard gRPC
// health checking protocol.
package transport

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/adamgarcia4/goLearning/cqlsession/logger"
	"github.com/adamgarcia4/goLearning/cqlsession/session"
)

// ServiceName is the health service reporting the session state.
const ServiceName = "cassandra.Session"

// GRPC serves health checks that report SERVING only while the session is
// connected.
type GRPC struct {
	addr   string
	srv    *grpc.Server
	health *health.Server

	mu  sync.Mutex
	lis net.Listener
}

// NewGRPC creates a health server for addr that reports NOT_SERVING until SetState says otherwise.
func NewGRPC(addr string) (*GRPC, error) {
	if addr == "" || !strings.Contains(addr, ":") {
		return nil, fmt.Errorf("invalid address: %s", addr)
	}

	g := &GRPC{
		addr:   addr,
		srv:    grpc.NewServer(),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(g.srv, g.health)

	// Register reflection service for gRPC tools (grpcurl, grpcui, etc.)
	reflection.Register(g.srv)

	g.SetState(session.Disabled)
	return g, nil
}

// SetState maps a lifecycle state onto the health status. It matches the
// session.WithStateListener signature.
func (g *GRPC) SetState(state session.State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state == session.Connected {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus(ServiceName, status)
	g.health.SetServingStatus("", status)
}

// Start binds synchronously so that errors such as a port already in use
// surface to the caller, then serves in a background goroutine.
func (g *GRPC) Start() error {
	lis, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	g.mu.Lock()
	g.lis = lis
	g.mu.Unlock()

	logger.Printf("[health] gRPC health server listening on %s", lis.Addr())
	go func() {
		if err := g.srv.Serve(lis); err != nil {
			logger.Errorf("[health] gRPC server stopped: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (g *GRPC) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lis == nil {
		return nil
	}
	return g.lis.Addr()
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (g *GRPC) Stop() error {
	g.health.Shutdown()
	g.srv.GracefulStop()
	return nil
}
