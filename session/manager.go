// Package session manages the lifecycle of a single shared Cassandra
// session: contact point parsing, connection config validation, the connect
// handshake and idempotent activation/deactivation.
package session

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamgarcia4/goLearning/cqlsession/logger"
)

// State is the lifecycle state of a Manager.
type State int

const (
	Disabled State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "DISABLED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	}
	return "UNKNOWN"
}

// Manager owns a single shared Session and drives its
// Disabled -> Connecting -> Connected -> Disabled lifecycle.
type Manager struct {
	builder   *Builder
	tracer    trace.Tracer
	listeners []func(State)

	// lifecycle serializes Activate and Deactivate so that both can check
	// the current state and transition without racing each other.
	lifecycle sync.Mutex

	mu      sync.RWMutex
	state   State
	session *Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithBuilder replaces the default gocql builder.
func WithBuilder(b *Builder) ManagerOption {
	return func(m *Manager) { m.builder = b }
}

// WithStateListener registers fn to be called after every state
// transition. fn must not call Activate or Deactivate.
func WithStateListener(fn func(State)) ManagerOption {
	return func(m *Manager) { m.listeners = append(m.listeners, fn) }
}

// WithManagerTracer sets the tracer used for Activate spans.
func WithManagerTracer(t trace.Tracer) ManagerOption {
	return func(m *Manager) { m.tracer = t }
}

// NewManager creates a disabled manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		tracer: otel.Tracer(tracerName),
		state:  Disabled,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.builder == nil {
		m.builder = NewBuilder()
	}
	return m
}

// Activate connects using props. It is a no-op when already connected. On
// failure any partial resources are released, the manager stays Disabled
// and the error is returned; it is never retried here.
func (m *Manager) Activate(ctx context.Context, props Properties) (err error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.State() == Connected {
		logf("Activate ignored: session already connected")
		return nil
	}

	ctx, span := m.tracer.Start(ctx, "session.Activate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	m.transition(Connecting, nil)

	cfg, err := props.ConnectionConfig()
	if err != nil {
		logger.Errorf("[session] Invalid configuration: %v", err)
		m.transition(Disabled, nil)
		return err
	}

	s, err := m.builder.Build(ctx, cfg)
	if err != nil {
		logger.Errorf("[session] Activation failed: %v", err)
		m.transition(Disabled, nil)
		return err
	}

	span.SetAttributes(attribute.String("cassandra.cluster_name", s.ClusterName()))
	m.transition(Connected, s)
	return nil
}

// Session returns the shared session. It fails with a *NotConnectedError
// (matching ErrNotConnected) unless the manager is Connected.
func (m *Manager) Session() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != Connected || m.session == nil {
		return nil, &NotConnectedError{State: m.state}
	}
	return m.session, nil
}

// Deactivate closes the held session and returns once its network
// resources are released. It is safe to call repeatedly or before any
// activation.
func (m *Manager) Deactivate() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	if m.state == Disabled {
		m.mu.Unlock()
		return
	}
	s := m.session
	m.session = nil
	m.state = Disabled
	m.mu.Unlock()

	if s != nil {
		logf("Closing session to %s", FormatContactPoints(s.endpoints))
		s.close()
	}
	m.notify(Disabled)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) transition(state State, s *Session) {
	m.mu.Lock()
	m.state = state
	m.session = s
	m.mu.Unlock()

	m.notify(state)
}

func (m *Manager) notify(state State) {
	for _, fn := range m.listeners {
		fn(state)
	}
}
