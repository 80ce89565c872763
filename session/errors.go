package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyContactPoints = errors.New("contact points are required")
	ErrEmptyHost          = errors.New("contact point host is empty")
	ErrInvalidPort        = errors.New("contact point port must be a positive integer")
	ErrPartialCredentials = errors.New("username and password must be set together")
	ErrNegativeTimeout    = errors.New("timeout must not be negative")
	ErrUnknownCompression = errors.New("unknown compression type")
	ErrNotConnected       = errors.New("cassandra session is not connected")
)

// ConfigError reports malformed or missing configuration. It is always
// detected before any network I/O.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid cassandra config: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid cassandra config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Reason classifies why a connect handshake failed.
type Reason string

const (
	ReasonUnreachable    Reason = "unreachable"
	ReasonAuthentication Reason = "authentication"
	ReasonTLS            Reason = "tls"
	ReasonConsistency    Reason = "consistency"
	ReasonCanceled       Reason = "canceled"
	ReasonUnknown        Reason = "unknown"
)

// ConnectionError wraps a failure during the connect handshake together
// with the endpoints that were attempted.
type ConnectionError struct {
	Endpoints []Endpoint
	Reason    Reason
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to cassandra %s failed (%s): %v", FormatContactPoints(e.Endpoints), e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotConnectedError is returned by Manager.Session when no session is
// established. It indicates a caller ordering bug, not a transient failure.
type NotConnectedError struct {
	State State
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("%v (state: %s)", ErrNotConnected, e.State)
}

func (e *NotConnectedError) Is(target error) bool { return target == ErrNotConnected }

// classify maps a driver error onto a Reason. The driver flattens most
// handshake errors into strings, so matching is done on the message. The
// message also carries the host names that were tried, so socket level
// failures are matched first and TLS only by the crypto packages' prefixes.
func classify(err error) Reason {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, dialFailures):
		return ReasonUnreachable
	case containsAny(msg, authFailures):
		return ReasonAuthentication
	case containsAny(msg, tlsFailures):
		return ReasonTLS
	case containsAny(msg, noHostFailures):
		return ReasonUnreachable
	}
	return ReasonUnknown
}

var (
	dialFailures = []string{
		"connection refused",
		"connection reset",
		"no route to host",
		"network is unreachable",
		"no such host",
		"i/o timeout",
	}
	authFailures = []string{
		"authentication",
		"authenticator",
		"bad credentials",
		"and/or password",
	}
	tlsFailures = []string{
		"tls: ",
		"x509: ",
	}
	// Generic driver wrappers; they also prefix auth and TLS failures.
	noHostFailures = []string{
		"no connections were made",
		"unable to connect",
		"no hosts available",
	}
)

func containsAny(msg string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(msg, term) {
			return true
		}
	}
	return false
}
