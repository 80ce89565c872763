package session

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPort is the standard CQL native transport port.
const DefaultPort = 9042

// Endpoint is the address of a cluster node used to bootstrap the session.
type Endpoint struct {
	Host string
	Port int
}

// String returns the endpoint as host:port.
func (e Endpoint) String() string {
	return e.Host + ":" + strconv.Itoa(e.Port)
}

// ParseContactPoints parses a comma-separated list of host or host:port
// tokens. Order is preserved because the driver tries hosts in that order.
func ParseContactPoints(text string) ([]Endpoint, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ConfigError{Field: "contact points", Err: ErrEmptyContactPoints}
	}

	tokens := strings.Split(text, ",")
	endpoints := make([]Endpoint, 0, len(tokens))
	for _, token := range tokens {
		ep, err := parseEndpoint(token)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

func parseEndpoint(token string) (Endpoint, error) {
	host, portText, hasPort := strings.Cut(strings.TrimSpace(token), ":")
	host = strings.TrimSpace(host)
	if host == "" {
		return Endpoint{}, &ConfigError{Field: "contact points", Err: ErrEmptyHost}
	}
	if !hasPort {
		return Endpoint{Host: host, Port: DefaultPort}, nil
	}

	portText = strings.TrimSpace(portText)
	port, err := strconv.Atoi(portText)
	if err != nil || port < 1 || port > 65535 {
		return Endpoint{}, &ConfigError{Field: "contact points", Err: fmt.Errorf("%w: %q", ErrInvalidPort, host+":"+portText)}
	}
	return Endpoint{Host: host, Port: port}, nil
}

// FormatContactPoints joins endpoints back into the textual form accepted
// by ParseContactPoints.
func FormatContactPoints(endpoints []Endpoint) string {
	parts := make([]string, len(endpoints))
	for i, ep := range endpoints {
		parts[i] = ep.String()
	}
	return strings.Join(parts, ",")
}
