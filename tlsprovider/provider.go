// Package tlsprovider builds the client TLS configuration used when a
// session negotiates TLS with the cluster.
package tlsprovider

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ClientAuth is the policy for presenting a client certificate.
type ClientAuth string

const (
	ClientAuthRequired ClientAuth = "REQUIRED"
	ClientAuthWant     ClientAuth = "WANT"
	ClientAuthNone     ClientAuth = "NONE"
)

var (
	ErrUnknownClientAuth        = errors.New("unknown client auth mode")
	ErrMissingClientCertificate = errors.New("client certificate and key are required")
	ErrNoCACertificates         = errors.New("no certificates found in CA file")
)

// ParseClientAuth parses a client auth token case-insensitively. An empty
// token yields REQUIRED.
func ParseClientAuth(s string) (ClientAuth, error) {
	switch ClientAuth(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ClientAuthRequired:
		return ClientAuthRequired, nil
	case ClientAuthWant:
		return ClientAuthWant, nil
	case ClientAuthNone:
		return ClientAuthNone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClientAuth, s)
}

// Provider creates a TLS configuration for a given client auth policy.
type Provider interface {
	TLSConfig(auth ClientAuth) (*tls.Config, error)
}

// FileProvider loads PEM encoded material from disk.
type FileProvider struct {
	CertFile   string
	KeyFile    string
	CAFile     string
	ServerName string
}

// Enabled reports whether any TLS material is configured.
func (p FileProvider) Enabled() bool {
	return p.CertFile != "" || p.KeyFile != "" || p.CAFile != "" || p.ServerName != ""
}

// TLSConfig builds the client configuration. REQUIRED demands a client
// certificate, WANT presents one when configured and NONE never does.
func (p FileProvider) TLSConfig(auth ClientAuth) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: p.ServerName,
	}

	if p.CAFile != "" {
		pem, err := os.ReadFile(p.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: %s", ErrNoCACertificates, p.CAFile)
		}
		cfg.RootCAs = pool
	}

	hasCert := p.CertFile != "" && p.KeyFile != ""
	switch auth {
	case ClientAuthNone:
		return cfg, nil
	case ClientAuthRequired:
		if !hasCert {
			return nil, ErrMissingClientCertificate
		}
	case ClientAuthWant:
		if !hasCert {
			return cfg, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownClientAuth, auth)
	}

	cert, err := tls.LoadX509KeyPair(p.CertFile, p.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load client certificate: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return cfg, nil
}
