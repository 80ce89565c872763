package tlsprovider

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair writes a self-signed certificate and key to dir.
func writeKeyPair(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "cqlsession-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "client.pem")
	keyFile = filepath.Join(dir, "client.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestParseClientAuth(t *testing.T) {
	tests := map[string]ClientAuth{
		"":         ClientAuthRequired,
		"required": ClientAuthRequired,
		" WANT ":   ClientAuthWant,
		"none":     ClientAuthNone,
		"REQUIRED": ClientAuthRequired,
	}
	for in, want := range tests {
		got, err := ParseClientAuth(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseClientAuth("optional")
	assert.ErrorIs(t, err, ErrUnknownClientAuth)
}

func TestFileProviderClientAuth(t *testing.T) {
	certFile, keyFile := writeKeyPair(t, t.TempDir())
	withCert := FileProvider{CertFile: certFile, KeyFile: keyFile, ServerName: "db.internal"}
	withoutCert := FileProvider{ServerName: "db.internal"}

	cfg, err := withCert.TLSConfig(ClientAuthRequired)
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, "db.internal", cfg.ServerName)

	_, err = withoutCert.TLSConfig(ClientAuthRequired)
	assert.ErrorIs(t, err, ErrMissingClientCertificate)

	cfg, err = withCert.TLSConfig(ClientAuthWant)
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)

	cfg, err = withoutCert.TLSConfig(ClientAuthWant)
	require.NoError(t, err)
	assert.Empty(t, cfg.Certificates)

	cfg, err = withCert.TLSConfig(ClientAuthNone)
	require.NoError(t, err)
	assert.Empty(t, cfg.Certificates)

	_, err = withCert.TLSConfig(ClientAuth("SOMETIMES"))
	assert.ErrorIs(t, err, ErrUnknownClientAuth)
}

func TestFileProviderCA(t *testing.T) {
	dir := t.TempDir()
	certFile, _ := writeKeyPair(t, dir)

	cfg, err := FileProvider{CAFile: certFile}.TLSConfig(ClientAuthNone)
	require.NoError(t, err)
	assert.NotNil(t, cfg.RootCAs)

	bogus := filepath.Join(dir, "bogus.pem")
	require.NoError(t, os.WriteFile(bogus, []byte("not a certificate"), 0o600))
	_, err = FileProvider{CAFile: bogus}.TLSConfig(ClientAuthNone)
	assert.ErrorIs(t, err, ErrNoCACertificates)

	_, err = FileProvider{CAFile: filepath.Join(dir, "missing.pem")}.TLSConfig(ClientAuthNone)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileProviderEnabled(t *testing.T) {
	assert.False(t, FileProvider{}.Enabled())
	assert.True(t, FileProvider{CAFile: "ca.pem"}.Enabled())
	assert.True(t, FileProvider{ServerName: "db"}.Enabled())
}
