package tlsutil

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameersohail0/OpenDaVINCI/config"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/testutil"
)

func TestLoadClientTLSConfig_Disabled(t *testing.T) {
	cfg, err := LoadClientTLSConfig(config.TLSConfig{CAFiles: []string{"missing.pem"}})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadClientTLSConfig(t *testing.T) {
	dir := t.TempDir()
	caFile, _ := testutil.WriteSelfSignedCert(t, dir, "ca")

	tests := []struct {
		name    string
		cfg     config.TLSConfig
		version uint16
	}{
		{"system pool only", config.TLSConfig{Enabled: true}, tls.VersionTLS12},
		{"extra CA", config.TLSConfig{Enabled: true, CAFiles: []string{caFile}}, tls.VersionTLS12},
		{"TLS 1.3", config.TLSConfig{Enabled: true, MinVersion: "1.3"}, tls.VersionTLS13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadClientTLSConfig(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.NotNil(t, cfg.RootCAs)
			assert.Equal(t, tt.version, cfg.MinVersion)
			assert.Empty(t, cfg.Certificates)
			assert.False(t, cfg.InsecureSkipVerify)
		})
	}
}

func TestLoadClientTLSConfig_ServerNameAndInsecure(t *testing.T) {
	cfg, err := LoadClientTLSConfig(config.TLSConfig{
		Enabled:            true,
		ServerName:         "bus.internal",
		InsecureSkipVerify: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "bus.internal", cfg.ServerName)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestLoadClientTLSConfig_ClientCertificate(t *testing.T) {
	certFile, keyFile := testutil.WriteSelfSignedCert(t, t.TempDir(), "client")

	cfg, err := LoadClientTLSConfig(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile})
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
}

func TestLoadClientTLSConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := testutil.WriteSelfSignedCert(t, dir, "client")
	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0o644))

	tests := []struct {
		name string
		cfg  config.TLSConfig
	}{
		{"missing CA file", config.TLSConfig{Enabled: true, CAFiles: []string{filepath.Join(dir, "missing.pem")}}},
		{"invalid CA PEM", config.TLSConfig{Enabled: true, CAFiles: []string{garbage}}},
		{"missing key", config.TLSConfig{Enabled: true, CertFile: certFile}},
		{"missing cert", config.TLSConfig{Enabled: true, KeyFile: keyFile}},
		{"mismatched pair", config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: garbage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadClientTLSConfig(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestLoadServerTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := testutil.WriteSelfSignedCert(t, dir, "server")
	clientCA, _ := testutil.WriteSelfSignedCert(t, dir, "client")

	disabled, err := LoadServerTLSConfig(config.TLSConfig{})
	require.NoError(t, err)
	assert.Nil(t, disabled)

	plain, err := LoadServerTLSConfig(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile})
	require.NoError(t, err)
	assert.Len(t, plain.Certificates, 1)
	assert.Equal(t, tls.NoClientCert, plain.ClientAuth)
	assert.Nil(t, plain.ClientCAs)

	mutual, err := LoadServerTLSConfig(config.TLSConfig{
		Enabled:    true,
		CertFile:   certFile,
		KeyFile:    keyFile,
		CAFiles:    []string{clientCA},
		MinVersion: "1.3",
	})
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, mutual.ClientAuth)
	assert.NotNil(t, mutual.ClientCAs)
	assert.Equal(t, uint16(tls.VersionTLS13), mutual.MinVersion)

	_, err = LoadServerTLSConfig(config.TLSConfig{Enabled: true, CertFile: filepath.Join(dir, "missing.pem"), KeyFile: keyFile})
	assert.True(t, errors.IsFatal(err))
}

func TestParseTLSVersion(t *testing.T) {
	assert.Equal(t, uint16(tls.VersionTLS13), parseTLSVersion("1.3"))
	assert.Equal(t, uint16(tls.VersionTLS12), parseTLSVersion("1.2"))
	assert.Equal(t, uint16(tls.VersionTLS12), parseTLSVersion(""))
	assert.Equal(t, uint16(tls.VersionTLS12), parseTLSVersion("1.0"))
}
