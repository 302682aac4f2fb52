// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tls serves the certificate of the HTTP transport, either loaded
// from files or generated self-signed for development.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"
)

// Modes.
const (
	ModeOff        = "off"
	ModeManual     = "manual"
	ModeSelfSigned = "self-signed"
)

// Config selects the certificate source.
type Config struct {
	// Mode is off, manual or self-signed. Empty means off.
	Mode string `mapstructure:"mode"`

	// CertFile and KeyFile are PEM files for manual mode.
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`

	// Hostnames and IPAddresses go into the self-signed certificate.
	Hostnames    []string `mapstructure:"hostnames"`
	IPAddresses  []string `mapstructure:"ip_addresses"`
	ValidityDays int      `mapstructure:"validity_days"`
}

// Enabled reports whether the mode serves TLS.
func (c Config) Enabled() bool {
	return c.Mode != "" && c.Mode != ModeOff
}

// Provider supplies the serving certificate.
type Provider interface {
	// GetCertificate is called on every handshake.
	GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error)

	// Status describes the current certificate.
	Status() Status

	// Renew reloads or regenerates the certificate.
	Renew() error
}

// Status describes the serving certificate.
type Status struct {
	Mode            string    `json:"mode"`
	Domains         []string  `json:"domains,omitempty"`
	Issuer          string    `json:"issuer,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
	DaysUntilExpiry int       `json:"daysUntilExpiry"`
	Valid           bool      `json:"valid"`
}

// Manager wraps the provider of the configured mode.
type Manager struct {
	mode     string
	provider Provider
}

// NewManager creates the provider for cfg. It fails when cfg is not enabled.
func NewManager(cfg Config) (*Manager, error) {
	var (
		provider Provider
		err      error
	)
	switch cfg.Mode {
	case ModeManual:
		provider, err = NewManualProvider(cfg.CertFile, cfg.KeyFile)
	case ModeSelfSigned:
		provider, err = NewSelfSignedProvider(cfg.Hostnames, cfg.IPAddresses, cfg.ValidityDays)
	case "", ModeOff:
		return nil, fmt.Errorf("TLS not enabled")
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s (must be %s, %s or %s)", cfg.Mode, ModeOff, ModeManual, ModeSelfSigned)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS provider: %w", err)
	}
	return &Manager{mode: cfg.Mode, provider: provider}, nil
}

// TLSConfig returns a server config backed by the provider.
func (m *Manager) TLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: m.provider.GetCertificate,
		MinVersion:     tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		},
	}
}

// Status describes the current certificate.
func (m *Manager) Status() Status { return m.provider.Status() }

// Renew reloads or regenerates the certificate.
func (m *Manager) Renew() error { return m.provider.Renew() }

func statusOf(mode, issuer string, cert *x509.Certificate) Status {
	if cert == nil {
		return Status{Mode: mode}
	}
	return Status{
		Mode:            mode,
		Domains:         cert.DNSNames,
		Issuer:          issuer,
		ExpiresAt:       cert.NotAfter,
		DaysUntilExpiry: int(time.Until(cert.NotAfter).Hours() / 24),
		Valid:           time.Now().Before(cert.NotAfter),
	}
}
