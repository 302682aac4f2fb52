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

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
)

// ManualProvider serves a certificate loaded from PEM files. Renew reloads
// the files, so certificates can be rotated without a restart.
type ManualProvider struct {
	certFile string
	keyFile  string

	mu       sync.RWMutex
	cert     *tls.Certificate
	x509Cert *x509.Certificate
}

// NewManualProvider loads certFile and keyFile.
func NewManualProvider(certFile, keyFile string) (*ManualProvider, error) {
	if certFile == "" || keyFile == "" {
		return nil, fmt.Errorf("cert_file and key_file are required for manual TLS")
	}
	p := &ManualProvider{certFile: certFile, keyFile: keyFile}
	if err := p.Renew(); err != nil {
		return nil, err
	}
	return p, nil
}

// GetCertificate returns the loaded certificate.
func (p *ManualProvider) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return p.cert, nil
}

// Status describes the loaded certificate.
func (p *ManualProvider) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	issuer := ""
	if p.x509Cert != nil {
		issuer = p.x509Cert.Issuer.CommonName
	}
	return statusOf(ModeManual, issuer, p.x509Cert)
}

// Renew reloads the certificate files.
func (p *ManualProvider) Renew() error {
	cert, err := tls.LoadX509KeyPair(p.certFile, p.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	var x509Cert *x509.Certificate
	if len(cert.Certificate) > 0 {
		x509Cert, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return fmt.Errorf("failed to parse certificate: %w", err)
		}
	}

	p.mu.Lock()
	p.cert, p.x509Cert = &cert, x509Cert
	p.mu.Unlock()
	return nil
}
