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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"sync"
	"time"
)

// DefaultValidityDays is the lifetime of a generated certificate.
const DefaultValidityDays = 365

// SelfSignedProvider generates a certificate in memory for development.
type SelfSignedProvider struct {
	hostnames    []string
	ipAddresses  []string
	validityDays int

	mu       sync.RWMutex
	cert     *tls.Certificate
	x509Cert *x509.Certificate
}

// NewSelfSignedProvider generates a certificate for the given names. With
// no names it covers localhost and 127.0.0.1.
func NewSelfSignedProvider(hostnames, ipAddresses []string, validityDays int) (*SelfSignedProvider, error) {
	if validityDays < 0 {
		return nil, fmt.Errorf("validity_days must be positive, got %d", validityDays)
	}
	if validityDays == 0 {
		validityDays = DefaultValidityDays
	}
	if len(hostnames) == 0 && len(ipAddresses) == 0 {
		hostnames = []string{"localhost"}
		ipAddresses = []string{"127.0.0.1"}
	}

	p := &SelfSignedProvider{hostnames: hostnames, ipAddresses: ipAddresses, validityDays: validityDays}
	if err := p.Renew(); err != nil {
		return nil, err
	}
	return p, nil
}

// GetCertificate returns the generated certificate.
func (p *SelfSignedProvider) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cert == nil {
		return nil, fmt.Errorf("no certificate generated")
	}
	return p.cert, nil
}

// Status describes the generated certificate.
func (p *SelfSignedProvider) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return statusOf(ModeSelfSigned, "Self-Signed", p.x509Cert)
}

// Renew generates a fresh certificate.
func (p *SelfSignedProvider) Renew() error {
	cert, x509Cert, err := generateSelfSigned(p.hostnames, p.ipAddresses, p.validityDays)
	if err != nil {
		return fmt.Errorf("failed to generate self-signed certificate: %w", err)
	}
	p.mu.Lock()
	p.cert, p.x509Cert = cert, x509Cert
	p.mu.Unlock()
	return nil
}

func generateSelfSigned(hostnames, ipAddresses []string, validityDays int) (*tls.Certificate, *x509.Certificate, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"autotask-mcp development"},
			CommonName:   "localhost",
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(time.Duration(validityDays) * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              append([]string(nil), hostnames...),
	}
	for _, s := range ipAddresses {
		if ip := net.ParseIP(s); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	x509Cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	tlsCert, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create X509 key pair: %w", err)
	}
	return &tlsCert, x509Cert, nil
}
