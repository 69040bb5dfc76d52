// Copyright (C) 2025, the simple-json-server authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonserver

import (
	"crypto/tls"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoPrivateKey is returned when the key file contains no PRIVATE KEY
// PEM block.
var ErrNoPrivateKey = errors.New("no private key found")

// TLSConfig names the PEM material for a TLS-enabled listener: a
// certificate chain and a private key (PKCS#8). The identity is loaded
// once at server startup and shared read-only by every handshake; loading
// failures are fatal to the listener, never per-connection.
type TLSConfig struct {
	// CertFile is the path to the certificate chain (PEM).
	CertFile string
	// KeyFile is the path to the private key (PEM).
	KeyFile string
}

// NewTLSConfig creates a TLS configuration from certificate and key paths.
func NewTLSConfig(certFile, keyFile string) TLSConfig {
	return TLSConfig{CertFile: certFile, KeyFile: keyFile}
}

// Load reads the PEM material and builds a server-side TLS configuration
// requiring no client certificate.
func (c TLSConfig) Load() (*tls.Config, error) {
	certPEM, err := os.ReadFile(c.CertFile)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	keyPEM, err := os.ReadFile(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	if !containsPrivateKey(keyPEM) {
		return nil, ErrNoPrivateKey
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

func containsPrivateKey(keyPEM []byte) bool {
	for rest := keyPEM; ; {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return false
		}
		if strings.HasSuffix(block.Type, "PRIVATE KEY") {
			return true
		}
	}
}
