// Package certchain loads X.509 certificate chains and validates them against
// a set of trust anchors.
//
// A chain is ordered leaf first: index 0 is the certificate whose private key
// produced the signature under verification, followed by its issuers toward a
// root. Loading is purely structural; trust decisions happen in Validate.
//
// # Loading and validating a chain
//
//	chain, err := certchain.Load(x5cBase64)
//	if err != nil {
//		log.Fatal(err)
//	}
//	anchors, err := certchain.LoadTrustAnchors("trust_store.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := chain.Validate(anchors, time.Now()); err != nil {
//		log.Printf("untrusted chain: %v", err)
//	}
package certchain

import (
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
)

// Input bounds for adversarial chains.
const (
	MaxChainCerts   = 8
	MaxCertDERBytes = 16 * 1024
)

// ErrEmptyChain is returned when the submitted chain contains no certificates.
var ErrEmptyChain = errors.New("empty certificate chain")

// Chain is an ordered certificate chain, leaf first. It is built once per
// verification request and never mutated.
type Chain struct {
	certs []*x509.Certificate
}

// Load decodes an ordered list of base64-encoded DER certificates, leaf
// first. It performs no trust decisions.
func Load(x5cB64 []string) (*Chain, error) {
	if len(x5cB64) == 0 {
		return nil, ErrEmptyChain
	}
	if len(x5cB64) > MaxChainCerts {
		return nil, fmt.Errorf("certificate chain has %d entries, limit is %d", len(x5cB64), MaxChainCerts)
	}

	certs := make([]*x509.Certificate, 0, len(x5cB64))
	for i, b64 := range x5cB64 {
		der, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: invalid base64: %w", i, err)
		}
		if len(der) > MaxCertDERBytes {
			return nil, fmt.Errorf("certificate %d: %d bytes exceeds limit of %d", i, len(der), MaxCertDERBytes)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i, err)
		}
		certs = append(certs, cert)
	}

	return &Chain{certs: certs}, nil
}

// Leaf returns the certificate whose key signed the payload.
func (c *Chain) Leaf() *x509.Certificate { return c.certs[0] }

// Certificates returns the chain in leaf-first order.
func (c *Chain) Certificates() []*x509.Certificate { return c.certs }

// Len returns the number of certificates in the chain.
func (c *Chain) Len() int { return len(c.certs) }
