package certchain

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
)

// TrustAnchors is the process-wide, read-only set of trusted root
// certificates. It is loaded once at startup and safe for concurrent reads;
// changing the trust store requires a restart.
type TrustAnchors struct {
	anchors []*x509.Certificate
}

// NewTrustAnchors builds an anchor set from already-parsed certificates.
func NewTrustAnchors(certs ...*x509.Certificate) *TrustAnchors {
	return &TrustAnchors{anchors: certs}
}

// LoadTrustAnchors reads the trust store file at path. Two formats are
// accepted: a JSON array of PEM-encoded certificates, or a plain concatenated
// PEM bundle. A missing file, an unparseable anchor, or an empty store is a
// configuration error; callers must refuse to serve rather than continue with
// a partial anchor set.
func LoadTrustAnchors(path string) (*TrustAnchors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trust store %q: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	var pems [][]byte
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []string
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("trust store %q: invalid JSON array: %w", path, err)
		}
		for _, e := range entries {
			pems = append(pems, []byte(e))
		}
	} else {
		pems = append(pems, trimmed)
	}

	var anchors []*x509.Certificate
	for i, p := range pems {
		rest := p
		found := false
		for {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}
			if block.Type != "CERTIFICATE" {
				continue
			}
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("trust store %q: anchor %d: %w", path, i, err)
			}
			anchors = append(anchors, cert)
			found = true
		}
		if !found {
			return nil, fmt.Errorf("trust store %q: entry %d contains no certificate PEM block", path, i)
		}
	}

	if len(anchors) == 0 {
		return nil, fmt.Errorf("trust store %q: no trust anchors found", path)
	}

	return &TrustAnchors{anchors: anchors}, nil
}

// Len returns the number of anchors in the set.
func (t *TrustAnchors) Len() int { return len(t.anchors) }

// Contains reports whether cert is a member of the anchor set, by exact DER
// equality.
func (t *TrustAnchors) Contains(cert *x509.Certificate) bool {
	for _, a := range t.anchors {
		if bytes.Equal(a.Raw, cert.Raw) {
			return true
		}
	}
	return false
}

// issuerOf returns the first anchor that validly signed cert, or nil.
func (t *TrustAnchors) issuerOf(cert *x509.Certificate) *x509.Certificate {
	for _, a := range t.anchors {
		if err := cert.CheckSignatureFrom(a); err == nil {
			return a
		}
	}
	return nil
}
