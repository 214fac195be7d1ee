// Package signature verifies detached signatures over canonical payload bytes
// using the public key carried in the leaf certificate of an attestation
// chain.
//
// Supported algorithm families:
//   - ECDSA over SHA-256, signature DER-encoded as SEQUENCE { r, s INTEGER }
//   - RSA PKCS#1 v1.5 over SHA-256
//
// Any other key type fails closed with ErrUnsupportedKeyType; no verification
// is attempted. A cryptographically invalid signature is reported as
// ErrInvalidSignature, a first-class rejection rather than an exceptional
// condition.
//
// The package also provides signing helpers for the same formats. The
// verification service never signs; the helpers exist for fixtures and tests
// exercising the round-trip property.
package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
)

// ErrUnsupportedKeyType is returned for key types outside the EC/RSA families.
var ErrUnsupportedKeyType = errors.New("unsupported public key type")

// ErrInvalidSignature is returned when the signature fails cryptographic
// verification or is not well-formed for its algorithm.
var ErrInvalidSignature = errors.New("signature verification failed")

// ECDSASignature represents an ECDSA signature for ASN.1 encoding
type ECDSASignature struct {
	R, S *big.Int
}

// Verify checks sig over the exact payload bytes using pub. Both
// well-formedness and cryptographic validity must hold; there is no partial
// success.
func Verify(pub crypto.PublicKey, payload, sig []byte) error {
	digest := sha256.Sum256(payload)

	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		var parsed ECDSASignature
		rest, err := asn1.Unmarshal(sig, &parsed)
		if err != nil {
			return fmt.Errorf("%w: malformed DER signature: %v", ErrInvalidSignature, err)
		}
		if len(rest) != 0 {
			return fmt.Errorf("%w: trailing bytes after DER signature", ErrInvalidSignature)
		}
		if parsed.R == nil || parsed.S == nil || parsed.R.Sign() <= 0 || parsed.S.Sign() <= 0 {
			return fmt.Errorf("%w: non-positive signature component", ErrInvalidSignature)
		}
		if !ecdsa.Verify(key, digest[:], parsed.R, parsed.S) {
			return ErrInvalidSignature
		}
		return nil
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedKeyType, pub)
	}
}

// SignECDSA signs payload with an ECDSA private key using SHA-256 and returns
// the DER-encoded signature.
func SignECDSA(priv *ecdsa.PrivateKey, payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign with ECDSA: %w", err)
	}
	return MarshalECDSASignatureDER(r, s)
}

// MarshalECDSASignatureDER converts ECDSA signature components to DER format
func MarshalECDSASignatureDER(r, s *big.Int) ([]byte, error) {
	return asn1.Marshal(ECDSASignature{R: r, S: s})
}

// SignRSA signs payload with an RSA private key using PKCS#1 v1.5 and SHA-256.
func SignRSA(priv *rsa.PrivateKey, payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign with RSA: %w", err)
	}
	return sig, nil
}
