// Package payload handles the canonical signed payload and its claim fields.
//
// The payload is the exact byte sequence that was signed by the attested key.
// Those bytes are parsed as JSON only to extract claim fields; they are never
// re-serialized, because a re-serialization can change byte layout and
// invalidate the signature check. Callers that need the signed bytes must use
// Claims.Canonical.
//
// # Claims
//
// Parse a canonical payload and read its claims:
//
//	claims, err := payload.Parse(canonicalBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(claims.AppID)
package payload

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// MaxPayloadBytes bounds the size of a canonical payload accepted for parsing.
const MaxPayloadBytes = 64 * 1024

// FieldError reports a malformed or missing input field by name, so the
// transport layer can surface which field the caller got wrong.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// DecodeBase64 decodes a base64 input field, reporting failures with the
// field name attached.
func DecodeBase64(field, s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &FieldError{Field: field, Err: err}
	}
	return raw, nil
}

// Claims holds the logical fields extracted from a canonical payload together
// with the untouched canonical bytes.
type Claims struct {
	AppID string

	// ContentHash is the decoded content_hash_b64 claim.
	ContentHash []byte

	// Nonce is the decoded nonce_b64 claim; nil when the payload carries no
	// nonce. HasNonce distinguishes an absent nonce from an empty one.
	Nonce    []byte
	HasNonce bool

	canonical []byte
}

// Canonical returns the exact signed byte sequence the claims were parsed
// from. Signature verification must use these bytes and nothing else.
func (c *Claims) Canonical() []byte { return c.canonical }

// rawClaims mirrors the payload document. Unknown fields are tolerated; the
// payload schema is owned by the capture application.
type rawClaims struct {
	ContentHashB64 string  `json:"content_hash_b64"`
	NonceB64       *string `json:"nonce_b64"`
	AppID          string  `json:"app_id"`
}

// Parse extracts claim fields from the canonical payload bytes. The input is
// retained verbatim and available through Canonical. content_hash_b64 is
// required; nonce_b64 is optional; app_id absence is left for the policy
// engine to reject.
func Parse(canonical []byte) (*Claims, error) {
	if len(canonical) == 0 {
		return nil, &FieldError{Field: "payload_canonical", Err: fmt.Errorf("empty payload")}
	}
	if len(canonical) > MaxPayloadBytes {
		return nil, &FieldError{Field: "payload_canonical", Err: fmt.Errorf("payload exceeds %d bytes", MaxPayloadBytes)}
	}

	var raw rawClaims
	if err := json.Unmarshal(canonical, &raw); err != nil {
		return nil, &FieldError{Field: "payload_canonical", Err: err}
	}

	if raw.ContentHashB64 == "" {
		return nil, &FieldError{Field: "content_hash_b64", Err: fmt.Errorf("missing required claim")}
	}
	contentHash, err := DecodeBase64("content_hash_b64", raw.ContentHashB64)
	if err != nil {
		return nil, err
	}

	claims := &Claims{
		AppID:       raw.AppID,
		ContentHash: contentHash,
		canonical:   append([]byte(nil), canonical...),
	}

	// An empty nonce_b64 is treated the same as an absent one.
	if raw.NonceB64 != nil && *raw.NonceB64 != "" {
		nonce, err := DecodeBase64("nonce_b64", *raw.NonceB64)
		if err != nil {
			return nil, err
		}
		claims.Nonce = nonce
		claims.HasNonce = true
	}

	return claims, nil
}
