package payload

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalJSON(t *testing.T, contentHash []byte, extra string) []byte {
	t.Helper()
	doc := fmt.Sprintf(`{"content_hash_b64": %q, "app_id": "com.example.app"%s}`,
		base64.StdEncoding.EncodeToString(contentHash), extra)
	return []byte(doc)
}

func TestParse(t *testing.T) {
	hash := sha256.Sum256([]byte{1, 2, 3})

	t.Run("valid payload", func(t *testing.T) {
		canonical := canonicalJSON(t, hash[:], "")
		claims, err := Parse(canonical)
		require.NoError(t, err)
		assert.Equal(t, "com.example.app", claims.AppID)
		assert.Equal(t, hash[:], claims.ContentHash)
		assert.False(t, claims.HasNonce)
	})

	t.Run("canonical bytes preserved verbatim", func(t *testing.T) {
		// Non-pretty spacing must survive; a re-serialization would not.
		canonical := []byte(`{  "content_hash_b64":"` + base64.StdEncoding.EncodeToString(hash[:]) + `" , "app_id":"a" }`)
		claims, err := Parse(canonical)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(canonical, claims.Canonical()))

		// Mutating the input must not affect the retained copy.
		canonical[0] = 'X'
		assert.NotEqual(t, canonical[0], claims.Canonical()[0])
	})

	t.Run("nonce decoded when present", func(t *testing.T) {
		canonical := canonicalJSON(t, hash[:], `, "nonce_b64": "`+base64.StdEncoding.EncodeToString([]byte("abc"))+`"`)
		claims, err := Parse(canonical)
		require.NoError(t, err)
		assert.True(t, claims.HasNonce)
		assert.Equal(t, []byte("abc"), claims.Nonce)
	})

	t.Run("empty nonce treated as absent", func(t *testing.T) {
		canonical := canonicalJSON(t, hash[:], `, "nonce_b64": ""`)
		claims, err := Parse(canonical)
		require.NoError(t, err)
		assert.False(t, claims.HasNonce)
	})

	t.Run("missing content hash", func(t *testing.T) {
		_, err := Parse([]byte(`{"app_id": "com.example.app"}`))
		require.Error(t, err)
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "content_hash_b64", fieldErr.Field)
	})

	t.Run("invalid base64 nonce names the field", func(t *testing.T) {
		canonical := canonicalJSON(t, hash[:], `, "nonce_b64": "!!!"`)
		_, err := Parse(canonical)
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "nonce_b64", fieldErr.Field)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := Parse([]byte("not json"))
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "payload_canonical", fieldErr.Field)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := Parse(nil)
		require.Error(t, err)
	})

	t.Run("oversized payload", func(t *testing.T) {
		big := append([]byte(`{"content_hash_b64":"`), bytes.Repeat([]byte("A"), MaxPayloadBytes)...)
		big = append(big, []byte(`"}`)...)
		_, err := Parse(big)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}

func TestDecodeBase64(t *testing.T) {
	raw, err := DecodeBase64("signature", base64.StdEncoding.EncodeToString([]byte("sig")))
	require.NoError(t, err)
	assert.Equal(t, []byte("sig"), raw)

	_, err = DecodeBase64("signature", "%%%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}
