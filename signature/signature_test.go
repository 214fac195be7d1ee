package signature

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyECDSA(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	payload := []byte(`{"content_hash_b64":"abc","app_id":"com.example.app"}`)

	sig, err := SignECDSA(priv, payload)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, Verify(&priv.PublicKey, payload, sig))
	})

	t.Run("any flipped payload bit fails", func(t *testing.T) {
		for i := 0; i < len(payload); i += 7 {
			tampered := append([]byte(nil), payload...)
			tampered[i] ^= 0x01
			err := Verify(&priv.PublicKey, tampered, sig)
			require.ErrorIs(t, err, ErrInvalidSignature, "flipped bit at byte %d", i)
		}
	})

	t.Run("tampered signature fails", func(t *testing.T) {
		tampered := append([]byte(nil), sig...)
		tampered[len(tampered)-1] ^= 0x01
		require.ErrorIs(t, Verify(&priv.PublicKey, payload, tampered), ErrInvalidSignature)
	})

	t.Run("malformed DER fails", func(t *testing.T) {
		require.ErrorIs(t, Verify(&priv.PublicKey, payload, []byte("junk")), ErrInvalidSignature)
	})

	t.Run("trailing bytes rejected", func(t *testing.T) {
		require.ErrorIs(t, Verify(&priv.PublicKey, payload, append(append([]byte(nil), sig...), 0x00)), ErrInvalidSignature)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		require.ErrorIs(t, Verify(&other.PublicKey, payload, sig), ErrInvalidSignature)
	})
}

func TestVerifyRSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	payload := []byte("canonical payload bytes")

	sig, err := SignRSA(priv, payload)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, Verify(&priv.PublicKey, payload, sig))
	})

	t.Run("flipped payload bit fails", func(t *testing.T) {
		tampered := append([]byte(nil), payload...)
		tampered[0] ^= 0x01
		require.ErrorIs(t, Verify(&priv.PublicKey, tampered, sig), ErrInvalidSignature)
	})

	t.Run("tampered signature fails", func(t *testing.T) {
		tampered := append([]byte(nil), sig...)
		tampered[0] ^= 0x01
		require.ErrorIs(t, Verify(&priv.PublicKey, payload, tampered), ErrInvalidSignature)
	})
}

func TestVerifyUnsupportedKeyType(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	err = Verify(pub, []byte("payload"), []byte("sig"))
	require.ErrorIs(t, err, ErrUnsupportedKeyType)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
}
