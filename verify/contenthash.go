package verify

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// bindContentHash recomputes the SHA-256 digest of the submitted media bytes
// and compares it to the hash claimed by the payload. The comparison is
// constant time. This binds the signed payload to the actual bytes received;
// the signature step separately proves payload integrity, and both checks are
// mandatory.
func bindContentHash(media, claimed []byte) error {
	digest := sha256.Sum256(media)
	if len(claimed) != sha256.Size {
		return fmt.Errorf("claimed content hash is %d bytes, want %d", len(claimed), sha256.Size)
	}
	if subtle.ConstantTimeCompare(digest[:], claimed) != 1 {
		return fmt.Errorf("media hash does not match payload content_hash_b64")
	}
	return nil
}
