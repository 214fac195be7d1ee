package keyattest

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Marshal encodes the record as a DER KeyDescription suitable for embedding
// in a certificate extension. Empty authorization-list regions are encoded as
// empty sequences; non-empty regions must already be valid DER elements and
// are copied verbatim.
//
// Production records come from device hardware; Marshal exists for fixtures,
// tests, and tooling that needs to fabricate records.
func (r *Record) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(int64(r.Version))
		b.AddASN1Enum(int64(r.SecurityLevel))
		b.AddASN1Int64(int64(r.KeymasterVersion))
		b.AddASN1Enum(int64(r.KeymasterSecurityLevel))
		b.AddASN1OctetString(r.Challenge)
		b.AddASN1OctetString(r.UniqueID)
		addRawOrEmptySequence(b, r.SoftwareEnforced)
		addRawOrEmptySequence(b, r.TEEEnforced)
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode KeyDescription: %w", err)
	}
	return der, nil
}

func addRawOrEmptySequence(b *cryptobyte.Builder, raw []byte) {
	if len(raw) == 0 {
		b.AddASN1(cbasn1.SEQUENCE, func(*cryptobyte.Builder) {})
		return
	}
	b.AddBytes(raw)
}
