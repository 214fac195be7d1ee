package keyattest

import (
	"crypto/x509"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// ErrExtensionMissing is returned when the leaf certificate carries no
// key-attestation extension.
var ErrExtensionMissing = errors.New("attestation extension not found in leaf certificate")

// ParseError reports a structurally invalid attestation record.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("attestation record parse failed: %s", e.Reason)
}

// Known attestation scheme versions sharing the KeyDescription top-level
// layout. Versions 1-4 are keymaster-era, 100+ are KeyMint. An unknown
// version fails closed instead of being decoded with a guessed layout.
var supportedVersions = map[int]bool{
	1: true, 2: true, 3: true, 4: true,
	100: true, 200: true, 300: true, 400: true,
}

// Parse locates the key-attestation extension in leaf and decodes its record.
func Parse(leaf *x509.Certificate) (*Record, error) {
	for _, ext := range leaf.Extensions {
		if !ext.Id.Equal(KeyDescriptionOID) {
			continue
		}
		if len(ext.Value) > MaxExtensionBytes {
			return nil, &ParseError{Reason: fmt.Sprintf("extension is %d bytes, limit is %d", len(ext.Value), MaxExtensionBytes)}
		}
		return decodeKeyDescription(ext.Value)
	}
	return nil, ErrExtensionMissing
}

// decodeKeyDescription decodes the DER KeyDescription sequence. Fields are
// positional: version, attestation security level, keymaster version,
// keymaster security level, challenge, unique id, software-enforced list,
// TEE-enforced list. Every field's tag is checked before extraction.
func decodeKeyDescription(der []byte) (*Record, error) {
	input := cryptobyte.String(der)
	var kd cryptobyte.String
	if !input.ReadASN1(&kd, cbasn1.SEQUENCE) {
		return nil, &ParseError{Reason: "outer KeyDescription sequence missing or truncated"}
	}
	if !input.Empty() {
		return nil, &ParseError{Reason: "trailing bytes after KeyDescription sequence"}
	}

	var version int
	if !kd.ReadASN1Integer(&version) {
		return nil, &ParseError{Reason: "attestationVersion is not an INTEGER"}
	}
	if !supportedVersions[version] {
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported attestation version %d", version)}
	}

	// All supported versions share the remaining layout; a future scheme
	// revision that reorders fields gets its own decoder selected here.
	return decodeV1Layout(version, kd)
}

func decodeV1Layout(version int, kd cryptobyte.String) (*Record, error) {
	rec := &Record{Version: version}

	var secLevel int
	if !kd.ReadASN1Enum(&secLevel) {
		return nil, &ParseError{Reason: "attestationSecurityLevel is not an ENUMERATED"}
	}
	rec.SecurityLevel = SecurityLevel(secLevel)

	if !kd.ReadASN1Integer(&rec.KeymasterVersion) {
		return nil, &ParseError{Reason: "keymasterVersion is not an INTEGER"}
	}

	var kmLevel int
	if !kd.ReadASN1Enum(&kmLevel) {
		return nil, &ParseError{Reason: "keymasterSecurityLevel is not an ENUMERATED"}
	}
	rec.KeymasterSecurityLevel = SecurityLevel(kmLevel)

	var challenge cryptobyte.String
	if !kd.ReadASN1(&challenge, cbasn1.OCTET_STRING) {
		return nil, &ParseError{Reason: "attestationChallenge is not an OCTET STRING"}
	}
	rec.Challenge = append([]byte(nil), challenge...)

	var uniqueID cryptobyte.String
	if !kd.ReadASN1(&uniqueID, cbasn1.OCTET_STRING) {
		return nil, &ParseError{Reason: "uniqueId is not an OCTET STRING"}
	}
	rec.UniqueID = append([]byte(nil), uniqueID...)

	// The authorization lists are kept as raw DER elements, tag included, so
	// later policy extensions can decode the fields they need.
	var swEnforced cryptobyte.String
	if !kd.ReadASN1Element(&swEnforced, cbasn1.SEQUENCE) {
		return nil, &ParseError{Reason: "softwareEnforced is not a SEQUENCE"}
	}
	rec.SoftwareEnforced = append([]byte(nil), swEnforced...)

	var teeEnforced cryptobyte.String
	if !kd.ReadASN1Element(&teeEnforced, cbasn1.SEQUENCE) {
		return nil, &ParseError{Reason: "teeEnforced is not a SEQUENCE"}
	}
	rec.TEEEnforced = append([]byte(nil), teeEnforced...)

	if !kd.Empty() {
		return nil, &ParseError{Reason: "trailing bytes inside KeyDescription sequence"}
	}

	return rec, nil
}
