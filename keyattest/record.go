// Package keyattest parses the hardware key-attestation record embedded in a
// leaf certificate's extension block.
//
// The record is a vendor-defined DER structure (KeyDescription) stored at OID
// 1.3.6.1.4.1.11129.2.1.17. Its fields are positional; this package decodes
// them with per-field tag checks and fails closed on any tag or truncation
// mismatch. The software-enforced and TEE-enforced authorization lists are
// large, vendor-versioned structures; they are retained as opaque DER regions
// for future policy extension rather than fully modeled.
package keyattest

import (
	"encoding/asn1"
	"fmt"
)

// KeyDescriptionOID locates the key-attestation extension in a certificate.
var KeyDescriptionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 1, 17}

// MaxExtensionBytes bounds the attestation extension size accepted for
// decoding.
const MaxExtensionBytes = 8 * 1024

// SecurityLevel classifies where a key's cryptographic operations are
// performed.
type SecurityLevel int

const (
	SecurityLevelSoftware           SecurityLevel = 0
	SecurityLevelTrustedEnvironment SecurityLevel = 1
	SecurityLevelStrongBox          SecurityLevel = 2
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityLevelSoftware:
		return "software"
	case SecurityLevelTrustedEnvironment:
		return "trusted-environment"
	case SecurityLevelStrongBox:
		return "strongbox"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// HardwareBacked reports whether the level indicates key material protected
// outside the application processor's software environment.
func (l SecurityLevel) HardwareBacked() bool {
	return l != SecurityLevelSoftware
}

// Record is the decoded attestation record. SoftwareEnforced and TEEEnforced
// hold the raw DER of the respective authorization lists, tag and length
// included.
type Record struct {
	Version                int
	SecurityLevel          SecurityLevel
	KeymasterVersion       int
	KeymasterSecurityLevel SecurityLevel
	Challenge              []byte
	UniqueID               []byte
	SoftwareEnforced       []byte
	TEEEnforced            []byte
}
