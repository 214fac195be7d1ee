// Package verify sequences the attestation verification pipeline into a
// single pass/fail decision.
//
// The pipeline checks, in order: input decoding, certificate chain loading,
// content-hash binding, signature verification over the canonical payload
// bytes, chain-of-trust validation, attestation record parsing, and policy
// enforcement. It short-circuits on the first failure; later steps assume the
// invariants established by earlier ones.
//
// # Verifying a submission
//
//	svc := verify.NewService(anchors, policyCfg)
//	verdict := svc.Verify(&verify.Request{
//		PayloadCanonical: canonicalBytes,
//		SignatureB64:     sigB64,
//		CertChainB64:     x5c,
//		Media:            mediaBytes,
//	})
//	if !verdict.OK {
//		log.Printf("rejected: %s: %s", verdict.Category, verdict.Message)
//	}
package verify

import (
	"github.com/attestedmedia/mediaverifier/keyattest"
)

// Request carries one verification submission in transport form: the exact
// canonical payload bytes, the base64 signature, the base64 DER certificate
// chain (leaf first), and the raw media bytes.
type Request struct {
	PayloadCanonical []byte
	SignatureB64     string
	CertChainB64     []string
	Media            []byte
}

// Verdict is the end-to-end decision for one request. On failure, Category
// and Message identify what was rejected; on success, Attestation carries a
// projection of record fields useful to the caller.
type Verdict struct {
	OK          bool                `json:"ok"`
	Category    Category            `json:"category,omitempty"`
	Message     string              `json:"message"`
	Attestation *AttestationSummary `json:"attestation,omitempty"`
}

// AttestationSummary is the caller-facing projection of a verified
// attestation record.
type AttestationSummary struct {
	Version                int                     `json:"attestationVersion"`
	SecurityLevel          keyattest.SecurityLevel `json:"attestationSecurityLevel"`
	SecurityLevelName      string                  `json:"attestationSecurityLevelName"`
	KeymasterSecurityLevel keyattest.SecurityLevel `json:"keymasterSecurityLevel"`

	// PatchLevelEnforced is false when a min_patch_level is configured but
	// could not be checked against the record.
	PatchLevelEnforced bool `json:"patchLevelEnforced"`
}
