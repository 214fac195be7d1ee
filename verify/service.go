package verify

import (
	"errors"
	"fmt"
	"time"

	"github.com/attestedmedia/mediaverifier/certchain"
	"github.com/attestedmedia/mediaverifier/keyattest"
	"github.com/attestedmedia/mediaverifier/payload"
	"github.com/attestedmedia/mediaverifier/policy"
	"github.com/attestedmedia/mediaverifier/signature"
)

// DefaultMaxMediaBytes bounds submitted media when the service is constructed
// without an explicit limit.
const DefaultMaxMediaBytes = 32 << 20

// Service runs the verification pipeline. It holds only the two process-wide
// read-only resources (trust anchors and policy), so a single Service is safe
// for concurrent use without locking.
type Service struct {
	anchors *certchain.TrustAnchors
	policy  policy.Config

	maxMediaBytes int64

	// now supplies the chain validation time; overridable in tests.
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxMediaBytes overrides the media size bound.
func WithMaxMediaBytes(n int64) Option {
	return func(s *Service) { s.maxMediaBytes = n }
}

// WithClock overrides the time source used for certificate validity checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a verification service bound to a trust-anchor set and a
// policy.
func NewService(anchors *certchain.TrustAnchors, pol policy.Config, opts ...Option) *Service {
	s := &Service{
		anchors:       anchors,
		policy:        pol,
		maxMediaBytes: DefaultMaxMediaBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the full pipeline over one request and returns its verdict.
// The step ordering is deliberate: hash binding and the signature check
// establish authenticity before any attestation semantics are trusted, and
// the pipeline stops at the first failure since later steps assume earlier
// invariants. A failure is a verdict, never a masked success.
func (s *Service) Verify(req *Request) *Verdict {
	claims, err := payload.Parse(req.PayloadCanonical)
	if err != nil {
		return fail(CategoryMalformedInput, err)
	}

	sig, err := payload.DecodeBase64("signature", req.SignatureB64)
	if err != nil {
		return fail(CategoryMalformedInput, err)
	}

	chain, err := certchain.Load(req.CertChainB64)
	if err != nil {
		if errors.Is(err, certchain.ErrEmptyChain) {
			return fail(CategoryEmptyChain, err)
		}
		return fail(CategoryMalformedInput, err)
	}

	if int64(len(req.Media)) > s.maxMediaBytes {
		return fail(CategoryMalformedInput, fmt.Errorf("media is %d bytes, limit is %d", len(req.Media), s.maxMediaBytes))
	}
	if err := bindContentHash(req.Media, claims.ContentHash); err != nil {
		return fail(CategoryContentHashMismatch, err)
	}

	// The signature must cover the untouched canonical bytes; Claims keeps
	// them verbatim for exactly this step.
	if err := signature.Verify(chain.Leaf().PublicKey, claims.Canonical(), sig); err != nil {
		if errors.Is(err, signature.ErrUnsupportedKeyType) {
			return fail(CategoryUnsupportedKeyType, err)
		}
		return fail(CategorySignatureInvalid, err)
	}

	// Chain validation covers link signatures, validity windows, basic
	// constraints, and anchor termination. Revocation (CRL/OCSP) is out of
	// scope for this deployment and is not checked here.
	if err := chain.Validate(s.anchors, s.now()); err != nil {
		return fail(CategoryChainValidationFailed, err)
	}

	rec, err := keyattest.Parse(chain.Leaf())
	if err != nil {
		if errors.Is(err, keyattest.ErrExtensionMissing) {
			return fail(CategoryAttestationExtensionMissing, err)
		}
		return fail(CategoryAttestationParseFailed, err)
	}

	eval, err := policy.Evaluate(rec, claims, s.policy)
	if err != nil {
		return fail(policyCategory(err), err)
	}

	return &Verdict{
		OK:      true,
		Message: "verified",
		Attestation: &AttestationSummary{
			Version:                rec.Version,
			SecurityLevel:          rec.SecurityLevel,
			SecurityLevelName:      rec.SecurityLevel.String(),
			KeymasterSecurityLevel: rec.KeymasterSecurityLevel,
			PatchLevelEnforced:     eval.PatchLevelEnforced,
		},
	}
}

func fail(cat Category, err error) *Verdict {
	return &Verdict{OK: false, Category: cat, Message: err.Error()}
}

func policyCategory(err error) Category {
	var v *policy.Violation
	if !errors.As(err, &v) {
		return CategoryPolicyAppIDMismatch
	}
	switch v.Rule {
	case policy.RuleHardwareBacked:
		return CategoryPolicyHardwareBacked
	case policy.RuleChallengeBinding:
		return CategoryPolicyChallengeMismatch
	default:
		return CategoryPolicyAppIDMismatch
	}
}
