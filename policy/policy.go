// Package policy evaluates attestation records and payload claims against the
// configured verification policy.
//
// Evaluation is a pure decision function: no I/O, no side effects, rules
// checked in a fixed order with the first failing rule reported.
package policy

import (
	"bytes"
	"fmt"

	"github.com/attestedmedia/mediaverifier/keyattest"
	"github.com/attestedmedia/mediaverifier/payload"
)

// Config holds the policy parameters. It is loaded once as process-wide
// configuration and treated as immutable per evaluation.
type Config struct {
	RequireHardwareBacked bool
	ExpectedAppID         string

	// MinPatchLevel is currently advisory: the minimal record parser does not
	// decode patch-level fields, so a configured value is surfaced as "not
	// enforced" rather than silently passing. Zero means unset.
	MinPatchLevel int
}

// Rule identifies which policy rule a violation came from.
type Rule string

const (
	RuleHardwareBacked   Rule = "hardware_backed"
	RuleChallengeBinding Rule = "challenge_binding"
	RuleAppID            Rule = "app_id"
)

// Violation is a policy rejection, distinct from cryptographic failures so
// the two are separable in logs and metrics.
type Violation struct {
	Rule    Rule
	Message string
}

func (v *Violation) Error() string { return v.Message }

// Evaluation reports which checks were actually performed alongside a nil
// error. Callers surface PatchLevelEnforced=false to make the advisory
// min_patch_level rule visible instead of appearing to pass.
type Evaluation struct {
	PatchLevelEnforced      bool
	ChallengeBindingChecked bool
}

// Evaluate applies the policy rules to an attestation record and payload
// claims.
//
// When the payload carries no nonce the challenge-binding rule is skipped
// rather than failed. A payload that omits its nonce therefore bypasses
// challenge binding entirely; whether that fail-open asymmetry is acceptable
// depends on the caller's threat model.
func Evaluate(rec *keyattest.Record, claims *payload.Claims, cfg Config) (Evaluation, error) {
	eval := Evaluation{
		PatchLevelEnforced: cfg.MinPatchLevel == 0,
	}

	if cfg.RequireHardwareBacked && !rec.SecurityLevel.HardwareBacked() {
		return eval, &Violation{
			Rule:    RuleHardwareBacked,
			Message: fmt.Sprintf("attestation security level is %s, hardware-backed key required", rec.SecurityLevel),
		}
	}

	if claims.HasNonce {
		eval.ChallengeBindingChecked = true
		if !bytes.Equal(claims.Nonce, rec.Challenge) {
			return eval, &Violation{
				Rule:    RuleChallengeBinding,
				Message: "attestation challenge does not match payload nonce",
			}
		}
	}

	if claims.AppID != cfg.ExpectedAppID {
		return eval, &Violation{
			Rule:    RuleAppID,
			Message: fmt.Sprintf("payload app_id %q does not match expected app id", claims.AppID),
		}
	}

	return eval, nil
}
