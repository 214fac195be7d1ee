package verify

// Category is the machine-readable classification of a verification failure.
// Categories are transport-agnostic; mapping them to HTTP status codes is the
// server's concern.
type Category string

const (
	CategoryMalformedInput              Category = "MalformedInput"
	CategoryEmptyChain                  Category = "EmptyChain"
	CategoryUnsupportedKeyType          Category = "UnsupportedKeyType"
	CategoryContentHashMismatch         Category = "ContentHashMismatch"
	CategorySignatureInvalid            Category = "SignatureInvalid"
	CategoryChainValidationFailed       Category = "ChainValidationFailed"
	CategoryAttestationExtensionMissing Category = "AttestationExtensionMissing"
	CategoryAttestationParseFailed      Category = "AttestationParseFailed"
	CategoryPolicyHardwareBacked        Category = "PolicyHardwareBackedRequired"
	CategoryPolicyChallengeMismatch     Category = "PolicyChallengeMismatch"
	CategoryPolicyAppIDMismatch         Category = "PolicyAppIdMismatch"
)

// PolicyFailure reports whether the category is a policy rejection rather
// than a structural or cryptographic one.
func (c Category) PolicyFailure() bool {
	switch c {
	case CategoryPolicyHardwareBacked, CategoryPolicyChallengeMismatch, CategoryPolicyAppIDMismatch:
		return true
	}
	return false
}
