// Package kernelerr provides the closed error taxonomy shared by every
// substrate-core package. It follows the ServiceError shape the rest of the
// organization's Go services use, but the kind set is the one the
// dimensional computation core defines, not an HTTP-facing one.
package kernelerr

import "fmt"

// Kind identifies one member of the closed error taxonomy.
type Kind string

const (
	// Identity errors.
	KindIdentityOutOfRange Kind = "IDENTITY_OUT_OF_RANGE"
	KindIdentityNotFound   Kind = "IDENTITY_NOT_FOUND"
	KindIdentityOverflow   Kind = "IDENTITY_OVERFLOW"
	KindDuplicateIdentity  Kind = "DUPLICATE_IDENTITY"

	// Expression errors.
	KindExpressionEvaluationFailed Kind = "EXPRESSION_EVALUATION_FAILED"
	KindExpressionNotDeterministic Kind = "EXPRESSION_NOT_DETERMINISTIC"
	KindExpressionSourceRejected   Kind = "EXPRESSION_SOURCE_REJECTED"

	// Operator errors.
	KindDivisionByZero       Kind = "DIVISION_BY_ZERO"
	KindInvalidDimensionIndex Kind = "INVALID_DIMENSION_INDEX"
	KindReversibilityViolation Kind = "REVERSIBILITY_VIOLATION"

	// Graph errors.
	KindDuplicateRelationship Kind = "DUPLICATE_RELATIONSHIP"
	KindDanglingEdge          Kind = "DANGLING_EDGE"
	KindCycleLimitExceeded    Kind = "CYCLE_LIMIT_EXCEEDED"
	KindExcessiveRecursion    Kind = "EXCESSIVE_RECURSION"

	// Seed errors.
	KindSeedValidationError   Kind = "SEED_VALIDATION_ERROR"
	KindSeedConflict          Kind = "SEED_CONFLICT"
	KindUnresolvedRelationship Kind = "UNRESOLVED_RELATIONSHIP"

	// SRL errors.
	KindSRLDisabled              Kind = "SRL_DISABLED"
	KindSRLBlacklisted           Kind = "SRL_BLACKLISTED"
	KindFetchFailed              Kind = "FETCH_FAILED"
	KindAdapterUnavailable       Kind = "ADAPTER_UNAVAILABLE"
	KindCredentialDecryptionFailed Kind = "CREDENTIAL_DECRYPTION_FAILED"
	KindFetchCancelled           Kind = "FETCH_CANCELLED"

	// Gateway errors.
	KindLawViolation Kind = "LAW_VIOLATION"
	KindInputRejected Kind = "INPUT_REJECTED"
)

// Error is a structured, actor-safe error. Details must never carry
// credentials or decrypted secret bytes.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on Kind alone, so callers can do
// errors.Is(err, kernelerr.New(kernelerr.KindIdentityNotFound, "")).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// WithDetails attaches a diagnostic field and returns e for chaining.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New builds an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Of reports the Kind of err if it is (or wraps) a *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if err == nil {
		return "", false
	}
	for {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = u.Unwrap()
		if err == nil {
			return "", false
		}
	}
	return e.Kind, true
}

// Sentinel constructors for the identity family, mirroring the taxonomy in
// spec §7 one-for-one.

func IdentityOutOfRange(value string) *Error {
	return New(KindIdentityOutOfRange, "identity value is out of the 64-bit range").WithDetails("value", value)
}

func IdentityNotFound(id string) *Error {
	return New(KindIdentityNotFound, "identity not found in registry").WithDetails("identity", id)
}

func IdentityOverflow(op string) *Error {
	return New(KindIdentityOverflow, "arithmetic result overflows 64 bits").WithDetails("operator", op)
}

func DuplicateIdentity(id string) *Error {
	return New(KindDuplicateIdentity, "identity already registered").WithDetails("identity", id)
}

func ExpressionEvaluationFailed(err error) *Error {
	return Wrap(KindExpressionEvaluationFailed, "expression evaluation failed", err)
}

func ExpressionNotDeterministic() *Error {
	return New(KindExpressionNotDeterministic, "expression produced different results for identical parameters")
}

func ExpressionSourceRejected(reason string) *Error {
	return New(KindExpressionSourceRejected, "expression source rejected").WithDetails("reason", reason)
}

func DivisionByZero() *Error {
	return New(KindDivisionByZero, "division or modulus by zero")
}

func InvalidDimensionIndex(i int) *Error {
	return New(KindInvalidDimensionIndex, "dimension index out of range").WithDetails("index", i)
}

func ReversibilityViolation(op string) *Error {
	return New(KindReversibilityViolation, "inverse operator did not reconstruct the input").WithDetails("operator", op)
}

func DuplicateRelationship(source, target, kind string) *Error {
	return New(KindDuplicateRelationship, "relationship already exists").
		WithDetails("source", source).WithDetails("target", target).WithDetails("kind", kind)
}

func DanglingEdge(which, id string) *Error {
	return New(KindDanglingEdge, "relationship endpoint does not exist in the registry").
		WithDetails("endpoint", which).WithDetails("identity", id)
}

func CycleLimitExceeded() *Error {
	return New(KindCycleLimitExceeded, "traversal exceeded its cycle/step limit")
}

func ExcessiveRecursion() *Error {
	return New(KindExcessiveRecursion, "recursive resolution exceeded the configured depth limit")
}

func SeedValidationError(field string) *Error {
	return New(KindSeedValidationError, "seed record missing required field").WithDetails("field", field)
}

func SeedConflict(name string) *Error {
	return New(KindSeedConflict, "seed name resolves to an existing identity with a conflicting definition").
		WithDetails("name", name)
}

func UnresolvedRelationship(from, to string) *Error {
	return New(KindUnresolvedRelationship, "seed relationship target was never ingested").
		WithDetails("from", from).WithDetails("to", to)
}

func SRLDisabled(id string) *Error {
	return New(KindSRLDisabled, "srl is disabled").WithDetails("srl_id", id)
}

func SRLBlacklisted(id string) *Error {
	return New(KindSRLBlacklisted, "srl is blacklisted").WithDetails("srl_id", id)
}

func FetchFailed(err error) *Error {
	return Wrap(KindFetchFailed, "fetch failed", err)
}

func AdapterUnavailable(kind string) *Error {
	return New(KindAdapterUnavailable, "no adapter registered for kind").WithDetails("kind", kind)
}

func CredentialDecryptionFailed(err error) *Error {
	return Wrap(KindCredentialDecryptionFailed, "credential decryption failed", err)
}

func FetchCancelled() *Error {
	return New(KindFetchCancelled, "fetch was cancelled")
}

func LawViolation(reason string) *Error {
	return New(KindLawViolation, "operation violates a gateway-enforced invariant").WithDetails("reason", reason)
}

func InputRejected(reason string) *Error {
	return New(KindInputRejected, "input rejected by gateway validation").WithDetails("reason", reason)
}
