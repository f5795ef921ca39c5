// Package errs defines the error taxonomy shared by the oracle, the bridge
// adapters and the router.
//
// Every failure carries a Kind and a short human-readable reason. Callers
// match a specific failure with errors.Is against the exported sentinels, or
// a whole category with KindOf.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure
type Kind int

// Failure kinds
const (
	KindUnknown       Kind = iota
	KindAuthorization      // caller is not the stored authority
	KindValidation         // null identifiers, zero amounts, parameter caps
	KindNotFound           // missing feed, gas price, route or provider
	KindState              // double initialization, duplicate admission
	KindUnavailable        // downstream transport or provider failure
)

// String returns the taxonomy name of the kind
func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "AuthorizationError"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindState:
		return "StateError"
	case KindUnavailable:
		return "UnavailableError"
	default:
		return "UnknownError"
	}
}

// Error is a classified failure raised by an operation
type Error struct {
	// Kind is the failure category
	Kind Kind

	// Op names the operation that failed, e.g. "router.AddBridgeAdapter"
	Op string

	// Reason is the short human-readable cause
	Reason string

	// Detail optionally names the offending value
	Detail string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a sentinel of the same kind and reason
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind && t.Reason == e.Reason
}

func sentinel(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Sentinels matched with errors.Is
var (
	ErrUnauthorized          = sentinel(KindAuthorization, "unauthorized")
	ErrInvalidAddress        = sentinel(KindValidation, "invalid address")
	ErrInvalidAmount         = sentinel(KindValidation, "invalid amount")
	ErrInvalidChain          = sentinel(KindValidation, "invalid chain")
	ErrInvalidGasPrice       = sentinel(KindValidation, "invalid gas price")
	ErrInvalidOracle         = sentinel(KindValidation, "invalid oracle")
	ErrUnsupportedAsset      = sentinel(KindValidation, "unsupported asset")
	ErrBelowMinimum          = sentinel(KindValidation, "amount below minimum")
	ErrFeeTooHigh            = sentinel(KindValidation, "fee too high")
	ErrProviderUnsupported   = sentinel(KindValidation, "provider unsupported")
	ErrFeedNotConfigured     = sentinel(KindNotFound, "price feed not configured")
	ErrGasPriceNotConfigured = sentinel(KindNotFound, "gas price not configured")
	ErrStalePrice            = sentinel(KindNotFound, "stale price")
	ErrInvalidPrice          = sentinel(KindNotFound, "invalid price")
	ErrNoRouteAvailable      = sentinel(KindNotFound, "no route available")
	ErrAdapterNotFound       = sentinel(KindNotFound, "adapter not found")
	ErrEndpointNotSet        = sentinel(KindNotFound, "endpoint not set")
	ErrAlreadyInitialized    = sentinel(KindState, "already initialized")
	ErrNotInitialized        = sentinel(KindState, "not initialized")
	ErrAdapterExists         = sentinel(KindState, "adapter exists")
	ErrProviderUnavailable   = sentinel(KindUnavailable, "provider unavailable")
)

// E raises a sentinel failure on behalf of op
func E(op string, s *Error) error {
	return &Error{Kind: s.Kind, Op: op, Reason: s.Reason}
}

// Ef raises a sentinel failure with a formatted detail
func Ef(op string, s *Error, format string, args ...interface{}) error {
	return &Error{Kind: s.Kind, Op: op, Reason: s.Reason, Detail: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a downstream failure. A cause that is already classified
// keeps its kind.
func Unavailable(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var classified *Error
	if errors.As(cause, &classified) {
		return cause
	}
	return &Error{
		Kind:   KindUnavailable,
		Op:     op,
		Reason: ErrProviderUnavailable.Reason,
		Err:    cause,
	}
}

// KindOf returns the kind of the outermost classified error in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
