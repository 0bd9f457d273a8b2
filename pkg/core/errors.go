package core

import "errors"

// Kind classifies failures surfaced by the engine.
type Kind string

const (
	// KindValidation is a local failure that never reaches the network.
	KindValidation Kind = "validation"
	// KindTransport is a network or credential failure; retrying may help.
	KindTransport Kind = "transport"
	// KindRejected is a refusal reported by the remote side.
	KindRejected Kind = "rejected"
	// KindStalePosition means a position no longer denotes the expected record.
	KindStalePosition Kind = "stale_position"
	KindInternal      Kind = "internal"
)

// Error is a classified error.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinels: a target without Op and Message matches any error of
// the same kind, otherwise kind and message must both match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Op == "" && t.Message == "" {
		return true
	}
	return t.Message == e.Message
}

// Common errors.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrRejected      = &Error{Kind: KindRejected}
	ErrStalePosition = &Error{Kind: KindStalePosition}

	ErrEmptyTitle        = &Error{Kind: KindValidation, Message: "title cannot be empty"}
	ErrInvalidTransition = &Error{Kind: KindValidation, Message: "invalid dialog transition"}
	ErrUnauthenticated   = &Error{Kind: KindTransport, Message: "not authenticated"}
	ErrReadOnly          = &Error{Kind: KindRejected, Message: "scope is read-only"}
	ErrReloadRequired    = &Error{Kind: KindStalePosition, Message: "positions are stale, reload required"}
)

// New creates a classified error.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates a classified error with a cause.
func Wrap(kind Kind, op, message string, cause error) error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// KindOf returns the kind of err, defaulting to internal.
func KindOf(err error) Kind {
	var coded *Error
	if errors.As(err, &coded) && coded.Kind != "" {
		return coded.Kind
	}
	return KindInternal
}

// Notice returns the dismissible, user-facing message for err.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindValidation:
		var coded *Error
		errors.As(err, &coded)
		if coded.Message != "" {
			return coded.Message
		}
		return "invalid input"
	case KindTransport:
		if errors.Is(err, ErrUnauthenticated) {
			return "Please sign in and try again."
		}
		return "Could not reach the service. Please try again."
	case KindRejected:
		return "The service rejected the request."
	case KindStalePosition:
		if errors.Is(err, ErrReloadRequired) {
			return "The list could not be refreshed. Please try again."
		}
		return "The list changed since it was loaded. It has been refreshed."
	default:
		return "Something went wrong."
	}
}

// opError re-labels err with the engine operation, keeping its kind.
func opError(op string, err error) error {
	var coded *Error
	if errors.As(err, &coded) {
		return &Error{Kind: coded.Kind, Op: op, Message: coded.Message, Err: coded.Err}
	}
	return &Error{Kind: KindInternal, Op: op, Err: err}
}
