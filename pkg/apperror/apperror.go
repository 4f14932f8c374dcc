// Package apperror classifies failures into the handful of kinds the HTTP
// boundary knows how to report.
package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
	KindAuth
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is a classified error. Message is safe to show to callers; Err keeps
// the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: errors.WithStack(err)}
}

func Validation(msg string) error { return New(KindValidation, msg) }
func NotFound(msg string) error   { return New(KindNotFound, msg) }
func Conflict(msg string) error   { return New(KindConflict, msg) }
func Auth(msg string) error       { return New(KindAuth, msg) }
func Forbidden(msg string) error  { return New(KindForbidden, msg) }

func Upstream(err error, msg string) error { return Wrap(KindUpstream, err, msg) }

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to the status code reported to callers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Body renders the JSON error payload. Unknown errors never leak their cause.
func Body(err error) map[string]string {
	var e *Error
	if !errors.As(err, &e) {
		return map[string]string{"message": "internal server error"}
	}
	out := map[string]string{"message": e.Message}
	if e.Kind == KindUpstream && e.Err != nil {
		out["error"] = errors.Cause(e.Err).Error()
	}
	return out
}
