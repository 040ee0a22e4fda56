package app_errors

import "errors"

// Kind classifies an error for the HTTP layer. Every rule violation in the
// catalog and enrollment engines surfaces as exactly one of these.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidState
)

// Error is a typed domain error with an optional field-to-messages mapping
// for validation-style failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string, field string) *Error {
	err := &Error{Kind: kind, Message: message}
	if field != "" {
		err.Fields = map[string][]string{field: {message}}
	}
	return err
}

func Authentication(message string) *Error {
	return newError(KindAuthentication, message, "")
}

func Authorization(message string) *Error {
	return newError(KindAuthorization, message, "")
}

func Validation(field, message string) *Error {
	return newError(KindValidation, message, field)
}

func Conflict(field, message string) *Error {
	return newError(KindConflict, message, field)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, message, "")
}

func InvalidState(field, message string) *Error {
	return newError(KindInvalidState, message, field)
}

// KindOf reports the taxonomy kind of err, or KindUnknown for errors that
// did not originate in the domain layer.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
