package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure.
type ErrorKind string

// Error kinds raised by the booking logic.
const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindAuthorization ErrorKind = "authorization"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrAuthorization = &Error{Kind: KindAuthorization}
)

// Error is the tagged failure returned by the logic layer. Message is the
// human-readable text; the remaining fields carry structured context.
type Error struct {
	Kind    ErrorKind
	Entity  EntityType
	ID      string
	Field   string
	Limit   int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Entity != "" && e.ID != "" {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Kind)
	}
	return string(e.Kind)
}

// Is reports whether target is a kind sentinel (or any *Error) of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// Validation builds a validation failure for field.
func Validation(entity EntityType, field, message string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Field: field, Message: message}
}

// NotFound builds a lookup failure for the given entity id.
func NotFound(entity EntityType, id, message string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: message}
}

// Conflict builds a uniqueness or capacity failure.
func Conflict(entity EntityType, id, message string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Message: message}
}

// Unauthorized builds an ownership failure.
func Unauthorized(entity EntityType, id, message string) *Error {
	return &Error{Kind: KindAuthorization, Entity: entity, ID: id, Message: message}
}
