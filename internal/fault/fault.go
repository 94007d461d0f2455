// Package fault defines the two error tiers used across homedash.
//
// Store faults come from persistence mechanics: reading, parsing, writing
// and addressing records. Domain faults come from business rules: uniqueness,
// field bounds, permissions and household policies. A Kind doubles as a
// sentinel error so callers can write errors.Is(err, fault.NotFound) no
// matter how many times the fault was wrapped.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

func (k Kind) Error() string { return string(k) }

// Store fault kinds.
const (
	ParseError      Kind = "parse_error"
	ReadError       Kind = "read_error"
	WriteError      Kind = "write_error"
	NotFound        Kind = "not_found"
	InvalidArgument Kind = "invalid_argument"
	Unexpected      Kind = "unexpected"
)

// Domain fault kinds.
const (
	DuplicateKey          Kind = "duplicate_key"
	ValidationFailed      Kind = "validation_failed"
	Unauthorized          Kind = "unauthorized"
	BusinessRuleViolation Kind = "business_rule_violation"
)

// StoreError reports a persistence failure for one collection.
type StoreError struct {
	Kind       Kind
	Collection string
	Op         string
	ID         int64
	Err        error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Collection, e.Op, e.Kind)
	if e.ID != 0 {
		msg += fmt.Sprintf(" (id %d)", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Store builds a StoreError.
func Store(kind Kind, collection, op string, id int64, err error) *StoreError {
	return &StoreError{Kind: kind, Collection: collection, Op: op, ID: id, Err: err}
}

// DomainError reports a rejected business operation. Code is a stable
// machine-readable identifier such as "HOUSEHOLD_FULL"; Message is meant for
// the person at the keyboard.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func (e *DomainError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func Domain(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

func Duplicate(code, message string) *DomainError {
	return Domain(DuplicateKey, code, message)
}

func Validation(field, reason string) *DomainError {
	return Domain(ValidationFailed, "VALIDATION_FAILED", fmt.Sprintf("validation failed for %s: %s", field, reason))
}

func Forbidden(action string) *DomainError {
	return Domain(Unauthorized, "UNAUTHORIZED", fmt.Sprintf("you are not authorized to %s", action))
}

func Rule(code, message string) *DomainError {
	return Domain(BusinessRuleViolation, code, message)
}

// Missing is the domain-tier not-found, raised by services when a referenced
// entity does not exist.
func Missing(code, message string) *DomainError {
	return Domain(NotFound, code, message)
}

// IsStore reports whether err carries a store fault.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsDomain reports whether err carries a domain fault.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// KindOf returns the kind of the outermost fault in err's chain, or
// Unexpected when err is not a fault.
func KindOf(err error) Kind {
	var de *DomainError
	var se *StoreError
	switch {
	case errors.As(err, &de):
		return de.Kind
	case errors.As(err, &se):
		return se.Kind
	}
	return Unexpected
}

// CodeOf returns the domain code carried by err, if any.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
