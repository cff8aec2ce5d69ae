// Package common holds the error taxonomy, validation rules, and HTTP
// plumbing shared by every domain package.
package common

import (
	"errors"
	"fmt"
)

// The domain error sentinels. Repositories translate store errors into
// these; handlers translate them into status codes. Nothing in between
// inspects driver errors.
var (
	// ErrNotFound covers both the genuinely absent and the hidden: a post
	// the viewer may not see reports not-found, never forbidden.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a uniqueness violation, usually a lost race on an
	// index like the (user, post) save constraint.
	ErrConflict = errors.New("conflict")

	ErrValidation = errors.New("validation failed")

	// ErrPartialMutation reports a multi-document write that landed on one
	// side only. The message names the side that failed; nothing is rolled
	// back.
	ErrPartialMutation = errors.New("partial mutation")
)

// RequiredField builds the validation error for a missing required field.
func RequiredField(name string) error {
	return fmt.Errorf("%s is required: %w", name, ErrValidation)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
