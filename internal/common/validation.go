package common

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
)

// ValidateAlias checks the public handle users are addressed by. Aliases are
// case-normalized to lower case before they hit the store.
func ValidateAlias(alias string) error {
	alias = strings.TrimSpace(alias)
	if len(alias) < 3 || len(alias) > 50 {
		return fmt.Errorf("alias must be between 3 and 50 characters: %w", ErrValidation)
	}

	if !aliasRegex.MatchString(alias) {
		return fmt.Errorf("alias can only contain letters, numbers, dots and underscores: %w", ErrValidation)
	}

	return nil
}

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %w", ErrValidation)
	}

	return nil
}

// NormalizeAlias is applied on every alias write so uniqueness is
// case-insensitive.
func NormalizeAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}
