// Package actions implements the user-facing flows: login and logout,
// downloads, loader launches and update checks. Each flow simulates its
// backend latency with a scheduled timer so the UI stages can be observed.
package actions

import (
	"fmt"
	"regexp"
	"strings"

	cerrors "riverside-client/internal/common/errors"
)

var (
	// unsafeChars are stripped before credentials are compared or stored.
	unsafeChars = regexp.MustCompile(`[<>"'&/\\]`)

	// dangerousPatterns reject input outright instead of cleaning it.
	dangerousPatterns = regexp.MustCompile(`(?i)<script|javascript:|on\w+=|data:|vbscript:`)
)

// Sanitize trims whitespace and strips markup-significant characters.
func Sanitize(input string) string {
	return unsafeChars.ReplaceAllString(strings.TrimSpace(input), "")
}

// ValidateCredentials sanitizes both fields and checks shape. The blacklist
// runs on the sanitized values, so stripping cannot assemble a dangerous
// pattern that the raw input hid. Injection attempts fail with
// DANGEROUS_INPUT before any length rule is applied. The returned values are
// the sanitized pair to compare and store.
func ValidateCredentials(username, password string, minUser, minPass int) (string, string, error) {
	u := Sanitize(username)
	p := Sanitize(password)

	if dangerousPatterns.MatchString(u) {
		return "", "", cerrors.NewDangerousInputError("username")
	}
	if dangerousPatterns.MatchString(p) {
		return "", "", cerrors.NewDangerousInputError("password")
	}

	if len(u) < minUser {
		return "", "", cerrors.NewValidationError(fmt.Sprintf("Username must be at least %d characters", minUser))
	}
	if len(p) < minPass {
		return "", "", cerrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPass))
	}
	return u, p, nil
}
