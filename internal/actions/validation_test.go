// internal/actions/validation_test.go
package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "riverside-client/internal/common/errors"
)

// ==========================
// Sanitization Tests
// ==========================

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "clean input untouched", input: "admin", expected: "admin"},
		{name: "whitespace trimmed", input: "  admin  ", expected: "admin"},
		{name: "angle brackets stripped", input: "<admin>", expected: "admin"},
		{name: "quotes stripped", input: `ad"mi'n`, expected: "admin"},
		{name: "ampersand and slashes stripped", input: `a&d/m\in`, expected: "admin"},
		{name: "interior whitespace kept", input: "ad min", expected: "ad min"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

// ==========================
// Credential Validation Tests
// ==========================

func TestValidateCredentials_Success(t *testing.T) {
	u, p, err := ValidateCredentials("admin", "admin", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "admin", u)
	assert.Equal(t, "admin", p)
}

func TestValidateCredentials_SanitizesBeforeComparing(t *testing.T) {
	u, p, err := ValidateCredentials("  <admin>  ", `"admin"`, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "admin", u)
	assert.Equal(t, "admin", p)
}

func TestValidateCredentials_MarkupIsCleanedNotRejected(t *testing.T) {
	// Stripping removes the angle brackets first, so a tag never reaches
	// the blacklist; what remains is judged as ordinary text.
	u, p, err := ValidateCredentials("<script>alert", "admin", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "scriptalert", u)
	assert.Equal(t, "admin", p)
}

func TestValidateCredentials_LengthRules(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "short username", username: "ab", password: "admin"},
		{name: "short password", username: "admin", password: "ab"},
		{name: "both empty", username: "", password: ""},
		{name: "length only after sanitization", username: `<a>b`, password: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateCredentials(tt.username, tt.password, 3, 3)
			require.Error(t, err)

			var ce *cerrors.ClientError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, cerrors.ErrCodeValidationFailed, ce.Code)
			assert.True(t, ce.Recoverable)
		})
	}
}

func TestValidateCredentials_DangerousInput(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "javascript url", username: "javascript:alert(1)", password: "admin"},
		{name: "javascript url case insensitive", username: "JaVaScRiPt:alert(1)", password: "admin"},
		{name: "event handler", username: "x onerror=alert(1)", password: "admin"},
		{name: "data url", username: "data:text;base64,x", password: "admin"},
		{name: "vbscript url", username: "vbscript:msgbox", password: "admin"},
		{name: "dangerous password", username: "admin", password: "javascript:x"},
		{name: "pattern assembled by stripping", username: "admin", password: "java/script:x"},
		{name: "event handler assembled by stripping", username: "x on\\error=1", password: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateCredentials(tt.username, tt.password, 3, 3)
			require.Error(t, err)

			var ce *cerrors.ClientError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, cerrors.ErrCodeDangerousInput, ce.Code)
		})
	}
}
