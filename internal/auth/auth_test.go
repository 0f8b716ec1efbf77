package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

func TestEffectiveRole(t *testing.T) {
	tests := map[string]struct {
		role    string
		want    string
		isAdmin bool
	}{
		"empty defaults to user": {role: "", want: RoleUser},
		"admin":                  {role: "ADMIN", want: RoleAdmin, isAdmin: true},
		"lowercase admin":        {role: " admin ", want: RoleAdmin, isAdmin: true},
		"user":                   {role: "USER", want: RoleUser},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			u := User{Role: tc.role}
			assert.Equal(t, tc.want, u.EffectiveRole())
			assert.Equal(t, tc.isAdmin, u.IsAdmin())
		})
	}
}

func TestValidateLogin(t *testing.T) {
	require.NoError(t, ValidateLogin("ana@example.com", "secret"))

	err := ValidateLogin("  ", "")
	var verr validation.Errors
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr["email"])
	assert.Equal(t, "required", verr["password"])

	err = ValidateLogin("not-an-email", "secret")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid email", verr["email"])
	assert.NotContains(t, verr, "password")
}

func TestValidateRegistration(t *testing.T) {
	tests := map[string]struct {
		name, email, password, confirm string
		badFields                      []string
	}{
		"valid":             {"Ana", "ana@example.com", "abc123!x", "abc123!x", nil},
		"missing name":      {"", "ana@example.com", "abc123!x", "abc123!x", []string{"name"}},
		"too short":         {"Ana", "ana@example.com", "ab1!", "ab1!", []string{"password"}},
		"too long":          {"Ana", "ana@example.com", "abcdefghij1234567890!", "abcdefghij1234567890!", []string{"password"}},
		"no special":        {"Ana", "ana@example.com", "abc12345", "abc12345", []string{"password"}},
		"no digit":          {"Ana", "ana@example.com", "abcdefg!", "abcdefg!", []string{"password"}},
		"illegal character": {"Ana", "ana@example.com", "abc123!x~", "abc123!x~", []string{"password"}},
		"mismatch":          {"Ana", "ana@example.com", "abc123!x", "abc123!y", []string{"confirmPassword"}},
		"bad email":         {"Ana", "ana@", "abc123!x", "abc123!x", []string{"email"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateRegistration(tc.name, tc.email, tc.password, tc.confirm)
			if len(tc.badFields) == 0 {
				require.NoError(t, err)
				return
			}

			var verr validation.Errors
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr, len(tc.badFields))
			for _, f := range tc.badFields {
				assert.Contains(t, verr, f)
			}
		})
	}
}
