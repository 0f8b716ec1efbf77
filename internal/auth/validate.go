package auth

import (
	"regexp"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,20}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
	hasSpecial      = regexp.MustCompile(`[@$!%*#?&]`)
)

func ValidateEmail(email string) error {
	v := validation.Errors{}
	checkEmail(v, email)
	return v.Err()
}

func ValidateLogin(email, password string) error {
	v := validation.Errors{}
	checkEmail(v, email)
	if strings.TrimSpace(password) == "" {
		v["password"] = "required"
	}
	return v.Err()
}

func ValidateRegistration(name, email, password, confirm string) error {
	v := validation.Errors{}
	if strings.TrimSpace(name) == "" {
		v["name"] = "required"
	}
	checkEmail(v, email)

	switch {
	case password == "":
		v["password"] = "required"
	case !validPassword(password):
		v["password"] = "must be 8-20 characters with a letter, a digit and one of @$!%*#?&"
	}

	if confirm == "" {
		v["confirmPassword"] = "required"
	} else if password != confirm {
		v["confirmPassword"] = "passwords do not match"
	}
	return v.Err()
}

func checkEmail(v validation.Errors, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		v["email"] = "required"
		return
	}
	if !emailPattern.MatchString(email) {
		v["email"] = "invalid email"
	}
}

func validPassword(p string) bool {
	return passwordCharset.MatchString(p) &&
		hasLetter.MatchString(p) &&
		hasDigit.MatchString(p) &&
		hasSpecial.MatchString(p)
}
