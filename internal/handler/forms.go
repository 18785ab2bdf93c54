package handler

import (
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	personNameRe    = regexp.MustCompile(`^[A-Za-z]+(?:[ -][A-Za-z]+)*$`)
	passwordLowerRe = regexp.MustCompile(`[a-z]`)
	passwordUpperRe = regexp.MustCompile(`[A-Z]`)
	passwordDigitRe = regexp.MustCompile(`\d`)
	passwordSymRe   = regexp.MustCompile(`[@$!%*?&]`)
)

// signinForm carries the sign-in fields and their inline errors. Validation
// runs before any backend call; a form with errors never leaves the gateway.
type signinForm struct {
	Email       string
	Password    string
	FormError   string
	FieldErrors map[string]string
}

func (f *signinForm) validate() bool {
	f.FieldErrors = map[string]string{}

	if f.Email == "" {
		f.FieldErrors["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		f.FieldErrors["email"] = "Please enter a valid email address"
	}

	if f.Password == "" {
		f.FieldErrors["password"] = "Password is required"
	} else if len(f.Password) < 6 {
		f.FieldErrors["password"] = "Password must be at least 6 characters"
	}

	return len(f.FieldErrors) == 0
}

type signupForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	FormError       string
	FieldErrors     map[string]string
}

// Sign-up is stricter than sign-in: new passwords must carry upper, lower,
// digit, and symbol; names are letters with spaces or hyphens only.
func (f *signupForm) validate() bool {
	f.FieldErrors = map[string]string{}

	if strings.TrimSpace(f.Name) == "" {
		f.FieldErrors["name"] = "Full name is required"
	} else if !personNameRe.MatchString(strings.TrimSpace(f.Name)) {
		f.FieldErrors["name"] = "Name may contain only letters, spaces, or hyphens"
	}

	if strings.TrimSpace(f.Email) == "" {
		f.FieldErrors["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		f.FieldErrors["email"] = "Please enter a valid email address"
	}

	switch {
	case f.Password == "":
		f.FieldErrors["password"] = "Password is required"
	case len(f.Password) < 8:
		f.FieldErrors["password"] = "Password must be at least 8 characters"
	case !passwordLowerRe.MatchString(f.Password),
		!passwordUpperRe.MatchString(f.Password),
		!passwordDigitRe.MatchString(f.Password),
		!passwordSymRe.MatchString(f.Password):
		f.FieldErrors["password"] = "Password must include uppercase, lowercase, number, and special character"
	}

	if f.ConfirmPassword == "" {
		f.FieldErrors["confirm_password"] = "Please confirm your password"
	} else if f.Password != f.ConfirmPassword {
		f.FieldErrors["confirm_password"] = "Passwords do not match"
	}

	return len(f.FieldErrors) == 0
}
