package handler

import "testing"

func TestSigninFormValidate(t *testing.T) {
	cases := []struct {
		name     string
		form     signinForm
		ok       bool
		errField string
	}{
		{"valid", signinForm{Email: "ada@firm.example", Password: "secret1"}, true, ""},
		{"missing email", signinForm{Password: "secret1"}, false, "email"},
		{"malformed email", signinForm{Email: "ada@firm", Password: "secret1"}, false, "email"},
		{"missing password", signinForm{Email: "ada@firm.example"}, false, "password"},
		{"short password", signinForm{Email: "ada@firm.example", Password: "abc"}, false, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.form.validate()
			if got != tc.ok {
				t.Fatalf("expected valid=%v, got %v (errors: %v)", tc.ok, got, tc.form.FieldErrors)
			}
			if tc.errField != "" && tc.form.FieldErrors[tc.errField] == "" {
				t.Fatalf("expected field error on %q, got %v", tc.errField, tc.form.FieldErrors)
			}
		})
	}
}

func TestSignupFormValidate(t *testing.T) {
	valid := signupForm{
		Name:            "Ada Lovelace",
		Email:           "ada@firm.example",
		Password:        "Sup3r!pass",
		ConfirmPassword: "Sup3r!pass",
	}
	if !valid.validate() {
		t.Fatalf("expected valid form, got errors: %v", valid.FieldErrors)
	}

	cases := []struct {
		name     string
		mutate   func(f *signupForm)
		errField string
	}{
		{"empty name", func(f *signupForm) { f.Name = "  " }, "name"},
		{"name with digits", func(f *signupForm) { f.Name = "Ada 2nd" }, "name"},
		{"bad email", func(f *signupForm) { f.Email = "ada@firm" }, "email"},
		{"short password", func(f *signupForm) { f.Password, f.ConfirmPassword = "S3!a", "S3!a" }, "password"},
		{"no uppercase", func(f *signupForm) { f.Password, f.ConfirmPassword = "sup3r!pass", "sup3r!pass" }, "password"},
		{"no digit", func(f *signupForm) { f.Password, f.ConfirmPassword = "Super!pass", "Super!pass" }, "password"},
		{"no symbol", func(f *signupForm) { f.Password, f.ConfirmPassword = "Sup3rpass", "Sup3rpass" }, "password"},
		{"mismatch", func(f *signupForm) { f.ConfirmPassword = "Sup3r!other" }, "confirm_password"},
		{"missing confirm", func(f *signupForm) { f.ConfirmPassword = "" }, "confirm_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := valid
			tc.mutate(&form)
			if form.validate() {
				t.Fatalf("expected validation failure")
			}
			if form.FieldErrors[tc.errField] == "" {
				t.Fatalf("expected field error on %q, got %v", tc.errField, form.FieldErrors)
			}
		})
	}
}

func TestSignupNameAllowsHyphens(t *testing.T) {
	form := signupForm{
		Name:            "Anne-Marie Smith-Jones",
		Email:           "am@firm.example",
		Password:        "Sup3r!pass",
		ConfirmPassword: "Sup3r!pass",
	}
	if !form.validate() {
		t.Fatalf("expected hyphenated name to pass, got errors: %v", form.FieldErrors)
	}
}
