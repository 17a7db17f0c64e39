package validation

import "testing"

func TestValidateCollectsFirstFailurePerField(t *testing.T) {
	rules := map[string][]Rule{
		"name":  {Required()},
		"price": {Required(), NumericPositive()},
	}
	fields := map[string]string{
		"name":  "  ",
		"price": "",
	}

	errs := Validate(fields, rules)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs["name"] != "is required" {
		t.Fatalf("unexpected name error: %q", errs["name"])
	}
	// Required fails first; NumericPositive never runs.
	if errs["price"] != "is required" {
		t.Fatalf("unexpected price error: %q", errs["price"])
	}
}

func TestValidatePassesCleanInput(t *testing.T) {
	rules := map[string][]Rule{
		"name":  {Required()},
		"email": {Required(), Email()},
		"price": {Required(), NumericPositive()},
	}
	fields := map[string]string{
		"name":  "Aisha Khan",
		"email": "aisha@example.com",
		"price": "19.99",
	}

	if errs := Validate(fields, rules); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestNumericPositive(t *testing.T) {
	rule := NumericPositive()
	cases := []struct {
		in   string
		pass bool
	}{
		{"10", true},
		{"0.01", true},
		{"0", false},
		{"-5", false},
		{"abc", false},
		{"", false},
	}
	for _, tc := range cases {
		msg := rule(tc.in)
		if tc.pass && msg != "" {
			t.Fatalf("expected %q to pass, got %q", tc.in, msg)
		}
		if !tc.pass && msg == "" {
			t.Fatalf("expected %q to fail", tc.in)
		}
	}
}

func TestEmail(t *testing.T) {
	rule := Email()
	valid := []string{"user@example.com", "a.b+c@sub.domain.org"}
	invalid := []string{"", "plain", "user@", "@example.com", "user@domain", "two words@example.com"}

	for _, in := range valid {
		if msg := rule(in); msg != "" {
			t.Fatalf("expected %q valid, got %q", in, msg)
		}
	}
	for _, in := range invalid {
		if msg := rule(in); msg == "" {
			t.Fatalf("expected %q invalid", in)
		}
	}
}

func TestPhone(t *testing.T) {
	rule := Phone(7)
	valid := []string{"0301-2345678", "+92 300 1234567", "(042) 3576 1234"}
	invalid := []string{"", "12345", "phone", "03o1-2345678"}

	for _, in := range valid {
		if msg := rule(in); msg != "" {
			t.Fatalf("expected %q valid, got %q", in, msg)
		}
	}
	for _, in := range invalid {
		if msg := rule(in); msg == "" {
			t.Fatalf("expected %q invalid", in)
		}
	}
}
