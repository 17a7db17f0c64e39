package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// The gate is pure: it inspects submitted form fields and reports problems.
// Callers block submission whenever the returned map is non-empty.

// Rule checks a single field value and returns an error message, or "" when
// the value passes.
type Rule func(value string) string

// Errors maps field name to the first failing rule's message.
type Errors map[string]string

// Validate runs every rule against its field and collects failures. A field
// stops at its first failing rule.
func Validate(fields map[string]string, rules map[string][]Rule) Errors {
	errs := Errors{}
	for field, fieldRules := range rules {
		value := fields[field]
		for _, rule := range fieldRules {
			if msg := rule(value); msg != "" {
				errs[field] = msg
				break
			}
		}
	}
	return errs
}

// Required rejects empty or whitespace-only values.
func Required() Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "is required"
		}
		return ""
	}
}

// NumericPositive rejects values that do not parse to a number greater than
// zero.
func NumericPositive() Rule {
	return func(value string) string {
		parsed, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return "must be a number"
		}
		if parsed.Sign() <= 0 {
			return "must be greater than zero"
		}
		return ""
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email rejects values that do not look like an email address.
func Email() Rule {
	return func(value string) string {
		if !emailPattern.MatchString(strings.TrimSpace(value)) {
			return "must be a valid email"
		}
		return ""
	}
}

var phoneAllowed = regexp.MustCompile(`^[0-9()+\-. ]+$`)

// Phone accepts digits with common punctuation and requires at least
// minDigits digits.
func Phone(minDigits int) Rule {
	return func(value string) string {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || !phoneAllowed.MatchString(trimmed) {
			return "must be a valid phone number"
		}
		digits := 0
		for _, r := range trimmed {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < minDigits {
			return "must be a valid phone number"
		}
		return ""
	}
}
