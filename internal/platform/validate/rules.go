// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"
)

// DefaultPasswordMin is the minimum password length when [PasswordOptions.Min] is unset.
const DefaultPasswordMin = 8

// subject is the message subject used by the free-standing rules.
const subject = "Value"

var (
	// emailRegex: the local part starts with a letter or digit and allows single
	// interior dots; the domain needs at least one dot and a 2+ letter top-level label.
	emailRegex = regexp.MustCompile("^[a-zA-Z0-9](\\.?[a-zA-Z0-9!#$%&'*+\\-/=?^_`{|}~])*@[a-zA-Z0-9-]+(\\.[a-zA-Z0-9-]+)*\\.[a-zA-Z]{2,}$")

	upperRegex   = regexp.MustCompile(`[A-Z]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	numberRegex  = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[^0-9A-Za-z\s]`)
)

// PasswordOptions tunes [IsPassword]. The zero value is the default policy:
// at least 8 characters, no upper bound, and one character of every class.
type PasswordOptions struct {
	// Min is the minimum length. Values below 1 fall back to DefaultPasswordMin.
	Min int
	// Max is the maximum length. Zero means unbounded.
	Max int

	NoUpper   bool
	NoLower   bool
	NoNumber  bool
	NoSpecial bool
}

// # Free-standing rules

// Required fails for nil and the empty string. false and 0 are present values.
func Required(value any) Verdict { return requiredRule(subject)(value) }

// IsEmail fails unless the string form of value is a well-formed email address.
func IsEmail(value any) Verdict { return emailRule()(value) }

// HasUpper fails unless value contains an uppercase ASCII letter.
func HasUpper(value any) Verdict { return upperRule(subject)(value) }

// HasLower fails unless value contains a lowercase ASCII letter.
func HasLower(value any) Verdict { return lowerRule(subject)(value) }

// HasNumber fails unless value contains a digit.
func HasNumber(value any) Verdict { return numberRule(subject)(value) }

// HasSpecial fails unless value contains a character that is neither
// alphanumeric nor whitespace.
func HasSpecial(value any) Verdict { return specialRule(subject)(value) }

// Accepted fails unless value is an explicit consent (true, "true" or "on").
func Accepted(value any) Verdict { return acceptedRule(subject)(value) }

// Min compares string length (in characters) or numeric value against n.
// Other types pass.
func Min(n int) Rule { return minRule(subject, n) }

// Max compares string length (in characters) or numeric value against n.
// Other types pass.
func Max(n int) Rule { return maxRule(subject, n) }

// Matches fails unless value strictly equals other.
func Matches(other any) Rule { return matchesRule(subject, other, "") }

// IsPassword composes the length and character-class rules described by opts.
// Messages of every failing sub-rule are concatenated.
func IsPassword(opts PasswordOptions) Rule { return passwordRule(subject, opts) }

// # Rule constructors bound to a message subject

func requiredRule(name string) Rule {
	return func(value any) Verdict {
		if isAbsent(value) {
			return fail(name + " is required")
		}
		return pass()
	}
}

func emailRule() Rule {
	return func(value any) Verdict {
		if !emailRegex.MatchString(stringOf(value)) {
			return fail("Invalid email address")
		}
		return pass()
	}
}

func upperRule(name string) Rule {
	return patternRule(upperRegex, name+" must contain an uppercase character")
}

func lowerRule(name string) Rule {
	return patternRule(lowerRegex, name+" must contain a lowercase character")
}

func numberRule(name string) Rule {
	return patternRule(numberRegex, name+" must contain a number")
}

func specialRule(name string) Rule {
	return patternRule(specialRegex, name+" must contain a special character")
}

func patternRule(pattern *regexp.Regexp, message string) Rule {
	return func(value any) Verdict {
		if !pattern.MatchString(stringOf(value)) {
			return fail(message)
		}
		return pass()
	}
}

func acceptedRule(name string) Rule {
	return func(value any) Verdict {
		switch v := value.(type) {
		case bool:
			if v {
				return pass()
			}
		case string:
			if v == "true" || v == "on" {
				return pass()
			}
		}
		return fail(name + " must be accepted")
	}
}

func minRule(name string, n int) Rule {
	return func(value any) Verdict {
		if text, ok := value.(string); ok {
			if utf8.RuneCountInString(text) < n {
				return fail(fmt.Sprintf("%s must be at least %d %s", name, n, characters(n)))
			}
			return pass()
		}
		if number, ok := numberOf(value); ok && number < float64(n) {
			return fail(fmt.Sprintf("%s must be at least %d", name, n))
		}
		return pass()
	}
}

func maxRule(name string, n int) Rule {
	return func(value any) Verdict {
		if text, ok := value.(string); ok {
			if utf8.RuneCountInString(text) > n {
				return fail(fmt.Sprintf("%s must not be greater than %d %s", name, n, characters(n)))
			}
			return pass()
		}
		if number, ok := numberOf(value); ok && number > float64(n) {
			return fail(fmt.Sprintf("%s must not be greater than %d", name, n))
		}
		return pass()
	}
}

// matchesRule compares against other. When otherName is set it is appended to the message.
func matchesRule(name string, other any, otherName string) Rule {
	message := name + " does not match"
	if otherName != "" {
		message += " " + otherName
	}
	return func(value any) Verdict {
		if !strictEqual(value, other) {
			return fail(message)
		}
		return pass()
	}
}

func passwordRule(name string, opts PasswordOptions) Rule {
	if opts.Min < 1 {
		opts.Min = DefaultPasswordMin
	}

	rules := []Rule{minRule(name, opts.Min)}
	if opts.Max > 0 {
		rules = append(rules, maxRule(name, opts.Max))
	}
	if !opts.NoUpper {
		rules = append(rules, upperRule(name))
	}
	if !opts.NoLower {
		rules = append(rules, lowerRule(name))
	}
	if !opts.NoNumber {
		rules = append(rules, numberRule(name))
	}
	if !opts.NoSpecial {
		rules = append(rules, specialRule(name))
	}

	return func(value any) Verdict {
		result := pass()
		for _, rule := range rules {
			verdict := RunRule(rule, value)
			result.IsValid = result.IsValid && verdict.IsValid
			result.Errors = append(result.Errors, verdict.Errors...)
		}
		return result
	}
}

// # Coercion helpers

func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	text, ok := value.(string)
	return ok && text == ""
}

// stringOf coerces value for pattern rules. nil becomes the empty string.
func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// numberOf reports the numeric value of any Go number type.
func numberOf(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// strictEqual compares without type coercion. Numbers of different Go types
// compare by value so a decoded float64 equals an int literal.
func strictEqual(a, b any) bool {
	if x, ok := numberOf(a); ok {
		y, ok := numberOf(b)
		return ok && x == y
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	typeA := reflect.TypeOf(a)
	if typeA != reflect.TypeOf(b) || !typeA.Comparable() {
		return false
	}
	return a == b
}

func characters(n int) string {
	if n == 1 {
		return "character"
	}
	return "characters"
}
