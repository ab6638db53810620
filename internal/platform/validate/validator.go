// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

// Rule categories. Each owns one error bucket on a [FieldValidator].
const (
	CategoryRequired = "required"
	CategoryMin      = "min"
	CategoryMax      = "max"
	CategoryMatches  = "matches"
	CategoryEmail    = "isEmail"
	CategoryPassword = "isPassword"
	CategoryUpper    = "hasUpper"
	CategoryLower    = "hasLower"
	CategoryNumber   = "hasNumber"
	CategorySpecial  = "hasSpecial"
	CategoryAccepted = "accepted"
)

// FieldValidator accumulates rule results for one field.
//
// # Immutability
//
// Every rule method returns a new FieldValidator and leaves the receiver untouched,
// so a validator can be shared or re-derived without hidden mutation:
//
//	password := validate.NewField("password", input).Required().IsPassword(validate.PasswordOptions{})
//
// # Precedence
//
// When the required rule fails, its message is the only one surfaced; detail
// messages (e.g. password complexity) are hidden for an empty field.
type FieldValidator struct {
	name    string
	value   any
	buckets []bucket
	errors  []string
	valid   bool
}

type bucket struct {
	category string
	valid    bool
	errors   []string
}

// NewField creates a validator for a named value. A nil value means "absent".
func NewField(name string, value any) FieldValidator {
	return FieldValidator{name: name, value: value, errors: []string{}, valid: true}
}

// Name returns the field name used as the message subject.
func (f FieldValidator) Name() string { return f.name }

// Value returns the value under validation.
func (f FieldValidator) Value() any { return f.value }

// Text returns the value coerced to a string (nil becomes "").
func (f FieldValidator) Text() string { return stringOf(f.value) }

// IsValid reports whether every applied category passed.
func (f FieldValidator) IsValid() bool { return f.valid }

// Errors returns the surfaced, duplicate-free messages.
func (f FieldValidator) Errors() []string {
	return append([]string(nil), f.errors...)
}

// # Rule categories

// Required fails for an absent or empty value.
func (f FieldValidator) Required() FieldValidator {
	return f.Apply(CategoryRequired, requiredRule(f.name))
}

// Min checks string length or numeric value against n.
func (f FieldValidator) Min(n int) FieldValidator {
	return f.Apply(CategoryMin, minRule(f.name, n))
}

// Max checks string length or numeric value against n.
func (f FieldValidator) Max(n int) FieldValidator {
	return f.Apply(CategoryMax, maxRule(f.name, n))
}

// Matches requires strict equality with a literal value.
func (f FieldValidator) Matches(value any) FieldValidator {
	return f.Apply(CategoryMatches, matchesRule(f.name, value, ""))
}

// MatchesField requires strict equality with another field's current value.
// The other field's name is included in the message.
func (f FieldValidator) MatchesField(other FieldValidator) FieldValidator {
	return f.Apply(CategoryMatches, matchesRule(f.name, other.value, other.name))
}

// IsEmail requires a well-formed email address.
func (f FieldValidator) IsEmail() FieldValidator {
	return f.Apply(CategoryEmail, emailRule())
}

// IsPassword applies the password policy described by opts.
func (f FieldValidator) IsPassword(opts PasswordOptions) FieldValidator {
	return f.Apply(CategoryPassword, passwordRule(f.name, opts))
}

// HasUpper requires an uppercase letter.
func (f FieldValidator) HasUpper() FieldValidator {
	return f.Apply(CategoryUpper, upperRule(f.name))
}

// HasLower requires a lowercase letter.
func (f FieldValidator) HasLower() FieldValidator {
	return f.Apply(CategoryLower, lowerRule(f.name))
}

// HasNumber requires a digit.
func (f FieldValidator) HasNumber() FieldValidator {
	return f.Apply(CategoryNumber, numberRule(f.name))
}

// HasSpecial requires a non-alphanumeric, non-space character.
func (f FieldValidator) HasSpecial() FieldValidator {
	return f.Apply(CategorySpecial, specialRule(f.name))
}

// Accepted requires an explicit consent value.
func (f FieldValidator) Accepted() FieldValidator {
	return f.Apply(CategoryAccepted, acceptedRule(f.name))
}

// Apply runs rule and stores its messages under category, replacing whatever
// that category held before.
//
// # Example
//
//	field.Apply("username", func(v any) validate.Verdict { ... })
func (f FieldValidator) Apply(category string, rule Rule) FieldValidator {
	verdict := RunRule(rule, f.value)
	staged := bucket{
		category: category,
		valid:    verdict.IsValid && len(verdict.Errors) == 0,
		errors:   appendUnique(nil, verdict.Errors...),
	}

	next := f
	next.buckets = make([]bucket, 0, len(f.buckets)+1)
	replaced := false
	for _, existing := range f.buckets {
		if existing.category == category {
			next.buckets = append(next.buckets, staged)
			replaced = true
			continue
		}
		next.buckets = append(next.buckets, existing)
	}
	if !replaced {
		next.buckets = append(next.buckets, staged)
	}

	next.recompute()
	return next
}

// recompute derives the validity and the surfaced messages from the buckets.
func (f *FieldValidator) recompute() {
	f.valid = true
	f.errors = []string{}

	for _, b := range f.buckets {
		if !b.valid {
			f.valid = false
		}
		if b.category == CategoryRequired && !b.valid {
			f.errors = append([]string{}, b.errors...)
			return
		}
	}

	for _, b := range f.buckets {
		f.errors = appendUnique(f.errors, b.errors...)
	}
}
