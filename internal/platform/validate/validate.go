// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate turns raw, untyped form values into either accepted values or
// field-scoped error feedback, with zero side effects.
//
// # Architecture
//
// The package has three layers:
//   - Rules: pure predicates ([Rule]) returning a [Verdict]. They never panic, even
//     for absent input, and leave the "is it required" question to [Required].
//   - [FieldValidator]: an immutable per-field accumulator. Each rule category owns one
//     error bucket, so re-running a category replaces its messages instead of stacking them.
//   - [Batch]: the request-local set of field validators for one submission.
//
// Nothing in this package holds shared mutable state; it is safe to use from many
// requests at once as long as each request builds its own [Batch].
package validate

import (
	"github.com/taibuivan/accounts/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Verdict is the outcome of one or more rules applied to a value.
type Verdict struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Rule is a pure predicate over an arbitrary value.
type Rule func(value any) Verdict

// RunRule invokes a single rule. A nil rule accepts everything.
func RunRule(rule Rule, value any) Verdict {
	if rule == nil {
		return pass()
	}
	verdict := rule(value)
	if verdict.Errors == nil {
		verdict.Errors = []string{}
	}
	return verdict
}

// RunAll folds the verdicts of rules with a logical AND on validity and an
// insertion-ordered, duplicate-free union of messages. No rules means valid.
func RunAll(value any, rules ...Rule) Verdict {
	result := pass()
	for _, rule := range rules {
		verdict := RunRule(rule, value)
		result.IsValid = result.IsValid && verdict.IsValid
		result.Errors = appendUnique(result.Errors, verdict.Errors...)
	}
	return result
}

func pass() Verdict {
	return Verdict{IsValid: true, Errors: []string{}}
}

func fail(messages ...string) Verdict {
	return Verdict{IsValid: false, Errors: messages}
}

// appendUnique appends the messages of src that are not already in dst.
func appendUnique(dst []string, src ...string) []string {
	for _, message := range src {
		seen := false
		for _, existing := range dst {
			if existing == message {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, message)
		}
	}
	return dst
}
