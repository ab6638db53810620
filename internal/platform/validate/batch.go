// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"encoding/json"
	"sort"

	"github.com/taibuivan/accounts/internal/platform/apperr"
)

// Validity is the aggregate outcome of a [Batch].
type Validity struct {
	IsValid          bool                `json:"isValid"`
	ValidationErrors map[string][]string `json:"validationErrors"`
}

// Batch holds the field validators of one form submission.
//
// # Concurrency
//
// Batch is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Batch struct {
	order  []string
	fields map[string]FieldValidator
}

// BuildBatch creates a validator for every submitted value and for every
// expected field. Expected fields missing from values are seeded as absent;
// fields marked required get the required rule immediately. Submitted fields
// that were not expected are kept so they can be echoed back.
func BuildBatch(values map[string]any, expected ...FieldDescriptor) *Batch {
	batch := &Batch{fields: make(map[string]FieldValidator, len(values)+len(expected))}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		batch.put(NewField(key, values[key]))
	}

	for _, descriptor := range expected {
		name := descriptor.CanonicalName
		field, ok := batch.fields[name]
		if !ok {
			field = NewField(name, nil)
		}
		if descriptor.IsRequired {
			field = field.Required()
		}
		batch.put(field)
	}

	return batch
}

// Scalars reports whether every expected field present in values is absent or
// holds a string, a bool or a number. Lists and objects under an expected name
// are input-shape errors and must be refused before [BuildBatch] runs any rule.
func Scalars(values map[string]any, expected ...FieldDescriptor) bool {
	for _, descriptor := range expected {
		if !isScalar(values[descriptor.CanonicalName]) {
			return false
		}
	}
	return true
}

func isScalar(value any) bool {
	switch value.(type) {
	case nil, string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// Field returns the validator registered under name.
func (b *Batch) Field(name string) (FieldValidator, bool) {
	field, ok := b.fields[name]
	return field, ok
}

// Update replaces the validator under name with fn's result. An unknown name
// starts from an absent value.
//
// # Example
//
//	batch.Update("email", validate.FieldValidator.IsEmail)
func (b *Batch) Update(name string, fn func(FieldValidator) FieldValidator) *Batch {
	field, ok := b.fields[name]
	if !ok {
		field = NewField(name, nil)
	}
	b.put(fn(field))
	return b
}

// Names lists field names in registration order.
func (b *Batch) Names() []string {
	return append([]string(nil), b.order...)
}

// Validity aggregates the error lists of the invalid fields only.
func (b *Batch) Validity() Validity {
	errors := make(map[string][]string)
	for _, name := range b.order {
		field := b.fields[name]
		if !field.IsValid() {
			errors[name] = field.Errors()
		}
	}
	return Validity{IsValid: len(errors) == 0, ValidationErrors: errors}
}

// Values extracts the current value of every field, for re-populating a form.
func (b *Batch) Values() map[string]any {
	values := make(map[string]any, len(b.fields))
	for name, field := range b.fields {
		values[name] = field.Value()
	}
	return values
}

// Echo is [Batch.Values] with the fields listed in redact blanked, for
// sending a form back to the client without secrets.
func (b *Batch) Echo(redact ...string) map[string]any {
	values := b.Values()
	for _, name := range redact {
		if _, ok := values[name]; ok {
			values[name] = ""
		}
	}
	return values
}

// Err returns a field-scoped [apperr.AppError] when any field is invalid, or nil.
//
// Password-like fields listed in redact are blanked in the echoed values.
func (b *Batch) Err(redact ...string) error {
	validity := b.Validity()
	if validity.IsValid {
		return nil
	}
	return apperr.Invalid(validity.ValidationErrors, b.Echo(redact...))
}

func (b *Batch) put(field FieldValidator) {
	if _, ok := b.fields[field.Name()]; !ok {
		b.order = append(b.order, field.Name())
	}
	b.fields[field.Name()] = field
}
