// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"strings"

	"github.com/taibuivan/accounts/pkg/uuid"
)

// RequiredMarker suffixes a declared field name to mark it as required.
const RequiredMarker = "*"

// placeholderPrefix names fields whose declaration was empty.
const placeholderPrefix = "no-name-"

// FieldDescriptor is the normalized form of one expected-field declaration.
type FieldDescriptor struct {
	RawName       string
	CanonicalName string
	IsRequired    bool
}

// WithRequired overrides the requirement derived from the marker.
func (d FieldDescriptor) WithRequired(required bool) FieldDescriptor {
	d.IsRequired = required
	return d
}

// NormalizeFieldName derives a [FieldDescriptor] from a raw declaration such as "email*".
//
// # Rules
//   - A single trailing [RequiredMarker] (after trimming) marks the field required and is removed.
//   - Runs of whitespace collapse into a single "-".
//   - An empty or marker-only name becomes a unique "no-name-<uuid>" placeholder.
func NormalizeFieldName(raw string) FieldDescriptor {
	name := strings.TrimSpace(raw)

	isRequired := strings.HasSuffix(name, RequiredMarker)
	if isRequired {
		name = strings.TrimSuffix(name, RequiredMarker)
	}

	name = strings.Join(strings.Fields(name), "-")
	if name == "" {
		name = placeholderPrefix + uuid.New()
	}

	return FieldDescriptor{RawName: raw, CanonicalName: name, IsRequired: isRequired}
}

// Expect normalizes several declarations at once.
//
// # Example
//
//	validate.BuildBatch(values, validate.Expect("email*", "password*", "nickname")...)
func Expect(raw ...string) []FieldDescriptor {
	descriptors := make([]FieldDescriptor, 0, len(raw))
	for _, name := range raw {
		descriptors = append(descriptors, NormalizeFieldName(name))
	}
	return descriptors
}
