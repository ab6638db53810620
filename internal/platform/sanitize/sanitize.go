// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sanitize cleans untrusted form input before it is validated,
// stored or echoed back to a client.
//
// Every string leaf loses its markup, is normalized to Unicode NFC and is
// trimmed. Stray angle brackets that survive are escaped, while ampersands and
// quotes are left untouched so that ordinary text keeps its meaning.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Cleaner strips markup from values. It is safe for concurrent use.
type Cleaner struct {
	policy *bluemonday.Policy
	raw    map[string]struct{}
}

// New creates a Cleaner. Top-level keys listed in raw (typically passwords)
// are passed through untouched.
func New(raw ...string) *Cleaner {
	keep := make(map[string]struct{}, len(raw))
	for _, key := range raw {
		keep[key] = struct{}{}
	}
	return &Cleaner{policy: bluemonday.StrictPolicy(), raw: keep}
}

// String cleans a single string.
func (c *Cleaner) String(value string) string {
	stripped := html.UnescapeString(c.policy.Sanitize(value))
	return strings.TrimSpace(angleEscaper.Replace(norm.NFC.String(stripped)))
}

// Clean walks value and cleans every string it finds in maps and slices.
// Other types are returned as-is.
func (c *Cleaner) Clean(value any) any {
	switch v := value.(type) {
	case string:
		return c.String(v)
	case []string:
		cleaned := make([]string, len(v))
		for i, item := range v {
			cleaned[i] = c.String(item)
		}
		return cleaned
	case []any:
		cleaned := make([]any, len(v))
		for i, item := range v {
			cleaned[i] = c.Clean(item)
		}
		return cleaned
	case map[string]any:
		cleaned := make(map[string]any, len(v))
		for key, item := range v {
			cleaned[key] = c.Clean(item)
		}
		return cleaned
	default:
		return value
	}
}

// Map cleans a submitted form into a new map. A nil form stays nil.
func (c *Cleaner) Map(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}

	cleaned := make(map[string]any, len(values))
	for key, value := range values {
		if _, ok := c.raw[key]; ok {
			cleaned[key] = value
			continue
		}
		cleaned[key] = c.Clean(value)
	}
	return cleaned
}
