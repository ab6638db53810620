// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/accounts/pkg/slice"
)

/*
TestMapFilter verifies order preservation and nil passthrough.
*/
func TestMapFilter(t *testing.T) {
	trimmed := slice.Map([]string{" a ", "", " b"}, strings.TrimSpace)
	assert.Equal(t, []string{"a", "", "b"}, trimmed)

	kept := slice.Filter(trimmed, func(s string) bool { return s != "" })
	assert.Equal(t, []string{"a", "b"}, kept)

	assert.Nil(t, slice.Map[string, string](nil, strings.TrimSpace))
	assert.Nil(t, slice.Filter[string](nil, func(string) bool { return true }))
}
