// SPDX-License-Identifier: LGPL-3.0-or-later

package rfc6761

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalTest(t *testing.T) {
	testcases := map[string]string{
		"foo":       "foo.test.",
		"foo.":      "foo.test.",
		"FOO.bar":   "foo.bar.test.",
		"test.":     "test.",
		"":          ".test.",
		"foo.test.": "foo.test.",
	}

	for input, expected := range testcases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, CanonicalTest(input))
		})
	}
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "acmeharness.test", Hostname("acmeharness"))
	assert.Equal(t, "404.acmeharness.test", Hostname("404.acmeharness.test."))
}

func TestIsTest(t *testing.T) {
	testcases := map[string]bool{
		"foo.test":        true,
		"foo.test.":       true,
		"a.b.c.TEST":      true,
		"test":            true,
		"contest":         false,
		"foo.example.org": false,
	}

	for input, expected := range testcases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, IsTest(input))
		})
	}
}
