// SPDX-License-Identifier: LGPL-3.0-or-later

package dnsname

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"acmeharness.test",
		"travis-ci.gethttpsforfree.com",
		"404.gethttpsforfree.com",
		"xn--bcher-kva.example",
		"a1.b2.example.org.",
		"Mixed.Example.COM",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(name))
		})
	}

	invalid := map[string]error{
		"":                              ErrEmpty,
		"localhost":                     ErrSingleLabel,
		"\u00c3\u00a0_\u00c3\u00a0.com": ErrNotASCII,
		"under_score.example.com":       ErrBadLabel,
		"-leading.example.com":          ErrBadLabel,
		"a.b.c.d.e.f.g.h.i.j.k.com":     ErrTooManyLabel,
		strings.Repeat("a", 300):        ErrTooLong,
	}
	for name, expected := range invalid {
		t.Run("invalid_"+name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(name), expected)
		})
	}
}

func TestNonexistentSibling(t *testing.T) {
	testcases := map[string]string{
		"travis-ci.gethttpsforfree.com": "404.gethttpsforfree.com",
		"acmeharness.test":              "404.acmeharness.test",
		"deep.sub.example.co.uk.":       "404.example.co.uk",
		"404.example.com":               "404-nx.example.com",
		"404.Example.COM.":              "404-nx.example.com",
	}

	for input, expected := range testcases {
		t.Run(input, func(t *testing.T) {
			actual, err := NonexistentSibling(input)
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
			assert.NotEqual(t, strings.ToLower(strings.TrimSuffix(input, ".")), actual)
			assert.NoError(t, Validate(actual))
		})
	}

	_, err := NonexistentSibling("not valid")
	assert.Error(t, err)
}
