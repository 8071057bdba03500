// SPDX-License-Identifier: LGPL-3.0-or-later

package freeport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	g, err := newGate(3)
	require.NoError(t, err)

	assert.True(t, g.claim(1))
	assert.True(t, g.claim(2))
	assert.True(t, g.claim(3))
	assert.False(t, g.claim(1), "recently vended")

	// 4 evicts the oldest entry, 1, and 1 in turn evicts 2
	assert.True(t, g.claim(4))
	assert.True(t, g.claim(1))
	assert.False(t, g.claim(3))

	g.release(4)
	assert.True(t, g.claim(4), "released ports can be vended again")
}
