// SPDX-License-Identifier: LGPL-3.0-or-later

package freeport

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, n := range []int{1, 2, 16} {
		t.Run(fmt.Sprintf("get_%d", n), func(t *testing.T) {
			ports, err := Get("127.0.0.1", n)
			require.NoError(t, err)
			require.Len(t, ports, n)

			seen := map[Port]bool{}
			for _, p := range ports {
				assert.NotZero(t, p)
				assert.False(t, seen[p], "port %s vended twice", p)
				seen[p] = true
				assert.False(t, vended.claim(p), "should be tracked as vended")
			}
		})
	}

	_, err := Get("127.0.0.1", 0)
	assert.Error(t, err)
}

func TestMustGetIsBindable(t *testing.T) {
	p := MustGet("127.0.0.1")
	defer p.Release()

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", p.String()))
	require.NoError(t, err)
	l.Close()
}
