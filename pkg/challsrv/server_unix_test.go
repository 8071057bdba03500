// SPDX-License-Identifier: LGPL-3.0-or-later

//go:build unix

package challsrv

import (
	"context"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jahkeup/acmeharness/pkg/freeport"
)

func TestStartStopsOnSignal(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGTERM, syscall.SIGINT} {
		t.Run(sig.String(), func(t *testing.T) {
			port := freeport.MustGet("127.0.0.1")
			defer port.Release()
			addr := net.JoinHostPort("127.0.0.1", port.String())

			_, ep := NewPipe()
			done := make(chan error, 1)
			go func() {
				done <- Start(context.Background(), ep, "127.0.0.1", port.Int(),
					WithDirectory(t.TempDir()), WithPollInterval(testPoll))
			}()

			// The handler is installed before the socket is bound, so a
			// successful dial means the signal will be caught.
			require.Eventually(t, func() bool {
				conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
				if err != nil {
					return false
				}
				conn.Close()
				return true
			}, 5*time.Second, 20*time.Millisecond)

			start := time.Now()
			require.NoError(t, syscall.Kill(syscall.Getpid(), sig))

			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("server did not stop on signal")
			}
			assert.Less(t, time.Since(start), 10*testPoll, "stops within a few poll intervals")
		})
	}
}
