// SPDX-License-Identifier: LGPL-3.0-or-later

package cmd

import (
	"bytes"
	"sync"
)

// syncBuffer is a bytes.Buffer safe to write from the command and read from
// the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
