// SPDX-License-Identifier: LGPL-3.0-or-later

package challsrv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSwitchRejected is returned by Switch when the server could not serve the
// requested directory. The server keeps its previous directory.
var ErrSwitchRejected = errors.New("directory switch rejected")

type switchRequest struct {
	dir string
	ack chan bool
}

// Controller is the driving end of a control channel.
type Controller struct {
	requests chan<- switchRequest
}

// Endpoint is the server end of a control channel, handed to New or Start.
type Endpoint struct {
	requests <-chan switchRequest
}

// NewPipe connects a Controller to an Endpoint.
func NewPipe() (*Controller, *Endpoint) {
	requests := make(chan switchRequest)
	return &Controller{requests: requests}, &Endpoint{requests: requests}
}

// Switch asks the server to serve dir and waits for its acknowledgment. A
// relative dir is resolved against the directory being served at the time.
func (c *Controller) Switch(ctx context.Context, dir string) error {
	req := switchRequest{dir: dir, ack: make(chan bool, 1)}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case ok := <-req.ack:
		if !ok {
			return fmt.Errorf("%w: %s", ErrSwitchRejected, dir)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// poll returns a pending request without blocking.
func (e *Endpoint) poll() (switchRequest, bool) {
	if e == nil {
		return switchRequest{}, false
	}

	select {
	case req := <-e.requests:
		return req, true
	default:
		return switchRequest{}, false
	}
}

// ServeControl reads one directory per line from r, switches ctl to it and
// writes "true" or "false" per line to w. Blank lines are ignored. It returns
// when r is exhausted, on a write error, or when ctx is done.
func ServeControl(ctx context.Context, ctl *Controller, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dir := strings.TrimSpace(scanner.Text())
		if dir == "" {
			continue
		}

		err := ctl.Switch(ctx, dir)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if _, werr := fmt.Fprintln(w, err == nil); werr != nil {
			return werr
		}
	}
	return scanner.Err()
}
