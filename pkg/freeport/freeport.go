// SPDX-License-Identifier: LGPL-3.0-or-later

// Package freeport vends TCP port numbers that were free at the time of the call,
// for test servers that need a concrete port before they bind (for example a
// challenge server that a CA under test is told about up front).
package freeport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// maxAttempts bounds how many listeners are opened per requested port.
	// Ports rejected by the gate do not count.
	maxAttempts = 3
	// perPortBudget scales the time allowed for the whole request.
	perPortBudget = 100 * time.Millisecond
)

// Port is a TCP port number.
type Port uint16

// Int returns the port as an int.
func (p Port) Int() int { return int(p) }

// String prints the port number.
func (p Port) String() string { return strconv.Itoa(int(p)) }

// Release makes p eligible to be vended again.
func (p Port) Release() { vended.release(p) }

// Get vends n ports on host, none of which were vended recently.
func Get(host string, n int) ([]Port, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(n)*perPortBudget)
	defer cancel()
	return GetContext(ctx, host, n)
}

// GetContext is Get bounded by ctx.
func GetContext(ctx context.Context, host string, n int) ([]Port, error) {
	if n <= 0 {
		return nil, errors.New("invalid arg: need at least 1 port")
	}

	ports := make([]Port, 0, n)
	for len(ports) < n {
		p, err := one(ctx, host)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}

	return ports, nil
}

// MustGet vends a single port on host or panics.
func MustGet(host string) Port {
	ports, err := Get(host, 1)
	if err != nil {
		panic(fmt.Sprintf("cannot vend a free port: %v", err))
	}
	return ports[0]
}

func one(ctx context.Context, host string) (Port, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		p, err := probe(ctx, host)
		if err != nil {
			lastErr = err
			attempt++
			continue
		}
		if vended.claim(p) {
			return p, nil
		}
	}

	return 0, fmt.Errorf("cannot allocate port: %w", lastErr)
}

var listenConfig net.ListenConfig

func probe(ctx context.Context, host string) (Port, error) {
	l, err := listenConfig.Listen(ctx, "tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address %T", l.Addr())
	}

	return Port(addr.Port), nil
}
