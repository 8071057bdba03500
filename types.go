// SPDX-License-Identifier: LGPL-3.0-or-later

package acmeharness

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jahkeup/acmeharness/pkg/challsrv"
	"github.com/jahkeup/acmeharness/pkg/freeport"
)

// ChallengeServer is a running challsrv.Server and the controller driving it,
// scoped to one test.
type ChallengeServer struct {
	*challsrv.Server
	*challsrv.Controller

	t testing.TB
}

// NewTestingChallengeServer starts a challenge server on a free loopback port,
// initially serving a fresh empty directory, and stops it at the end of the
// test.
func NewTestingChallengeServer(t testing.TB, opts ...challsrv.Option) *ChallengeServer {
	t.Helper()

	port := freeport.MustGet("127.0.0.1")
	t.Cleanup(port.Release)

	ctl, ep := challsrv.NewPipe()
	opts = append([]challsrv.Option{
		challsrv.WithDirectory(t.TempDir()),
		challsrv.WithPollInterval(10 * time.Millisecond),
	}, opts...)
	opts = append(opts, challsrv.WithAddress("127.0.0.1"), challsrv.WithPort(port.Int()))

	srv, err := challsrv.New(ep, opts...)
	if err != nil {
		t.Fatalf("challenge server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Listen(ctx); err != nil {
		cancel()
		t.Fatalf("challenge server: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("challenge server: %v", err)
		}
	})

	return &ChallengeServer{Server: srv, Controller: ctl, t: t}
}

// URL is the absolute URL of path on the server.
func (cs *ChallengeServer) URL(path string) string {
	return "http://" + cs.Addr().String() + path
}

// Client returns an HTTP client suitable for talking to the server.
func (cs *ChallengeServer) Client() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

// MustSwitch switches the served directory or fails the test.
func (cs *ChallengeServer) MustSwitch(dir string) {
	cs.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cs.Switch(ctx, dir); err != nil {
		cs.t.Fatalf("switch to %s: %v", dir, err)
	}
}

// StageChallenge puts keyAuth for token into a new directory, switches the
// server to it and returns the URL an ACME server would fetch. Files from
// earlier stages stop being served.
func (cs *ChallengeServer) StageChallenge(token, keyAuth string) string {
	cs.t.Helper()

	dir := cs.t.TempDir()
	path, err := challsrv.StageChallenge(dir, token, keyAuth)
	if err != nil {
		cs.t.Fatalf("stage challenge: %v", err)
	}
	cs.MustSwitch(dir)

	return cs.URL(path)
}
