// SPDX-License-Identifier: MIT OR LGPL-3.0-or-later

// Package challsrv is a small HTTP file server for challenge responses. Every
// request is answered from the final path segment alone, resolved inside the
// currently served directory, and that directory can be switched while the
// server runs by sending it over a control channel.
//
// The server handles one connection at a time on a single loop that alternates
// between a non-blocking look at the control channel and a bounded wait for the
// next connection. A directory switch is therefore visible to the very next
// request once its acknowledgment has been received.
package challsrv
