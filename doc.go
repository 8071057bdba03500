// SPDX-License-Identifier: MIT OR LGPL-3.0-or-later

// Package acmeharness provides a testing focused helper library for exercising
// an ACME client against a real or simulated certificate authority. It produces
// the keys and CSRs an issuance client must accept or reject, serves
// challenge-response files from a directory that can be switched between test
// cases, and answers DNS for the target domain locally.
//
// The building blocks live in pkg/: fixtures, challsrv, mockdns, dnsname,
// freeport and rfc6761. This package binds them to testing.TB lifetimes.
//
// See package's test source files for example usages.
package acmeharness
