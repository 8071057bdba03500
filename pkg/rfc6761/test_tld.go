// SPDX-License-Identifier: MIT OR LGPL-3.0-or-later

package rfc6761

import (
	"strings"

	"github.com/miekg/dns"
)

const (
	// TestTLD is the rfc6761 designated TLD name reserved specifically
	// for testing usages.
	//
	// https://www.rfc-editor.org/rfc/rfc6761#section-6.2
	TestTLD = "test"
)

// CanonicalTest transforms the provided dn into a TestTLD rooted, fully
// qualified, canonicalized domain name.
func CanonicalTest(dn string) string {
	n := dns.CanonicalName(dn)
	if IsTest(n) {
		return n
	}
	return n + TestTLD + "."
}

// Hostname is CanonicalTest without the trailing root dot, which is the form
// used in certificate subjects and HTTP Host headers.
func Hostname(dn string) string {
	return strings.TrimSuffix(CanonicalTest(dn), ".")
}

// IsTest reports whether dn falls under the TestTLD. Names under it never
// resolve on the public internet.
func IsTest(dn string) bool {
	n := dns.CanonicalName(dn)
	return n == TestTLD+"." || dns.IsSubDomain(TestTLD+".", n)
}
