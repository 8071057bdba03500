// SPDX-License-Identifier: MIT OR LGPL-3.0-or-later

// Package fixtures synthesizes the keys and certificate signing requests an ACME
// client must handle: a strong and a weak account key, a domain key, and CSRs
// that are valid, SAN-only, syntactically invalid, for a name nobody controls,
// and signed by the wrong key.
//
// The cryptography itself is delegated to a Tool. The generator never checks
// that a Tool succeeded; a failed invocation leaves an empty or malformed
// fixture that only the consumer will notice. That is accepted for test
// fixtures and is logged, not returned.
package fixtures
