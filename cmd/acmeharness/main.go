// SPDX-License-Identifier: LGPL-3.0-or-later

// acmeharness generates ACME client test fixtures and serves challenge
// responses.
package main

import "github.com/jahkeup/acmeharness/internal/cmd"

func main() {
	cmd.Execute()
}
