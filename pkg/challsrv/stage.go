// SPDX-License-Identifier: LGPL-3.0-or-later

package challsrv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/challenge/http01"
)

// StageChallenge writes keyAuth to dir/token and returns the well-known URL path
// an ACME server requests for it.
func StageChallenge(dir, token, keyAuth string) (string, error) {
	if token == "" || token == "." || token == ".." || strings.ContainsAny(token, `/\`) {
		return "", fmt.Errorf("invalid challenge token %q", token)
	}

	if err := os.WriteFile(filepath.Join(dir, token), []byte(keyAuth), 0o644); err != nil {
		return "", fmt.Errorf("stage challenge: %w", err)
	}

	return http01.ChallengePath(token), nil
}
