// SPDX-License-Identifier: LGPL-3.0-or-later

// Package dnsname checks domain names the way a conformant ACME server would
// before it attempts any domain control verification.
package dnsname

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	// maxLabels mirrors the number of labels a reasonable CA accepts.
	maxLabels = 10
	// maxNameLength is the RFC 1035 presentation length limit without the
	// root dot.
	maxNameLength = 253
	// NonexistentLabel is prepended to a registrable domain to build a name
	// that is syntactically fine but that the harness never answers for.
	NonexistentLabel = "404"
	// NonexistentAltLabel replaces NonexistentLabel when the target domain
	// already is NonexistentLabel under its registrable domain.
	NonexistentAltLabel = "404-nx"
)

var (
	ErrEmpty        = errors.New("name is empty")
	ErrTooLong      = errors.New("name is too long")
	ErrTooManyLabel = errors.New("name has too many labels")
	ErrNotASCII     = errors.New("name contains non-ASCII characters")
	ErrBadLabel     = errors.New("name contains an invalid label")
	ErrSingleLabel  = errors.New("name must have more than one label")
)

var profile = idna.New(
	idna.ValidateForRegistration(),
	idna.StrictDomainName(true),
)

// Validate returns nil when name is an ASCII, letter-digit-hyphen domain name
// with at least two labels. Internationalized names must already be in their
// punycode form.
func Validate(name string) error {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return ErrEmpty
	}
	if len(name) > maxNameLength {
		return ErrTooLong
	}
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return ErrNotASCII
		}
	}

	labels := dns.SplitDomainName(name)
	if len(labels) < 2 {
		return ErrSingleLabel
	}
	if len(labels) > maxLabels {
		return ErrTooManyLabel
	}
	for _, label := range labels {
		if !validLabel(label) {
			return fmt.Errorf("%w: %q", ErrBadLabel, label)
		}
	}

	if _, err := profile.ToUnicode(strings.ToLower(name)); err != nil {
		return fmt.Errorf("%w: %v", ErrBadLabel, err)
	}

	return nil
}

func validLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

// NonexistentSibling derives a name next to domain that passes Validate but is
// never served by the harness: NonexistentLabel under the registrable part of
// domain. The result never equals domain.
func NonexistentSibling(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if err := Validate(domain); err != nil {
		return "", fmt.Errorf("target domain %q: %w", domain, err)
	}

	base, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return "", fmt.Errorf("registrable domain of %q: %w", domain, err)
	}

	name := NonexistentLabel + "." + base
	if name == domain {
		name = NonexistentAltLabel + "." + base
	}

	return name, nil
}
