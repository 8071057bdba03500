// SPDX-License-Identifier: LGPL-3.0-or-later

package acmeharness

import (
	"context"
	"crypto"
	"fmt"
	"strings"
	"testing"

	"github.com/go-acme/lego/v4/registration"

	"github.com/jahkeup/acmeharness/pkg/fixtures"
	"github.com/jahkeup/acmeharness/pkg/rfc6761"
)

// DefaultDomain is the target domain used when a test does not name one. It
// sits under the rfc6761 .test TLD so it can never be a real name.
var DefaultDomain = rfc6761.Hostname("acmeharness")

var GeneratedEmailDomain = "acmeharness." + rfc6761.TestTLD

// NewTestingContext creates a context that's canceled at the end of the current
// test scope.
func NewTestingContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

var tokenReplacer = strings.NewReplacer("/", "_")

// TestNamedEmail derives a unique contact address from the test name.
func TestNamedEmail(t testing.TB) string {
	name := tokenReplacer.Replace(t.Name())
	return fmt.Sprintf("%s@%s", strings.ToLower(name), GeneratedEmailDomain)
}

// NewTestingFixtures generates a fixture Set for domain that is removed at the
// end of the test. Unless opts say otherwise the in-process tool is used, so
// openssl does not need to be installed.
func NewTestingFixtures(t testing.TB, domain string, opts ...fixtures.Option) *fixtures.Set {
	t.Helper()

	if domain == "" {
		domain = DefaultDomain
	}
	opts = append([]fixtures.Option{
		fixtures.WithTool(fixtures.Native{}),
		fixtures.WithTempDir(t.TempDir()),
	}, opts...)

	set, err := fixtures.New(domain, "", opts...).Generate(NewTestingContext(t))
	if err != nil {
		t.Fatalf("generate fixtures: %v", err)
	}
	t.Cleanup(func() {
		if err := set.Close(); err != nil {
			t.Errorf("remove fixtures: %v", err)
		}
	})

	return set
}

// FixtureUser is an ACME account user whose private key is the key fixture
// named key, normally fixtures.AccountKey (or fixtures.WeakKey to see an
// account registration refused).
func FixtureUser(email string, set *fixtures.Set, key fixtures.Name) *managedUser {
	pk, err := set.PrivateKey(key)
	if err != nil {
		panic(fmt.Sprintf("fixture %s is not a usable account key: %v", key, err))
	}

	return &managedUser{
		email:      email,
		privateKey: pk,
	}
}

type managedUser struct {
	email        string
	privateKey   crypto.PrivateKey
	registration *registration.Resource
}

// GetEmail implements registration.User
func (u *managedUser) GetEmail() string {
	return u.email
}

// GetPrivateKey implements registration.User
func (u *managedUser) GetPrivateKey() crypto.PrivateKey {
	return u.privateKey
}

// GetRegistration implements registration.User
func (u *managedUser) GetRegistration() *registration.Resource {
	return u.registration
}

func (u *managedUser) SetRegistration(reg *registration.Resource) {
	u.registration = reg
}

var _ registration.User = (*managedUser)(nil)
