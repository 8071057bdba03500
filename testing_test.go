// SPDX-License-Identifier: LGPL-3.0-or-later

package acmeharness

import (
	"crypto/rsa"
	"testing"

	"github.com/go-acme/lego/v4/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jahkeup/acmeharness/pkg/fixtures"
)

func TestTestNamedEmail(t *testing.T) {
	const expected = "testtestnamedemail@acmeharness.test"
	actual := TestNamedEmail(t)
	assert.Equal(t, expected, actual)

	t.Run("nested", func(t *testing.T) {
		const expected = "testtestnamedemail_nested@acmeharness.test"
		actual := TestNamedEmail(t)
		assert.Equal(t, expected, actual)
	})
}

func TestDefaultDomain(t *testing.T) {
	assert.Equal(t, "acmeharness.test", DefaultDomain)
}

func TestFixtureUser(t *testing.T) {
	set := NewTestingFixtures(t, "")
	assert.Equal(t, DefaultDomain, set.Domain)

	user := FixtureUser(TestNamedEmail(t), set, fixtures.AccountKey)
	assert.Equal(t, "testfixtureuser@acmeharness.test", user.GetEmail())
	assert.Nil(t, user.GetRegistration())

	key, ok := user.GetPrivateKey().(*rsa.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, fixtures.StrongBits, key.N.BitLen())

	weak := FixtureUser(TestNamedEmail(t), set, fixtures.WeakKey)
	assert.Equal(t, fixtures.WeakBits, weak.GetPrivateKey().(*rsa.PrivateKey).N.BitLen())

	user.SetRegistration(&registration.Resource{URI: "https://ca.acmeharness.test/acct/1"})
	assert.Equal(t, "https://ca.acmeharness.test/acct/1", user.GetRegistration().URI)

	assert.Panics(t, func() { FixtureUser("x@y.test", set, fixtures.DomainCSR) })
}
