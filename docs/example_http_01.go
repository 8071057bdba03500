//go:build never && not_ever

package acmeflow

import (
	"testing"

	"github.com/jahkeup/acmeharness"
	"github.com/jahkeup/acmeharness/pkg/fixtures"
)

func TestClientRejectsWeakAccountKey(t *testing.T) {
	set := acmeharness.NewTestingFixtures(t, "")
	cs := acmeharness.NewTestingChallengeServer(t)

	user := acmeharness.FixtureUser(acmeharness.TestNamedEmail(t), set, fixtures.WeakKey)
	client := newClientUnderTest(t, user) // your ACME client

	if err := client.Register(); err == nil {
		t.Fatal("registration with a 1024 bit key should be refused")
	}

	// For each challenge the client is asked to prove, stage the response
	// and point the CA's HTTP-01 validation at cs.
	url := cs.StageChallenge("token", "token.thumbprint")
	t.Logf("challenge served at %s", url)

	// Submit set.Path(fixtures.AccountCSR) and expect a signer mismatch error.
}
