// SPDX-License-Identifier: LGPL-3.0-or-later

package acmeharness

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jahkeup/acmeharness/pkg/fixtures"
	"github.com/jahkeup/acmeharness/pkg/mockdns"
)

var (
	sharedDNSOnce             sync.Once
	sharedDNS                 *mockdns.Server
	sharedDNSNameserverDBOnce sync.Once
	sharedDNSNameserverDB     *mockdns.DB
)

// SharedNameserverDB is the process wide DB behind SharedDNS.
func SharedNameserverDB() *mockdns.DB {
	sharedDNSNameserverDBOnce.Do(func() {
		sharedDNSNameserverDB = mockdns.NewDB(nil, zerolog.Nop())
	})
	return sharedDNSNameserverDB
}

// SharedDNS is a nameserver started once per process and never stopped.
func SharedDNS() *mockdns.Server {
	sharedDNSOnce.Do(func() {
		ns, err := mockdns.Start(context.Background(), SharedNameserverDB(), "")
		if err != nil {
			panic(fmt.Sprintf("cannot start shared DNS server: %v", err))
		}
		sharedDNS = ns
	})

	return sharedDNS
}

// SeedFixtureNames makes db resolve the fixture target domain to ip and answer
// NXDOMAIN for the nonexistent-domain fixture name.
func SeedFixtureNames(db *mockdns.DB, set *fixtures.Set, ip net.IP) {
	db.AddA(set.Domain, ip)
	db.AddNXDomain(set.Nonexistent)
}

// NewTestingDNS starts a nameserver for the length of the test, seeded for set
// with the target domain on the loopback address.
func NewTestingDNS(t testing.TB, set *fixtures.Set) *mockdns.Server {
	t.Helper()

	db := mockdns.NewDB(nil, zerolog.Nop())
	SeedFixtureNames(db, set, net.IPv4(127, 0, 0, 1))

	ns, err := mockdns.Start(NewTestingContext(t), db, "")
	if err != nil {
		t.Fatalf("nameserver: %v", err)
	}
	return ns
}
