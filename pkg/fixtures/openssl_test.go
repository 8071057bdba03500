// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenSSL(t *testing.T) {
	testcases := map[string][]string{
		"":                                          {"openssl"},
		"openssl":                                   {"openssl"},
		"/usr/local/bin/openssl":                    {"/usr/local/bin/openssl"},
		`docker run --rm "alpine/openssl:3"`:        {"docker", "run", "--rm", "alpine/openssl:3"},
		"  env OPENSSL_CONF='/etc/x y.cnf' openssl": {"env", "OPENSSL_CONF=/etc/x y.cnf", "openssl"},
	}

	for input, expected := range testcases {
		t.Run(input, func(t *testing.T) {
			tool, err := NewOpenSSL(input)
			require.NoError(t, err)
			assert.Equal(t, expected, tool.Command)
		})
	}
}

func TestOpenSSLArgs(t *testing.T) {
	tool := &OpenSSL{Command: []string{"openssl"}}

	testcases := map[string]struct {
		req      Request
		expected []string
	}{
		"key": {
			req:      Request{Kind: KindKey, Bits: WeakBits, Out: "weak.pem"},
			expected: []string{"genrsa", "-out", "weak.pem", "1024"},
		},
		"new key csr": {
			req: Request{Kind: KindCSR, Bits: StrongBits, Out: "d.csr", NewKeyOut: "d.key", CommonName: "acmeharness.test"},
			expected: []string{
				"req", "-newkey", "rsa:2048", "-nodes", "-keyout", "d.key",
				"-subj", "/CN=acmeharness.test", "-out", "d.csr",
			},
		},
		"san csr": {
			req: Request{
				Kind: KindCSR, Out: "san.csr", KeyIn: "d.key",
				ConfigFile: "san.cnf", Extensions: SANSection, DNSNames: []string{"acmeharness.test"},
			},
			expected: []string{
				"req", "-new", "-sha256", "-key", "d.key", "-subj", "/",
				"-reqexts", "SAN", "-config", "san.cnf", "-out", "san.csr",
			},
		},
		"signed csr": {
			req: Request{Kind: KindCSR, Out: "a.csr", KeyIn: "a.key", CommonName: "acmeharness.test"},
			expected: []string{
				"req", "-new", "-sha256", "-key", "a.key", "-subj", "/CN=acmeharness.test", "-out", "a.csr",
			},
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			args, err := tool.args(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, args)
		})
	}

	_, err := tool.args(Request{Kind: Kind(42)})
	assert.Error(t, err)
}

func TestOpenSSLMissingBinary(t *testing.T) {
	tool := &OpenSSL{Command: []string{"acmeharness-no-such-openssl"}}
	err := tool.Generate(context.Background(), Request{Kind: KindKey, Bits: WeakBits, Out: "unused.pem"})
	assert.Error(t, err)
}

func TestOpenSSLGenerate(t *testing.T) {
	if _, err := exec.LookPath(DefaultOpenSSLCommand); err != nil {
		t.Skip("openssl not installed")
	}

	set, err := New(testDomain, "", WithTempDir(t.TempDir())).Generate(context.Background())
	require.NoError(t, err)
	defer set.Close()

	weak, err := set.PrivateKey(WeakKey)
	require.NoError(t, err)
	assert.Equal(t, WeakBits, weak.N.BitLen())

	account, err := set.PrivateKey(AccountKey)
	require.NoError(t, err)

	csr, err := set.CSR(AccountCSR)
	require.NoError(t, err)
	assert.Equal(t, testDomain, csr.Subject.CommonName)
	assert.True(t, SignedBy(csr, &account.PublicKey))

	san, err := set.CSR(SANCSR)
	require.NoError(t, err)
	assert.Equal(t, []string{testDomain}, san.DNSNames)
}
