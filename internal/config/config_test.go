// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) (Config, error) {
	t.Helper()
	v := viper.New()
	require.NoError(t, Init(v))
	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Empty(t, cfg.OpenSSLConfig, "only an explicit template path is read")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("ACMEHARNESS_DOMAIN", "ci.example.com")
	t.Setenv("ACMEHARNESS_OPENSSL_CNF", "/etc/ssl/openssl.cnf")
	t.Setenv("ACMEHARNESS_CHALLENGE__PORT", "5002")
	t.Setenv("ACMEHARNESS_CHALLENGE__POLL_INTERVAL", "250ms")
	t.Setenv("ACMEHARNESS_DNS__ADDRESS", "127.0.0.1:8053")
	t.Setenv("ACMEHARNESS_LOG__FORMAT", "json")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "ci.example.com", cfg.Domain)
	assert.Equal(t, "/etc/ssl/openssl.cnf", cfg.OpenSSLConfig)
	assert.Equal(t, 5002, cfg.Challenge.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Challenge.PollInterval)
	assert.Equal(t, "127.0.0.1:8053", cfg.DNS.Address)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLegacyEnvironment(t *testing.T) {
	t.Setenv("TRAVIS_DOMAIN", "travis-ci.gethttpsforfree.com")
	t.Setenv("OPENSSL_CNF", "ci/openssl.cnf")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "travis-ci.gethttpsforfree.com", cfg.Domain)
	assert.Equal(t, "ci/openssl.cnf", cfg.OpenSSLConfig)

	t.Setenv("ACMEHARNESS_DOMAIN", "preferred.example.com")
	cfg, err = load(t)
	require.NoError(t, err)
	assert.Equal(t, "preferred.example.com", cfg.Domain, "prefixed name wins")
}

func TestInvalid(t *testing.T) {
	testcases := map[string]string{
		"ACMEHARNESS_CHALLENGE__PORT":          "70000",
		"ACMEHARNESS_CHALLENGE__POLL_INTERVAL": "0s",
		"ACMEHARNESS_DOMAIN":                   " ",
	}

	for env, value := range testcases {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, value)
			_, err := load(t)
			assert.Error(t, err)
		})
	}
}
