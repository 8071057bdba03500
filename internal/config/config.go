// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config reads the harness configuration from the environment and
// command line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, with "." in keys replaced by
// "__", e.g. ACMEHARNESS_CHALLENGE__PORT.
const EnvPrefix = "ACMEHARNESS"

const (
	DomainKey            = "domain"
	NonexistentDomainKey = "nonexistent_domain"
	OpenSSLConfigKey     = "openssl_cnf"
	OpenSSLCommandKey    = "openssl_cmd"
	ChallengeAddressKey  = "challenge.address"
	ChallengePortKey     = "challenge.port"
	ChallengeDirKey      = "challenge.directory"
	ChallengePollKey     = "challenge.poll_interval"
	DNSAddressKey        = "dns.address"
	LogLevelKey          = "log.level"
	LogFormatKey         = "log.format"
)

// legacyEnv are variable names used by older CI wiring, still honored.
var legacyEnv = map[string]string{
	DomainKey:        "TRAVIS_DOMAIN",
	OpenSSLConfigKey: "OPENSSL_CNF",
}

// Config is the full harness configuration.
type Config struct {
	Domain            string          `mapstructure:"domain"`
	NonexistentDomain string          `mapstructure:"nonexistent_domain"`
	OpenSSLConfig     string          `mapstructure:"openssl_cnf"`
	OpenSSLCommand    string          `mapstructure:"openssl_cmd"`
	Challenge         ChallengeConfig `mapstructure:"challenge"`
	DNS               DNSConfig       `mapstructure:"dns"`
	Log               LogConfig       `mapstructure:"log"`
}

// ChallengeConfig configures the challenge server.
type ChallengeConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	Directory    string        `mapstructure:"directory"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// DNSConfig configures the optional mock nameserver. An empty Address
// disables it.
type DNSConfig struct {
	Address string `mapstructure:"address"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Domain:         "acmeharness.test",
		OpenSSLCommand: "openssl",
		Challenge: ChallengeConfig{
			Address:      "localhost",
			Port:         8080,
			PollInterval: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Init registers defaults and environment bindings on v.
func Init(v *viper.Viper) error {
	def := Defaults()
	v.SetDefault(DomainKey, def.Domain)
	v.SetDefault(NonexistentDomainKey, def.NonexistentDomain)
	v.SetDefault(OpenSSLConfigKey, def.OpenSSLConfig)
	v.SetDefault(OpenSSLCommandKey, def.OpenSSLCommand)
	v.SetDefault(ChallengeAddressKey, def.Challenge.Address)
	v.SetDefault(ChallengePortKey, def.Challenge.Port)
	v.SetDefault(ChallengeDirKey, def.Challenge.Directory)
	v.SetDefault(ChallengePollKey, def.Challenge.PollInterval)
	v.SetDefault(DNSAddressKey, def.DNS.Address)
	v.SetDefault(LogLevelKey, def.Log.Level)
	v.SetDefault(LogFormatKey, def.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		env := EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(key, env, legacy); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the configuration from v, which must have been passed to Init.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Domain) == "" {
		return Config{}, fmt.Errorf("%s must not be empty", DomainKey)
	}
	if cfg.Challenge.Port < 0 || cfg.Challenge.Port > 65535 {
		return Config{}, fmt.Errorf("%s out of range: %d", ChallengePortKey, cfg.Challenge.Port)
	}
	if cfg.Challenge.PollInterval <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", ChallengePollKey)
	}

	return cfg, nil
}
