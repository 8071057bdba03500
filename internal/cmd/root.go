// SPDX-License-Identifier: LGPL-3.0-or-later

// Package cmd provides the acmeharness command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jahkeup/acmeharness/internal/config"
	"github.com/jahkeup/acmeharness/internal/logger"
)

const (
	domainFlag      = "domain"
	nonexistentFlag = "nonexistent-domain"
	opensslCnfFlag  = "openssl-cnf"
	opensslCmdFlag  = "openssl-cmd"
	logLevelFlag    = "log-level"
	logFormatFlag   = "log-format"
)

// NewRootCommand builds the command tree reading configuration from v.
func NewRootCommand(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "acmeharness",
		Short: "Fixtures and a challenge file server for testing ACME clients",
		Long: `acmeharness generates the keys and certificate signing requests an ACME
client must accept or reject, and serves challenge-response files from a
directory that can be switched while the server runs.

Configuration is read from flags and ACMEHARNESS_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.Init(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String(domainFlag, config.Defaults().Domain, "target domain")
	flags.String(nonexistentFlag, "", "name used for the nonexistent-domain CSR (default 404.<registrable domain>)")
	flags.String(opensslCnfFlag, config.Defaults().OpenSSLConfig, "openssl config template the SAN section is appended to (default built-in template)")
	flags.String(opensslCmdFlag, config.Defaults().OpenSSLCommand, "openssl command, split with shell quoting rules")
	flags.String(logLevelFlag, config.Defaults().Log.Level, "log level")
	flags.String(logFormatFlag, config.Defaults().Log.Format, `log format, "console" or "json"`)
	bindFlags(v, flags, map[string]string{
		config.DomainKey:            domainFlag,
		config.NonexistentDomainKey: nonexistentFlag,
		config.OpenSSLConfigKey:     opensslCnfFlag,
		config.OpenSSLCommandKey:    opensslCmdFlag,
		config.LogLevelKey:          logLevelFlag,
		config.LogFormatKey:         logFormatFlag,
	})

	root.AddCommand(newFixturesCommand(v), newServeCommand(v))
	return root
}

// Execute runs the command line tool and exits on failure.
func Execute() {
	if err := NewRootCommand(viper.GetViper()).Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// bindFlags binds config keys to the named flags of flags.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
