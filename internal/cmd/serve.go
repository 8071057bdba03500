// SPDX-License-Identifier: LGPL-3.0-or-later

package cmd

import (
	"context"
	"net"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jahkeup/acmeharness/internal/config"
	"github.com/jahkeup/acmeharness/pkg/challsrv"
	"github.com/jahkeup/acmeharness/pkg/dnsname"
	"github.com/jahkeup/acmeharness/pkg/mockdns"
)

const (
	addressFlag      = "address"
	portFlag         = "port"
	dirFlag          = "dir"
	pollFlag         = "poll-interval"
	dnsFlag          = "dns"
	controlStdinFlag = "control-stdin"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	var controlStdin bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve challenge responses from a switchable directory",
		Long: `Serves GET /<any prefix>/<file> from <directory>/<file> until SIGINT or
SIGTERM.

With --control-stdin every line read from stdin is a directory to switch to;
"true" or "false" is written to stdout once the switch was applied or refused.

With --dns a nameserver answers the target domain with 127.0.0.1 and the
nonexistent-domain name with NXDOMAIN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if cfg.DNS.Address != "" {
				if _, err := startDNS(ctx, cfg, log); err != nil {
					return err
				}
			}

			ctl, ep := challsrv.NewPipe()
			if controlStdin {
				go func() {
					if err := challsrv.ServeControl(ctx, ctl, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && ctx.Err() == nil {
						log.Error().Err(err).Msg("control stream")
					}
				}()
			}

			return challsrv.Start(ctx, ep, cfg.Challenge.Address, cfg.Challenge.Port,
				challsrv.WithDirectory(cfg.Challenge.Directory),
				challsrv.WithPollInterval(cfg.Challenge.PollInterval),
				challsrv.WithLogger(log.With().Str("component", "challsrv").Logger()),
			)
		},
	}

	flags := c.Flags()
	flags.String(addressFlag, config.Defaults().Challenge.Address, "bind address")
	flags.Int(portFlag, config.Defaults().Challenge.Port, "bind port")
	flags.String(dirFlag, "", "initially served directory (default working directory)")
	flags.Duration(pollFlag, config.Defaults().Challenge.PollInterval, "longest wait for a connection before the control channel is checked again")
	flags.String(dnsFlag, "", "also run a mock nameserver on this UDP address")
	flags.BoolVar(&controlStdin, controlStdinFlag, false, "read directory switches from stdin")
	bindFlags(v, flags, map[string]string{
		config.ChallengeAddressKey: addressFlag,
		config.ChallengePortKey:    portFlag,
		config.ChallengeDirKey:     dirFlag,
		config.ChallengePollKey:    pollFlag,
		config.DNSAddressKey:       dnsFlag,
	})

	return c
}

func startDNS(ctx context.Context, cfg config.Config, log zerolog.Logger) (*mockdns.Server, error) {
	nonexistent := cfg.NonexistentDomain
	if nonexistent == "" {
		name, err := dnsname.NonexistentSibling(cfg.Domain)
		if err != nil {
			return nil, err
		}
		nonexistent = name
	}

	db := mockdns.NewDB(nil, log.With().Str("component", "mockdns").Logger())
	db.AddA(cfg.Domain, net.IPv4(127, 0, 0, 1))
	db.AddNXDomain(nonexistent)

	return mockdns.Start(ctx, db, cfg.DNS.Address)
}
