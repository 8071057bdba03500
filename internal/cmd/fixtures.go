// SPDX-License-Identifier: LGPL-3.0-or-later

package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jahkeup/acmeharness/pkg/fixtures"
)

const (
	outFlag    = "out"
	nativeFlag = "native"
)

func newFixturesCommand(v *viper.Viper) *cobra.Command {
	var (
		out    string
		native bool
	)

	c := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate account keys, domain keys and CSRs",
		Long: `Generates the fixture catalog for the target domain and copies it to the
output directory as <name>.pem:

  account_key      2048 bit account key
  weak_key         1024 bit key a CA must refuse
  domain_key       2048 bit domain key
  domain_csr       CN=<domain>, signed by domain_key
  san_csr          empty subject, SAN DNS:<domain>
  invalid_csr      CN that is not a valid domain name
  nonexistent_csr  CN of a valid name nobody answers for
  account_csr      CN=<domain>, signed by account_key

openssl failures are logged and leave the affected file empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}

			var tool fixtures.Tool = fixtures.Native{}
			if !native {
				tool, err = fixtures.NewOpenSSL(cfg.OpenSSLCommand)
				if err != nil {
					return err
				}
			}

			gen := fixtures.New(cfg.Domain, cfg.OpenSSLConfig,
				fixtures.WithTool(tool),
				fixtures.WithNonexistentDomain(cfg.NonexistentDomain),
				fixtures.WithLogger(log),
			)
			set, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			defer set.Close()

			if err := set.Export(out); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIGNED BY\tPATH")
			for _, name := range fixtures.Names {
				signer := "-"
				if s, ok := set.Signer(name); ok {
					signer = string(s)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, signer, filepath.Join(out, string(name)+".pem"))
			}
			return w.Flush()
		},
	}

	c.Flags().StringVar(&out, outFlag, "fixtures", "directory the fixtures are copied to")
	c.Flags().BoolVar(&native, nativeFlag, false, "generate in-process instead of running openssl")
	return c
}
