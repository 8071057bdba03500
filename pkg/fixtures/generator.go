// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jahkeup/acmeharness/pkg/dnsname"
)

// InvalidCommonName is not a usable DNS name: it is non-ASCII and carries an
// underscore.
const InvalidCommonName = "\u00c3\u00a0\u00c2\u00b2\u00c2\u00a0_\u00c3\u00a0\u00c2\u00b2\u00c2\u00a0.com"

// SANSection is the request extension section appended to the template.
const SANSection = "SAN"

// DefaultTemplate is the base config used when no template path is given.
//
//go:embed openssl.cnf
var DefaultTemplate string

// Generator produces fixture Sets for one target domain.
type Generator struct {
	domain      string
	template    string
	nonexistent string
	tempDir     string
	tool        Tool
	log         zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTool replaces the default OpenSSL tool.
func WithTool(tool Tool) Option {
	return func(g *Generator) {
		g.tool = tool
	}
}

// WithTempDir sets where per-Set directories are created. Defaults to
// os.TempDir.
func WithTempDir(dir string) Option {
	return func(g *Generator) {
		g.tempDir = dir
	}
}

// WithNonexistentDomain overrides the name used for NonexistentCSR.
func WithNonexistentDomain(name string) Option {
	return func(g *Generator) {
		g.nonexistent = name
	}
}

// WithLogger sets the logger; logs are discarded otherwise.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// New creates a Generator for domain. template is the path of the openssl
// config that the SAN section is appended to; empty means DefaultTemplate.
func New(domain, template string, opts ...Option) *Generator {
	g := &Generator{
		domain:   domain,
		template: template,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.tool == nil {
		g.tool = &OpenSSL{Command: []string{DefaultOpenSSLCommand}}
	}
	if g.nonexistent == "" {
		name, err := dnsname.NonexistentSibling(domain)
		if err != nil {
			g.log.Warn().Err(err).Msg("cannot derive nonexistent sibling, using a subdomain")
			name = dnsname.NonexistentLabel + "." + domain
		}
		g.nonexistent = name
	}

	return g
}

// Domain is the target domain.
func (g *Generator) Domain() string {
	return g.domain
}

// Nonexistent is the common name used for NonexistentCSR.
func (g *Generator) Nonexistent() string {
	return g.nonexistent
}

// Generate creates every fixture in Names. Only local file errors are
// returned; tool failures are logged and leave the fixture as the tool left it.
// The caller owns the Set and must Close it.
func (g *Generator) Generate(ctx context.Context) (*Set, error) {
	dir, err := os.MkdirTemp(g.tempDir, "acmeharness-fixtures-")
	if err != nil {
		return nil, fmt.Errorf("fixtures dir: %w", err)
	}
	set := newSet(dir, g.domain, g.nonexistent)

	if err := g.generate(ctx, set); err != nil {
		set.Close()
		return nil, err
	}

	g.log.Info().Str("dir", dir).Str("domain", g.domain).Int("fixtures", set.Len()).Msg("generated fixtures")
	return set, nil
}

func (g *Generator) generate(ctx context.Context, set *Set) error {
	paths := make(map[Name]string, len(Names))
	for _, name := range Names {
		path, err := set.create(name)
		if err != nil {
			return err
		}
		paths[name] = path
	}

	sanConfig, err := g.writeSANConfig(set.dir)
	if err != nil {
		return err
	}

	csr := func(name, signer Name, cn string) Request {
		set.signers[name] = signer
		return Request{Kind: KindCSR, Out: paths[name], KeyIn: paths[signer], CommonName: cn}
	}

	san := csr(SANCSR, DomainKey, "")
	san.ConfigFile = sanConfig
	san.Extensions = SANSection
	san.DNSNames = []string{g.domain}

	set.signers[DomainCSR] = DomainKey
	steps := []struct {
		name Name
		req  Request
	}{
		{AccountKey, Request{Kind: KindKey, Bits: StrongBits, Out: paths[AccountKey]}},
		{WeakKey, Request{Kind: KindKey, Bits: WeakBits, Out: paths[WeakKey]}},
		{DomainCSR, Request{
			Kind:       KindCSR,
			Bits:       StrongBits,
			Out:        paths[DomainCSR],
			NewKeyOut:  paths[DomainKey],
			CommonName: g.domain,
		}},
		{SANCSR, san},
		{InvalidCSR, csr(InvalidCSR, DomainKey, InvalidCommonName)},
		{NonexistentCSR, csr(NonexistentCSR, DomainKey, g.nonexistent)},
		{AccountCSR, csr(AccountCSR, AccountKey, g.domain)},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		log := g.log.With().Str("fixture", string(step.name)).Stringer("kind", step.req.Kind).Logger()
		if err := g.tool.Generate(ctx, step.req); err != nil {
			log.Warn().Err(err).Msg("tool failed, fixture may be empty or malformed")
			continue
		}
		log.Debug().Msg("generated")
	}

	return nil
}

// writeSANConfig writes the template followed by a SAN section naming the
// target domain.
func (g *Generator) writeSANConfig(dir string) (string, error) {
	base := []byte(DefaultTemplate)
	if g.template != "" {
		data, err := os.ReadFile(g.template)
		if err != nil {
			return "", fmt.Errorf("read config template: %w", err)
		}
		base = data
	}

	path := filepath.Join(dir, "san.cnf")
	conf := append(append([]byte{}, base...), SANConfigSection(g.domain)...)
	if err := os.WriteFile(path, conf, 0o600); err != nil {
		return "", fmt.Errorf("write san config: %w", err)
	}

	return path, nil
}

// SANConfigSection is the config text declaring domain as the only
// subjectAltName.
func SANConfigSection(domain string) string {
	return fmt.Sprintf("\n[%s]\nsubjectAltName=DNS:%s\n", SANSection, domain)
}
