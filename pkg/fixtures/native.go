// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"io"
	"os"

	"github.com/go-acme/lego/v4/certcrypto"
)

// Native produces the same artifacts as OpenSSL without leaving the process.
// It ignores ConfigFile and takes subjectAltNames from Request.DNSNames.
type Native struct {
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Generate implements Tool.
func (n Native) Generate(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch req.Kind {
	case KindKey:
		_, err := n.newKey(req.Bits, req.Out)
		return err

	case KindCSR:
		var key crypto.PrivateKey
		var err error
		if req.NewKeyOut != "" {
			key, err = n.newKey(req.Bits, req.NewKeyOut)
		} else {
			key, err = readKey(req.KeyIn)
		}
		if err != nil {
			return err
		}

		der, err := certcrypto.GenerateCSR(key, req.CommonName, req.DNSNames, false)
		if err != nil {
			return fmt.Errorf("create csr: %w", err)
		}
		csr, err := x509.ParseCertificateRequest(der)
		if err != nil {
			return fmt.Errorf("parse created csr: %w", err)
		}
		return writePEM(req.Out, certcrypto.PEMEncode(csr))

	default:
		return fmt.Errorf("unsupported request kind %s", req.Kind)
	}
}

func (n Native) newKey(bits int, out string) (*rsa.PrivateKey, error) {
	random := n.Rand
	if random == nil {
		random = rand.Reader
	}

	key, err := rsa.GenerateKey(random, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa %d: %w", bits, err)
	}
	if err := writePEM(out, certcrypto.PEMEncode(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func readKey(path string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	key, err := certcrypto.ParsePEMPrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse signing key %s: %w", path, err)
	}
	return key, nil
}

func writePEM(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var _ Tool = Native{}
