// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/go-acme/lego/v4/certcrypto"
)

// ErrNotRSA is returned for keys of any other algorithm.
var ErrNotRSA = errors.New("not an RSA key")

// ReadPrivateKey parses the PEM encoded RSA key at path, PKCS#1 or PKCS#8.
func ReadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := certcrypto.ParsePEMPrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse key %s: %w", path, err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRSA)
	}
	return rsaKey, nil
}

// ReadCSR parses the PEM encoded certificate request at path.
func ReadCSR(path string) (*x509.CertificateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	csr, err := certcrypto.PemDecodeTox509CSR(data)
	if err != nil {
		return nil, fmt.Errorf("parse csr %s: %w", path, err)
	}
	return csr, nil
}

// PrivateKey parses key fixture name.
func (s *Set) PrivateKey(name Name) (*rsa.PrivateKey, error) {
	if name.IsCSR() {
		return nil, fmt.Errorf("%s is not a key fixture", name)
	}
	return ReadPrivateKey(s.Path(name))
}

// CSR parses CSR fixture name.
func (s *Set) CSR(name Name) (*x509.CertificateRequest, error) {
	if !name.IsCSR() {
		return nil, fmt.Errorf("%s is not a csr fixture", name)
	}
	return ReadCSR(s.Path(name))
}

var rsaSignatureHashes = map[x509.SignatureAlgorithm]crypto.Hash{
	x509.SHA256WithRSA: crypto.SHA256,
	x509.SHA384WithRSA: crypto.SHA384,
	x509.SHA512WithRSA: crypto.SHA512,
}

// SignedBy reports whether the signature on csr verifies against pub, which is
// independent of the public key the CSR carries.
func SignedBy(csr *x509.CertificateRequest, pub *rsa.PublicKey) bool {
	hash, ok := rsaSignatureHashes[csr.SignatureAlgorithm]
	if !ok || pub == nil {
		return false
	}

	h := hash.New()
	h.Write(csr.RawTBSCertificateRequest)
	return rsa.VerifyPKCS1v15(pub, hash, h.Sum(nil), csr.Signature) == nil
}
