// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import "context"

const (
	// StrongBits is the RSA modulus size a CA must accept.
	StrongBits = 2048
	// WeakBits is the RSA modulus size a CA must refuse.
	WeakBits = 1024
)

// Kind selects what a Request produces.
type Kind int

const (
	// KindKey produces an RSA private key.
	KindKey Kind = iota
	// KindCSR produces a certificate signing request.
	KindCSR
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindCSR:
		return "csr"
	default:
		return "unknown"
	}
}

// Request describes one artifact for a Tool to write to Out.
type Request struct {
	Kind Kind
	// Bits is the size of a new RSA key: the key itself for KindKey, or the
	// key written to NewKeyOut for KindCSR.
	Bits int
	Out  string

	// KeyIn signs the CSR. Ignored when NewKeyOut is set.
	KeyIn string
	// NewKeyOut asks for a fresh key, written here, that signs the CSR.
	NewKeyOut string

	// CommonName is the subject CN. Empty means an empty subject.
	CommonName string

	// ConfigFile and Extensions name an openssl style config and the request
	// extension section to activate.
	ConfigFile string
	Extensions string
	// DNSNames are the subjectAltName entries declared by Extensions, for
	// tools that do not read ConfigFile.
	DNSNames []string
}

// Subject renders CommonName the way openssl's -subj expects it.
func (r Request) Subject() string {
	if r.CommonName == "" {
		return "/"
	}
	return "/CN=" + r.CommonName
}

// Tool writes the artifact described by a Request. Generate must not return
// before the artifact is on disk (or has failed to be).
type Tool interface {
	Generate(ctx context.Context, req Request) error
}
