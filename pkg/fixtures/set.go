// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/otiai10/copy"
)

// Name identifies a fixture within a Set.
type Name string

const (
	AccountKey     Name = "account_key"
	WeakKey        Name = "weak_key"
	DomainKey      Name = "domain_key"
	DomainCSR      Name = "domain_csr"
	SANCSR         Name = "san_csr"
	InvalidCSR     Name = "invalid_csr"
	NonexistentCSR Name = "nonexistent_csr"
	AccountCSR     Name = "account_csr"
)

// Names lists every fixture a Set holds, in generation order.
var Names = []Name{
	AccountKey, WeakKey, DomainKey, DomainCSR, SANCSR, InvalidCSR, NonexistentCSR, AccountCSR,
}

// IsCSR reports whether n names a certificate signing request.
func (n Name) IsCSR() bool {
	switch n {
	case DomainCSR, SANCSR, InvalidCSR, NonexistentCSR, AccountCSR:
		return true
	default:
		return false
	}
}

// Set is one generation's worth of fixtures. Every file is open and lives in a
// private directory removed by Close.
type Set struct {
	// Domain is the target domain the fixtures were made for.
	Domain string
	// Nonexistent is the common name of NonexistentCSR.
	Nonexistent string

	dir     string
	files   map[Name]*os.File
	signers map[Name]Name
}

func newSet(dir, domain, nonexistent string) *Set {
	return &Set{
		Domain:      domain,
		Nonexistent: nonexistent,
		dir:         dir,
		files:       make(map[Name]*os.File, len(Names)),
		signers:     make(map[Name]Name),
	}
}

func (s *Set) create(name Name) (string, error) {
	path := filepath.Join(s.dir, string(name)+".pem")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create fixture %s: %w", name, err)
	}
	s.files[name] = f
	return path, nil
}

// Dir is the directory holding the fixtures.
func (s *Set) Dir() string {
	return s.dir
}

// File returns the open handle for name, or nil.
func (s *Set) File(name Name) *os.File {
	return s.files[name]
}

// Path returns the file path for name, or "".
func (s *Set) Path(name Name) string {
	if f := s.files[name]; f != nil {
		return f.Name()
	}
	return ""
}

// Files returns the name to handle mapping.
func (s *Set) Files() map[Name]*os.File {
	files := make(map[Name]*os.File, len(s.files))
	for name, f := range s.files {
		files[name] = f
	}
	return files
}

// Len is the number of fixtures held.
func (s *Set) Len() int {
	return len(s.files)
}

// Signer returns the key fixture that signed the CSR fixture name.
func (s *Set) Signer(name Name) (Name, bool) {
	signer, ok := s.signers[name]
	return signer, ok
}

// Read returns the current contents of fixture name.
func (s *Set) Read(name Name) ([]byte, error) {
	path := s.Path(name)
	if path == "" {
		return nil, fmt.Errorf("no fixture %q", name)
	}
	return os.ReadFile(path)
}

// Export copies every fixture into dir as <name>.pem, creating dir as needed.
// The copies outlive Close.
func (s *Set) Export(dir string) error {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, string(name))
	}
	sort.Strings(names)

	for _, name := range names {
		dst := filepath.Join(dir, name+".pem")
		if err := copy.Copy(s.Path(Name(name)), dst); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

// Close closes every handle and removes the fixture directory.
func (s *Set) Close() error {
	var errs []error
	for _, f := range s.files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if err := os.RemoveAll(s.dir); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
