// SPDX-License-Identifier: LGPL-3.0-or-later

package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// DefaultOpenSSLCommand is used when no command is configured.
const DefaultOpenSSLCommand = "openssl"

// OpenSSL runs the openssl command line tool once per Request.
type OpenSSL struct {
	// Command is the program and any leading arguments, e.g. ["openssl"] or
	// ["docker", "run", "--rm", "alpine/openssl"].
	Command []string
}

// NewOpenSSL splits command with shell quoting rules. An empty command means
// DefaultOpenSSLCommand.
func NewOpenSSL(command string) (*OpenSSL, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultOpenSSLCommand
	}

	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse openssl command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty openssl command")
	}

	return &OpenSSL{Command: argv}, nil
}

// Generate implements Tool.
func (o *OpenSSL) Generate(ctx context.Context, req Request) error {
	args, err := o.args(req)
	if err != nil {
		return err
	}

	argv := append(append([]string{}, o.Command[1:]...), args...)
	cmd := exec.CommandContext(ctx, o.Command[0], argv...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", o.Command[0], args[0], err, bytes.TrimSpace(out))
	}

	return nil
}

func (o *OpenSSL) args(req Request) ([]string, error) {
	switch req.Kind {
	case KindKey:
		return []string{"genrsa", "-out", req.Out, strconv.Itoa(req.Bits)}, nil

	case KindCSR:
		if req.NewKeyOut != "" {
			return []string{
				"req", "-newkey", "rsa:" + strconv.Itoa(req.Bits), "-nodes",
				"-keyout", req.NewKeyOut,
				"-subj", req.Subject(),
				"-out", req.Out,
			}, nil
		}

		args := []string{"req", "-new", "-sha256", "-key", req.KeyIn, "-subj", req.Subject()}
		if req.Extensions != "" {
			args = append(args, "-reqexts", req.Extensions, "-config", req.ConfigFile)
		}
		return append(args, "-out", req.Out), nil

	default:
		return nil, fmt.Errorf("unsupported request kind %s", req.Kind)
	}
}

var _ Tool = (*OpenSSL)(nil)
