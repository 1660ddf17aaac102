// SPDX-License-Identifier: MPL-2.0

package sshtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	gossh "golang.org/x/crypto/ssh"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Server is a shell-evaluating SSH server bound to a loopback port.
// A Server instance is single-use: once closed, create a new instance.
type Server struct {
	srv *ssh.Server
	ln  net.Listener

	mu     sync.Mutex // protects closed
	closed bool
}

// Start creates and starts a server on an ephemeral loopback port. Any
// public key authenticates; the server exists to exercise the transport,
// not to guard anything.
func Start() (*Server, error) {
	srv, err := wish.NewServer(
		wish.WithPublicKeyAuth(func(ssh.Context, ssh.PublicKey) bool { return true }),
		wish.WithMiddleware(func(ssh.Handler) ssh.Handler { return handleExec }),
	)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	s := &Server{srv: srv, ln: ln}
	go func() { _ = srv.Serve(ln) }()
	return s, nil
}

// Port returns the bound TCP port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Close stops the server. Safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.srv.Close()
}

// handleExec parses the session's exec request as a shell program and runs
// it with an embedded interpreter against an empty environment, mirroring
// what `ssh host 'script'` does on a real deployment host.
func handleExec(sess ssh.Session) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(sess.RawCommand()), "remote")
	if err != nil {
		fmt.Fprintf(sess.Stderr(), "parse: %v\n", err)
		_ = sess.Exit(2)
		return
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron()),
		interp.StdIO(sess, sess, sess.Stderr()),
	)
	if err != nil {
		_ = sess.Exit(2)
		return
	}

	if err := runner.Run(sess.Context(), prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			_ = sess.Exit(int(status))
			return
		}
		fmt.Fprintf(sess.Stderr(), "run: %v\n", err)
		_ = sess.Exit(2)
		return
	}
	_ = sess.Exit(0)
}

// WriteClientKey writes a fresh ed25519 private key in OpenSSH format under
// dir and returns its path. The server accepts any key, so one generated
// per test is enough.
func WriteClientKey(dir string) (string, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	block, err := gossh.MarshalPrivateKey(priv, "sshtest client key")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
