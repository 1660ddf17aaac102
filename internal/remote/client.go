// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ClientConfig configures the SSH transport.
type ClientConfig struct {
	// KeyPath is the private key used to authenticate. Empty tries
	// ~/.ssh/id_ed25519 and falls back to no key-based auth.
	KeyPath string
	// Port is the remote sshd port.
	Port int
	// KnownHostsPath enables host-key verification when set; empty skips
	// verification.
	KnownHostsPath string
	// ConnectTimeout bounds the TCP/SSH handshake, not command execution.
	ConnectTimeout time.Duration
}

// DefaultClientConfig returns the default transport settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Port:           22,
		ConnectTimeout: 10 * time.Second,
	}
}

// Client runs scripts on one user@host endpoint. The underlying connection
// is established lazily and reused across dispatches.
type Client struct {
	user string
	host string
	cfg  ClientConfig

	mu   sync.Mutex // protects sshc
	sshc *ssh.Client
}

// NewClient creates a client for a user@host endpoint. No connection is
// made until the first Run.
func NewClient(endpoint string, cfg ClientConfig) (*Client, error) {
	user, host, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &Client{user: user, host: host, cfg: cfg}, nil
}

// splitEndpoint splits user@host on the last '@'.
func splitEndpoint(endpoint string) (user, host string, err error) {
	at := strings.LastIndex(endpoint, "@")
	if at <= 0 || at == len(endpoint)-1 {
		return "", "", fmt.Errorf("malformed endpoint %q: want user@host", endpoint)
	}
	return endpoint[:at], endpoint[at+1:], nil
}

// Endpoint returns the user@host pair this client dispatches to.
func (c *Client) Endpoint() string {
	return c.user + "@" + c.host
}

// connect dials the endpoint, reusing an existing connection.
func (c *Client) connect() (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sshc != nil {
		return c.sshc, nil
	}

	auth, err := c.authMethods()
	if err != nil {
		return nil, err
	}

	hostKey := ssh.InsecureIgnoreHostKey() //nolint:gosec // operator opted out of verification
	if c.cfg.KnownHostsPath != "" {
		hostKey, err = knownhosts.New(c.cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts %q: %w", c.cfg.KnownHostsPath, err)
		}
	}

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.cfg.Port))
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            c.user,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         c.cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.Endpoint(), err)
	}

	c.sshc = conn
	return conn, nil
}

// authMethods builds the auth chain from the configured key, tolerating a
// missing default key (the server may accept agent or none auth).
func (c *Client) authMethods() ([]ssh.AuthMethod, error) {
	keyPath := c.cfg.KeyPath
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		keyPath = filepath.Join(home, ".ssh", "id_ed25519")
	}

	pem, err := os.ReadFile(keyPath)
	if err != nil {
		if c.cfg.KeyPath == "" && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ssh key %q: %w", keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %q: %w", keyPath, err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

// Run executes script on the remote host, streaming output to stdout and
// stderr, and returns the remote exit status. The call blocks until the
// remote command finishes, the connection fails, or ctx is cancelled.
func (c *Client) Run(ctx context.Context, script string, stdout, stderr io.Writer) (int, error) {
	conn, err := c.connect()
	if err != nil {
		return -1, err
	}

	session, err := conn.NewSession()
	if err != nil {
		return -1, fmt.Errorf("open session on %s: %w", c.Endpoint(), err)
	}
	defer session.Close()

	session.Stdout = stdout
	session.Stderr = stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(script)
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return -1, ctx.Err()
	case err = <-done:
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitStatus(), nil
		}
		return -1, fmt.Errorf("run on %s: %w", c.Endpoint(), err)
	}
	return 0, nil
}

// Close tears down the connection, if one was established.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sshc == nil {
		return nil
	}
	err := c.sshc.Close()
	c.sshc = nil
	return err
}
