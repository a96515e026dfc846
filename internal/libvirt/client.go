package libvirt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket/dialers"
)

const (
	// DefaultURI is used when no connection URI is configured.
	DefaultURI = string(libvirt.QEMUSystem)

	// DefaultTimeout bounds the initial socket dial.
	DefaultTimeout = 5 * time.Second

	systemSocket   = "/var/run/libvirt/libvirt-sock"
	systemSocketRO = "/var/run/libvirt/libvirt-sock-ro"
)

// ErrConnect is wrapped by every error returned from Connect and
// ConnectWithContext, so callers can tell connection failures apart from
// failures that happen later on an established connection.
var ErrConnect = errors.New("libvirt connection failed")

// Options configures a connection to the hypervisor.
type Options struct {
	// URI is the libvirt connection URI, e.g. qemu:///system or
	// qemu+tcp://host/system. Defaults to DefaultURI.
	URI string

	// ReadOnly opens the connection through the read-only socket when the
	// URI points at the local system daemon.
	ReadOnly bool

	// Timeout for dialing the local socket. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger receives connection diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Client wraps a go-libvirt connection.
type Client struct {
	libvirt *libvirt.Libvirt
	uri     *url.URL
	logger  *slog.Logger
}

// Connect establishes a connection to the libvirt daemon named by opts.URI.
// It returns a Client that must be closed via Close() when done.
//
// Local URIs (no host component) are dialed through a unix socket so the
// read-only socket can be selected; remote URIs use the transport named in
// the URI scheme.
func Connect(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	uri, err := ParseURI(opts.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	var l *libvirt.Libvirt
	if IsLocal(uri) {
		socket := SocketPath(uri, opts.ReadOnly)
		dialer := dialers.NewLocal(
			dialers.WithSocket(socket),
			dialers.WithLocalTimeout(opts.Timeout),
		)

		l = libvirt.NewWithDialer(dialer)
		if err := l.ConnectToURI(libvirt.ConnectURI(driverURI(uri))); err != nil {
			return nil, fmt.Errorf("%w: %s via %s: %w", ErrConnect, uri.Redacted(), socket, err)
		}
		logger.Debug("libvirt connected", "uri", uri.Redacted(), "socket", socket, "read_only", opts.ReadOnly)
	} else {
		l, err = libvirt.ConnectToURI(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConnect, uri.Redacted(), err)
		}
		if opts.ReadOnly {
			logger.Debug("read-only mode is not enforced for remote transports", "uri", uri.Redacted())
		}
		logger.Debug("libvirt connected", "uri", uri.Redacted())
	}

	return &Client{libvirt: l, uri: uri, logger: logger}, nil
}

// ConnectWithContext establishes a connection with context support for cancellation.
func ConnectWithContext(ctx context.Context, opts Options) (*Client, error) {
	type result struct {
		client *Client
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		c, err := Connect(opts)
		resultCh <- result{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		// A connection that completes after cancellation is closed so the
		// socket is not leaked.
		go func() {
			if res := <-resultCh; res.client != nil {
				_ = res.client.Close()
			}
		}()
		return nil, fmt.Errorf("%w: connection cancelled: %w", ErrConnect, ctx.Err())
	case res := <-resultCh:
		return res.client, res.err
	}
}

// Close closes the libvirt connection and releases resources.
// It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.libvirt == nil {
		return nil
	}

	l := c.libvirt
	c.libvirt = nil
	if err := l.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from libvirt: %w", err)
	}
	c.logger.Debug("libvirt disconnected", "uri", c.uri.Redacted())

	return nil
}

// Libvirt returns the underlying go-libvirt client for direct API access.
// Consumers should accept it through their own narrow interfaces.
func (c *Client) Libvirt() *libvirt.Libvirt {
	return c.libvirt
}

// URI returns the parsed connection URI.
func (c *Client) URI() *url.URL {
	return c.uri
}

// Ping verifies the connection is still alive by calling a simple libvirt API.
func (c *Client) Ping() error {
	if c.libvirt == nil {
		return fmt.Errorf("client not connected")
	}

	if _, err := c.libvirt.ConnectGetLibVersion(); err != nil {
		return fmt.Errorf("libvirt connection is dead: %w", err)
	}

	return nil
}

// ParseURI parses a libvirt connection URI. An empty string yields
// DefaultURI; a value without a scheme is rejected.
func ParseURI(raw string) (*url.URL, error) {
	if raw == "" {
		raw = DefaultURI
	}
	uri, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse libvirt uri %q: %w", raw, err)
	}
	if uri.Scheme == "" {
		return nil, fmt.Errorf("libvirt uri %q has no driver scheme", raw)
	}
	return uri, nil
}

// IsLocal reports whether the URI addresses a daemon on this host through
// a unix socket.
func IsLocal(uri *url.URL) bool {
	if uri.Host != "" {
		return false
	}
	_, transport, _ := strings.Cut(uri.Scheme, "+")
	return transport == "" || transport == "unix"
}

// SocketPath returns the unix socket to dial for a local URI. The libvirt
// "socket" URI parameter wins; session URIs use the per-user socket;
// everything else uses the system socket, read-only when requested.
func SocketPath(uri *url.URL, readOnly bool) string {
	if s := uri.Query().Get("socket"); s != "" {
		return s
	}
	if uri.Path == "/session" {
		runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
		if runtimeDir == "" {
			runtimeDir = filepath.Join(os.TempDir(), fmt.Sprintf("libvirt-%d", os.Getuid()))
		}
		return filepath.Join(runtimeDir, "libvirt", "libvirt-sock")
	}
	if readOnly {
		return systemSocketRO
	}
	return systemSocket
}

// driverURI strips the transport and query parameters, leaving the URI the
// daemon expects in its open call (qemu+unix:///system?socket=x -> qemu:///system).
// An explicit "name" parameter is passed through as is.
func driverURI(uri *url.URL) string {
	if name := uri.Query().Get("name"); name != "" {
		return name
	}
	driver, _, _ := strings.Cut(uri.Scheme, "+")
	u := url.URL{Scheme: driver, Host: uri.Host, Path: uri.Path}
	if u.Host == "" {
		return u.Scheme + "://" + u.Path
	}
	return u.String()
}
