package libvirt

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"
)

// TestConnect tests basic connection functionality.
// This is an integration test that requires libvirt to be running.
func TestConnect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c, err := Connect(Options{ReadOnly: true})
	if err != nil {
		t.Skipf("libvirt not available: %v", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	if err := c.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

// TestConnect_InvalidSocket tests connection failure with invalid socket.
func TestConnect_InvalidSocket(t *testing.T) {
	_, err := Connect(Options{
		URI:     "qemu:///system?socket=/nonexistent/socket",
		Timeout: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to nonexistent socket, got nil")
	}
	if !errors.Is(err, ErrConnect) {
		t.Errorf("expected error wrapping ErrConnect, got %v", err)
	}
}

func TestConnect_InvalidURI(t *testing.T) {
	_, err := Connect(Options{URI: "not a uri"})
	if err == nil {
		t.Fatal("expected error for uri without scheme, got nil")
	}
	if !errors.Is(err, ErrConnect) {
		t.Errorf("expected error wrapping ErrConnect, got %v", err)
	}
}

// TestConnectWithContext_Cancellation tests context cancellation.
func TestConnectWithContext_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectWithContext(ctx, Options{
		URI:     "qemu:///system?socket=/nonexistent/socket",
		Timeout: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if !errors.Is(err, ErrConnect) {
		t.Errorf("expected error wrapping ErrConnect, got %v", err)
	}
}

// TestClose_Idempotent tests that Close can be called multiple times safely.
func TestClose_Idempotent(t *testing.T) {
	c := &Client{}

	if err := c.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

// TestPing_Disconnected tests Ping on a disconnected client.
func TestPing_Disconnected(t *testing.T) {
	c := &Client{libvirt: nil}

	if err := c.Ping(); err == nil {
		t.Fatal("expected error from Ping on nil client, got nil")
	}
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantScheme string
		wantErr    bool
	}{
		{name: "empty uses default", raw: "", wantScheme: "qemu"},
		{name: "system", raw: "qemu:///system", wantScheme: "qemu"},
		{name: "remote tcp", raw: "qemu+tcp://kvm01.example.com/system", wantScheme: "qemu+tcp"},
		{name: "no scheme", raw: "/var/run/libvirt/libvirt-sock", wantErr: true},
		{name: "garbage", raw: "://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Scheme != tt.wantScheme {
				t.Errorf("ParseURI(%q).Scheme = %q, want %q", tt.raw, got.Scheme, tt.wantScheme)
			}
		})
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"qemu:///system", true},
		{"qemu:///session", true},
		{"qemu+unix:///system", true},
		{"qemu+tcp://host/system", false},
		{"qemu+ssh://root@host/system", false},
		{"qemu+tls:///system", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatalf("url.Parse: %v", err)
			}
			if got := IsLocal(u); got != tt.want {
				t.Errorf("IsLocal(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	tests := []struct {
		name     string
		raw      string
		readOnly bool
		want     string
	}{
		{name: "system read-write", raw: "qemu:///system", want: "/var/run/libvirt/libvirt-sock"},
		{name: "system read-only", raw: "qemu:///system", readOnly: true, want: "/var/run/libvirt/libvirt-sock-ro"},
		{name: "socket parameter wins", raw: "qemu:///system?socket=/tmp/sock", readOnly: true, want: "/tmp/sock"},
		{name: "session", raw: "qemu:///session", readOnly: true, want: "/run/user/1000/libvirt/libvirt-sock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatalf("url.Parse: %v", err)
			}
			if got := SocketPath(u, tt.readOnly); got != tt.want {
				t.Errorf("SocketPath(%q, %v) = %q, want %q", tt.raw, tt.readOnly, got, tt.want)
			}
		})
	}
}

func TestDriverURI(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"qemu:///system", "qemu:///system"},
		{"qemu+unix:///system?socket=/tmp/sock", "qemu:///system"},
		{"qemu:///session", "qemu:///session"},
		{"qemu+unix:///system?name=qemu:///embed", "qemu:///embed"},
		{"qemu+unix:///system?socket=/tmp/sock&name=qemu:///session", "qemu:///session"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatalf("url.Parse: %v", err)
			}
			if got := driverURI(u); got != tt.want {
				t.Errorf("driverURI(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
