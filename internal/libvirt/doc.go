// Package libvirt provides a client wrapper for interacting with libvirt.
//
// This package wraps github.com/digitalocean/go-libvirt to provide
// connection management (connect, disconnect, ping) for any libvirt URI:
//
//	client, err := libvirt.Connect(libvirt.Options{
//	    URI:      "qemu:///system",
//	    ReadOnly: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Local URIs are dialed through a unix socket, which lets ReadOnly select
// libvirt-sock-ro. Remote URIs (qemu+tcp, qemu+tls, qemu+ssh) are handed to
// go-libvirt's URI dialer.
//
// Diagnostics go to the Logger passed in Options. There is no process-wide
// error handler; a nil Logger keeps the client silent.
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces. Consumers (internal/inventory)
// define their own interfaces specifying only the operations they need. The
// *libvirt.Libvirt returned by Client.Libvirt satisfies them implicitly.
package libvirt
