// Package inventory collects a snapshot of the domains on one hypervisor
// connection and normalizes it into DomainRecord values.
//
// The pipeline is:
//   - Enumerate: list domain handles with the bulk call, falling back to
//     the legacy per-ID and per-name calls when the bulk call fails
//   - Build: fetch state and info for every handle and assemble records
//     in enumeration order
//   - CollectInterfaces: attach interface addresses and traffic counters
//     when requested
//
// Error Handling:
//
// Enumeration fails only when both listing strategies fail
// (EnumerationError). A domain whose name, state or info cannot be read
// fails the whole run (DomainDetailError). Interface data never fails the
// run: when it cannot be obtained the record's Interfaces is NotCollected,
// which serializers omit.
//
// Testing:
//
// All hypervisor access goes through the LibvirtClient interface, which
// *libvirt.Libvirt satisfies directly and which tests replace with mocks.
package inventory
