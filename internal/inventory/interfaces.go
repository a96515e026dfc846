package inventory

import (
	"github.com/digitalocean/go-libvirt"
)

// LibvirtClient defines the libvirt operations needed to build an inventory.
//
// In production, this is satisfied by *libvirt.Libvirt directly.
// In tests, this is satisfied by mock implementations.
type LibvirtClient interface {
	// ConnectListAllDomains lists domain handles in one call (bulk API)
	ConnectListAllDomains(needResults int32, flags libvirt.ConnectListAllDomainsFlags) ([]libvirt.Domain, uint32, error)

	// ConnectNumOfDomains counts running domains (legacy API)
	ConnectNumOfDomains() (int32, error)

	// ConnectListDomains lists running domain IDs (legacy API)
	ConnectListDomains(maxids int32) ([]int32, error)

	// ConnectNumOfDefinedDomains counts defined, inactive domains (legacy API)
	ConnectNumOfDefinedDomains() (int32, error)

	// ConnectListDefinedDomains lists defined, inactive domain names (legacy API)
	ConnectListDefinedDomains(maxnames int32) ([]string, error)

	// DomainLookupByID resolves a running domain ID to a handle
	DomainLookupByID(id int32) (libvirt.Domain, error)

	// DomainLookupByName resolves a domain name to a handle
	DomainLookupByName(name string) (libvirt.Domain, error)

	// DomainGetState gets the state of a domain
	DomainGetState(dom libvirt.Domain, flags uint32) (state int32, reason int32, err error)

	// DomainGetInfo gets state, memory, vCPU count and CPU time of a domain
	DomainGetInfo(dom libvirt.Domain) (state uint8, maxMem uint64, memory uint64, nrVirtCPU uint16, cpuTime uint64, err error)

	// DomainInterfaceAddresses lists guest interfaces from the given address source
	DomainInterfaceAddresses(dom libvirt.Domain, source uint32, flags uint32) ([]libvirt.DomainInterface, error)

	// DomainInterfaceStats reads traffic counters for one interface (name or MAC)
	DomainInterfaceStats(dom libvirt.Domain, device string) (rxBytes, rxPackets, rxErrs, rxDrop, txBytes, txPackets, txErrs, txDrop int64, err error)

	// DomainGetXMLDesc returns the domain definition XML
	DomainGetXMLDesc(dom libvirt.Domain, flags libvirt.DomainXMLFlags) (string, error)
}
