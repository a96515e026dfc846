package inventory

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/digitalocean/go-libvirt"
	"libvirt.org/go/libvirtxml"
)

// AddressSource selects where interface and address data comes from.
type AddressSource string

const (
	// SourceLease reads the DHCP leases of libvirt-managed networks.
	SourceLease AddressSource = "lease"
	// SourceAgent queries the guest agent.
	SourceAgent AddressSource = "agent"
	// SourceARP reads the host ARP table.
	SourceARP AddressSource = "arp"
	// SourceDefinition lists the interfaces of the domain XML. It reports no
	// addresses but works for bridged guests without leases or an agent.
	SourceDefinition AddressSource = "definition"
)

// AddressSources lists the accepted address sources.
var AddressSources = []AddressSource{SourceLease, SourceAgent, SourceARP, SourceDefinition}

// ParseAddressSource validates an address source name. An empty string
// selects SourceLease.
func ParseAddressSource(s string) (AddressSource, error) {
	if s == "" {
		return SourceLease, nil
	}
	for _, src := range AddressSources {
		if AddressSource(s) == src {
			return src, nil
		}
	}
	return "", fmt.Errorf("invalid address source: %s (valid sources: lease, agent, arp, definition)", s)
}

// CollectInterfaces returns the interfaces of dom with their traffic
// counters. It never fails: if the interface list cannot be obtained the
// result is NotCollected.
//
// An interface whose counters cannot be read, or that has no hardware
// address to key the lookup, is left out; the remaining interfaces are
// still returned.
func CollectInterfaces(lv LibvirtClient, dom libvirt.Domain, source AddressSource, logger *slog.Logger) InterfaceList {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if source == "" {
		source = SourceLease
	}

	ifaces, err := lookupInterfaces(lv, dom, source)
	if err != nil {
		logger.Warn("interface data unavailable", "domain", dom.Name, "source", source, "error", err)
		return NotCollected()
	}

	stats := make([]InterfaceStat, 0, len(ifaces))
	statsFailed := 0
	for _, iface := range ifaces {
		var hwaddr string
		if len(iface.Hwaddr) > 0 {
			hwaddr = iface.Hwaddr[0]
		}
		if hwaddr == "" {
			logger.Warn("skipping interface without hardware address", "domain", dom.Name, "interface", iface.Name)
			continue
		}

		rx, _, _, _, tx, _, _, _, err := lv.DomainInterfaceStats(dom, hwaddr)
		if err != nil {
			logger.Warn("skipping interface, counters unavailable", "domain", dom.Name, "interface", iface.Name, "hwaddr", hwaddr, "error", err)
			statsFailed++
			continue
		}

		addresses := make([]string, 0, len(iface.Addrs))
		for _, addr := range iface.Addrs {
			addresses = append(addresses, addr.Addr+"/"+strconv.FormatUint(uint64(addr.Prefix), 10))
		}

		stats = append(stats, InterfaceStat{
			Name:            iface.Name,
			HardwareAddress: hwaddr,
			Addresses:       addresses,
			RxBytes:         rx,
			TxBytes:         tx,
		})
	}

	// An empty list would claim the domain has no interfaces.
	if len(stats) == 0 && statsFailed > 0 {
		logger.Warn("interface counters unavailable for every interface", "domain", dom.Name, "source", source)
		return NotCollected()
	}

	return Collected(stats)
}

// lookupInterfaces fetches the raw interface list from the selected source.
func lookupInterfaces(lv LibvirtClient, dom libvirt.Domain, source AddressSource) ([]libvirt.DomainInterface, error) {
	var src libvirt.DomainInterfaceAddressesSource
	switch source {
	case SourceLease:
		src = libvirt.DomainInterfaceAddressesSrcLease
	case SourceAgent:
		src = libvirt.DomainInterfaceAddressesSrcAgent
	case SourceARP:
		src = libvirt.DomainInterfaceAddressesSrcArp
	case SourceDefinition:
		return definedInterfaces(lv, dom)
	default:
		return nil, fmt.Errorf("unsupported address source %q", source)
	}

	ifaces, err := lv.DomainInterfaceAddresses(dom, uint32(src), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get interface addresses: %w", err)
	}
	return ifaces, nil
}

// definedInterfaces lists the <interface> devices of the domain XML.
func definedInterfaces(lv LibvirtClient, dom libvirt.Domain) ([]libvirt.DomainInterface, error) {
	xmlDesc, err := lv.DomainGetXMLDesc(dom, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get domain XML: %w", err)
	}

	var def libvirtxml.Domain
	if err := def.Unmarshal(xmlDesc); err != nil {
		return nil, fmt.Errorf("failed to parse domain XML: %w", err)
	}
	if def.Devices == nil {
		return []libvirt.DomainInterface{}, nil
	}

	ifaces := make([]libvirt.DomainInterface, 0, len(def.Devices.Interfaces))
	for _, ni := range def.Devices.Interfaces {
		iface := libvirt.DomainInterface{}
		if ni.Target != nil {
			iface.Name = ni.Target.Dev
		}
		if ni.MAC != nil && ni.MAC.Address != "" {
			iface.Hwaddr = libvirt.OptString{ni.MAC.Address}
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}
