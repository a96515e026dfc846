package inventory

import (
	"errors"
	"sync"

	"github.com/digitalocean/go-libvirt"
)

var errBulkUnsupported = errors.New("unsupported procedure: remoteConnectListAllDomains")

// mockLibvirtClient is a mock implementation of LibvirtClient for testing.
type mockLibvirtClient struct {
	mu sync.Mutex

	// Configurable behavior
	connectListAllDomainsFunc      func(needResults int32, flags libvirt.ConnectListAllDomainsFlags) ([]libvirt.Domain, uint32, error)
	connectNumOfDomainsFunc        func() (int32, error)
	connectListDomainsFunc         func(maxids int32) ([]int32, error)
	connectNumOfDefinedDomainsFunc func() (int32, error)
	connectListDefinedDomainsFunc  func(maxnames int32) ([]string, error)
	domainLookupByIDFunc           func(id int32) (libvirt.Domain, error)
	domainLookupByNameFunc         func(name string) (libvirt.Domain, error)
	domainGetStateFunc             func(dom libvirt.Domain, flags uint32) (int32, int32, error)
	domainGetInfoFunc              func(dom libvirt.Domain) (uint8, uint64, uint64, uint16, uint64, error)
	domainInterfaceAddressesFunc   func(dom libvirt.Domain, source uint32, flags uint32) ([]libvirt.DomainInterface, error)
	domainInterfaceStatsFunc       func(dom libvirt.Domain, device string) (int64, int64, int64, int64, int64, int64, int64, int64, error)
	domainGetXMLDescFunc           func(dom libvirt.Domain, flags libvirt.DomainXMLFlags) (string, error)

	// Call tracking
	connectListAllDomainsFlags      []libvirt.ConnectListAllDomainsFlags
	connectNumOfDomainsCalls        int
	connectListDomainsCalls         int
	connectNumOfDefinedDomainsCalls int
	connectListDefinedDomainsCalls  int
	domainLookupByIDCalls           []int32
	domainLookupByNameCalls         []string
	domainGetStateCalls             []string
	domainGetInfoCalls              []string
	domainInterfaceAddressesSources []uint32
	domainInterfaceStatsCalls       []string
	domainGetXMLDescCalls           []string
}

// newMockLibvirtClient creates a mock with no domains where every call
// succeeds. Domains default to running with 1 GiB and 1 vCPU.
func newMockLibvirtClient() *mockLibvirtClient {
	m := &mockLibvirtClient{}

	m.connectListAllDomainsFunc = func(needResults int32, flags libvirt.ConnectListAllDomainsFlags) ([]libvirt.Domain, uint32, error) {
		return []libvirt.Domain{}, 0, nil
	}
	m.connectNumOfDomainsFunc = func() (int32, error) {
		return 0, nil
	}
	m.connectListDomainsFunc = func(maxids int32) ([]int32, error) {
		return []int32{}, nil
	}
	m.connectNumOfDefinedDomainsFunc = func() (int32, error) {
		return 0, nil
	}
	m.connectListDefinedDomainsFunc = func(maxnames int32) ([]string, error) {
		return []string{}, nil
	}
	m.domainLookupByIDFunc = func(id int32) (libvirt.Domain, error) {
		return libvirt.Domain{Name: "vm-by-id", ID: id}, nil
	}
	m.domainLookupByNameFunc = func(name string) (libvirt.Domain, error) {
		return libvirt.Domain{Name: name, ID: -1}, nil
	}
	m.domainGetStateFunc = func(dom libvirt.Domain, flags uint32) (int32, int32, error) {
		return 1, 0, nil // VIR_DOMAIN_RUNNING
	}
	m.domainGetInfoFunc = func(dom libvirt.Domain) (uint8, uint64, uint64, uint16, uint64, error) {
		return 1, 1048576, 1048576, 1, 1000000000, nil
	}
	m.domainInterfaceAddressesFunc = func(dom libvirt.Domain, source uint32, flags uint32) ([]libvirt.DomainInterface, error) {
		return []libvirt.DomainInterface{}, nil
	}
	m.domainInterfaceStatsFunc = func(dom libvirt.Domain, device string) (int64, int64, int64, int64, int64, int64, int64, int64, error) {
		return 0, 0, 0, 0, 0, 0, 0, 0, nil
	}
	m.domainGetXMLDescFunc = func(dom libvirt.Domain, flags libvirt.DomainXMLFlags) (string, error) {
		return "<domain type='kvm'><name>" + dom.Name + "</name></domain>", nil
	}

	return m
}

// legacyCalls reports whether any legacy listing call was issued.
func (m *mockLibvirtClient) legacyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectNumOfDomainsCalls + m.connectListDomainsCalls +
		m.connectNumOfDefinedDomainsCalls + m.connectListDefinedDomainsCalls +
		len(m.domainLookupByIDCalls) + len(m.domainLookupByNameCalls)
}

func (m *mockLibvirtClient) ConnectListAllDomains(needResults int32, flags libvirt.ConnectListAllDomainsFlags) ([]libvirt.Domain, uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectListAllDomainsFlags = append(m.connectListAllDomainsFlags, flags)
	return m.connectListAllDomainsFunc(needResults, flags)
}

func (m *mockLibvirtClient) ConnectNumOfDomains() (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectNumOfDomainsCalls++
	return m.connectNumOfDomainsFunc()
}

func (m *mockLibvirtClient) ConnectListDomains(maxids int32) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectListDomainsCalls++
	return m.connectListDomainsFunc(maxids)
}

func (m *mockLibvirtClient) ConnectNumOfDefinedDomains() (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectNumOfDefinedDomainsCalls++
	return m.connectNumOfDefinedDomainsFunc()
}

func (m *mockLibvirtClient) ConnectListDefinedDomains(maxnames int32) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectListDefinedDomainsCalls++
	return m.connectListDefinedDomainsFunc(maxnames)
}

func (m *mockLibvirtClient) DomainLookupByID(id int32) (libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainLookupByIDCalls = append(m.domainLookupByIDCalls, id)
	return m.domainLookupByIDFunc(id)
}

func (m *mockLibvirtClient) DomainLookupByName(name string) (libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainLookupByNameCalls = append(m.domainLookupByNameCalls, name)
	return m.domainLookupByNameFunc(name)
}

func (m *mockLibvirtClient) DomainGetState(dom libvirt.Domain, flags uint32) (int32, int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainGetStateCalls = append(m.domainGetStateCalls, dom.Name)
	return m.domainGetStateFunc(dom, flags)
}

func (m *mockLibvirtClient) DomainGetInfo(dom libvirt.Domain) (uint8, uint64, uint64, uint16, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainGetInfoCalls = append(m.domainGetInfoCalls, dom.Name)
	return m.domainGetInfoFunc(dom)
}

func (m *mockLibvirtClient) DomainInterfaceAddresses(dom libvirt.Domain, source uint32, flags uint32) ([]libvirt.DomainInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainInterfaceAddressesSources = append(m.domainInterfaceAddressesSources, source)
	return m.domainInterfaceAddressesFunc(dom, source, flags)
}

func (m *mockLibvirtClient) DomainInterfaceStats(dom libvirt.Domain, device string) (int64, int64, int64, int64, int64, int64, int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainInterfaceStatsCalls = append(m.domainInterfaceStatsCalls, device)
	return m.domainInterfaceStatsFunc(dom, device)
}

func (m *mockLibvirtClient) DomainGetXMLDesc(dom libvirt.Domain, flags libvirt.DomainXMLFlags) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainGetXMLDescCalls = append(m.domainGetXMLDescCalls, dom.Name)
	return m.domainGetXMLDescFunc(dom, flags)
}

// statsByMAC returns a DomainInterfaceStats func reporting fixed rx/tx
// counters per hardware address. Unknown addresses fail.
func statsByMAC(counters map[string][2]int64) func(libvirt.Domain, string) (int64, int64, int64, int64, int64, int64, int64, int64, error) {
	return func(dom libvirt.Domain, device string) (int64, int64, int64, int64, int64, int64, int64, int64, error) {
		c, ok := counters[device]
		if !ok {
			return 0, 0, 0, 0, 0, 0, 0, 0, errors.New("invalid path, '" + device + "' is not a known interface")
		}
		return c[0], 0, 0, 0, c[1], 0, 0, 0, nil
	}
}
