package inventory

import (
	"encoding/json"
)

// DomainRecord is a snapshot of one domain at collection time.
type DomainRecord struct {
	Name string `json:"name" yaml:"name"`
	// UUID is used for log and metric labels; it is not part of the
	// serialized record.
	UUID      string      `json:"-" yaml:"-"`
	State     DomainState `json:"state" yaml:"state"`
	MaxMemory uint64      `json:"max_mem" yaml:"max_mem"` // KiB
	Memory    uint64      `json:"memory" yaml:"memory"`   // KiB
	VCPUs     uint32      `json:"nr_virt_cpu" yaml:"nr_virt_cpu"`
	// CPUTime is cumulative nanoseconds since the domain started.
	CPUTime    uint64        `json:"cpu_time" yaml:"cpu_time"`
	Interfaces InterfaceList `json:"ifaces,omitzero" yaml:"ifaces,omitempty"`
}

// InterfaceStat is one network interface of a domain with its counters.
type InterfaceStat struct {
	Name            string   `json:"name" yaml:"name"`
	HardwareAddress string   `json:"-" yaml:"-"`
	Addresses       []string `json:"addresses" yaml:"addresses"`
	// RxBytes and TxBytes are passed through from the hypervisor; -1 means
	// the counter is not supported.
	RxBytes int64 `json:"rx_bytes" yaml:"rx_bytes"`
	TxBytes int64 `json:"tx_bytes" yaml:"tx_bytes"`
}

// InterfaceList holds the interfaces of a domain, or records that they were
// not collected. "Not collected" and "collected, zero interfaces" are
// distinct: the first is omitted from serialized output, the second
// serializes as an empty list.
type InterfaceList struct {
	items     []InterfaceStat
	collected bool
}

// Collected returns a list holding items. A nil slice is stored as empty.
func Collected(items []InterfaceStat) InterfaceList {
	if items == nil {
		items = []InterfaceStat{}
	}
	return InterfaceList{items: items, collected: true}
}

// NotCollected returns a list that records interface data as unavailable.
func NotCollected() InterfaceList {
	return InterfaceList{}
}

// Get returns the interfaces and whether they were collected.
func (l InterfaceList) Get() ([]InterfaceStat, bool) {
	return l.items, l.collected
}

// IsZero reports whether interfaces were not collected. encoding/json
// (omitzero) and yaml.v3 (omitempty) use it to drop the field.
func (l InterfaceList) IsZero() bool {
	return !l.collected
}

// Totals sums the receive and transmit counters. Counters reported as
// unsupported (negative) are left out of the sums.
func (l InterfaceList) Totals() (rx, tx int64) {
	for _, iface := range l.items {
		if iface.RxBytes > 0 {
			rx += iface.RxBytes
		}
		if iface.TxBytes > 0 {
			tx += iface.TxBytes
		}
	}
	return rx, tx
}

// MarshalJSON implements json.Marshaler.
func (l InterfaceList) MarshalJSON() ([]byte, error) {
	if !l.collected {
		return []byte("null"), nil
	}
	return json.Marshal(l.items)
}

// UnmarshalJSON implements json.Unmarshaler. null decodes as not collected.
func (l *InterfaceList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = NotCollected()
		return nil
	}
	var items []InterfaceStat
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = Collected(items)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l InterfaceList) MarshalYAML() (any, error) {
	if !l.collected {
		return nil, nil
	}
	return l.items, nil
}
