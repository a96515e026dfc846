package inventory

import (
	"fmt"

	"github.com/digitalocean/go-libvirt"
)

// DomainState is the canonical run state of a domain.
type DomainState uint8

const (
	StateNoState DomainState = iota
	StateRunning
	StateBlocked
	StatePaused
	StateShutdown
	StateShutoff
	StateCrashed
	StatePMSuspended
	// StateUnknown covers every code outside the range above, including
	// states added by newer hypervisor versions.
	StateUnknown
)

var stateNames = [...]string{
	StateNoState:     "none",
	StateRunning:     "running",
	StateBlocked:     "blocked",
	StatePaused:      "paused",
	StateShutdown:    "shutdown",
	StateShutoff:     "shutoff",
	StateCrashed:     "crashed",
	StatePMSuspended: "suspended",
	StateUnknown:     "unknown",
}

// StateFromCode maps a raw hypervisor state code to a DomainState.
// It is total: codes it does not know map to StateUnknown.
func StateFromCode(code uint32) DomainState {
	switch libvirt.DomainState(code) {
	case libvirt.DomainNostate:
		return StateNoState
	case libvirt.DomainRunning:
		return StateRunning
	case libvirt.DomainBlocked:
		return StateBlocked
	case libvirt.DomainPaused:
		return StatePaused
	case libvirt.DomainShutdown:
		return StateShutdown
	case libvirt.DomainShutoff:
		return StateShutoff
	case libvirt.DomainCrashed:
		return StateCrashed
	case libvirt.DomainPmsuspended:
		return StatePMSuspended
	default:
		return StateUnknown
	}
}

// StateFromInfo normalizes the narrower state embedded in the info tuple.
func StateFromInfo(code uint8) DomainState {
	return StateFromCode(uint32(code))
}

// String returns the lowercase display name of the state.
func (s DomainState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return stateNames[StateUnknown]
}

// MarshalText implements encoding.TextMarshaler, so the state serializes as
// its display name in both JSON and YAML.
func (s DomainState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DomainState) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = DomainState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown domain state %q", text)
}
