package inventory

import (
	"fmt"
)

// EnumerationError is returned when both the bulk listing call and the
// legacy listing sequence failed.
type EnumerationError struct {
	Bulk   error
	Legacy error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to enumerate domains: bulk listing: %v; legacy listing: %v", e.Bulk, e.Legacy)
}

func (e *EnumerationError) Unwrap() []error {
	return []error{e.Bulk, e.Legacy}
}

// DomainDetailError is returned when a core attribute (name, state, info)
// of an enumerated domain cannot be read.
type DomainDetailError struct {
	Domain string
	Op     string
	Err    error
}

func (e *DomainDetailError) Error() string {
	return fmt.Sprintf("failed to get %s of domain %s: %v", e.Op, e.Domain, e.Err)
}

func (e *DomainDetailError) Unwrap() error {
	return e.Err
}
