package inventory

import (
	"fmt"
	"log/slog"

	"github.com/digitalocean/go-libvirt"
)

// listStrategy is one way of obtaining the domain handles.
type listStrategy struct {
	name string
	list func() ([]libvirt.Domain, error)
}

// firstSuccess runs strategies in order and returns the result of the first
// one that succeeds. Later strategies are never run once one succeeds.
// onFailure is called for every failing strategy that has a successor.
func firstSuccess(strategies []listStrategy, onFailure func(name string, err error)) ([]libvirt.Domain, []error) {
	errs := make([]error, 0, len(strategies))
	for i, s := range strategies {
		domains, err := s.list()
		if err == nil {
			return domains, nil
		}
		errs = append(errs, err)
		if i < len(strategies)-1 && onFailure != nil {
			onFailure(s.name, err)
		}
	}
	return nil, errs
}

// Enumerate returns the handles of the domains selected by
// opts.IncludeInactive: running domains only, or running and defined ones.
//
// The bulk ConnectListAllDomains call is tried first. If it fails (older
// daemons lack it) the legacy calls are used instead: running IDs resolved
// by ID, then, when inactive domains are wanted, defined names resolved by
// name. The results of the two paths are never merged. The returned order
// is whatever the hypervisor reports.
func Enumerate(lv LibvirtClient, opts Options) ([]libvirt.Domain, error) {
	logger := opts.logger()

	strategies := []listStrategy{
		{name: "bulk", list: func() ([]libvirt.Domain, error) {
			return listAll(lv, opts.IncludeInactive)
		}},
		{name: "legacy", list: func() ([]libvirt.Domain, error) {
			return listLegacy(lv, opts.IncludeInactive)
		}},
	}

	domains, errs := firstSuccess(strategies, func(name string, err error) {
		logger.Warn("domain listing failed, falling back to legacy calls", "strategy", name, "error", err)
		if opts.OnFallback != nil {
			opts.OnFallback(err)
		}
	})
	if errs != nil {
		return nil, &EnumerationError{Bulk: errs[0], Legacy: errs[1]}
	}

	logger.Debug("domains enumerated", "count", len(domains), "include_inactive", opts.IncludeInactive)
	return domains, nil
}

// listAll uses the bulk listing call.
func listAll(lv LibvirtClient, includeInactive bool) ([]libvirt.Domain, error) {
	flags := libvirt.ConnectListDomainsActive
	if includeInactive {
		flags |= libvirt.ConnectListDomainsInactive
	}

	// NeedResults: 1 means populate the domains slice
	domains, _, err := lv.ConnectListAllDomains(1, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}

// listLegacy uses the per-ID and per-name calls. Any handle that cannot be
// resolved fails the whole listing.
func listLegacy(lv LibvirtClient, includeInactive bool) ([]libvirt.Domain, error) {
	numActive, err := lv.ConnectNumOfDomains()
	if err != nil {
		return nil, fmt.Errorf("failed to count running domains: %w", err)
	}
	ids, err := lv.ConnectListDomains(numActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list running domain IDs: %w", err)
	}

	domains := make([]libvirt.Domain, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		dom, err := lv.DomainLookupByID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up domain ID %d: %w", id, err)
		}
		domains = append(domains, dom)
		seen[dom.Name] = true
	}

	if !includeInactive {
		return domains, nil
	}

	numDefined, err := lv.ConnectNumOfDefinedDomains()
	if err != nil {
		return nil, fmt.Errorf("failed to count defined domains: %w", err)
	}
	names, err := lv.ConnectListDefinedDomains(numDefined)
	if err != nil {
		return nil, fmt.Errorf("failed to list defined domain names: %w", err)
	}

	for _, name := range names {
		// A domain started between the two listings shows up in both.
		if seen[name] {
			continue
		}
		dom, err := lv.DomainLookupByName(name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up domain %q: %w", name, err)
		}
		domains = append(domains, dom)
		seen[name] = true
	}

	return domains, nil
}

// logger returns the configured logger or one that discards everything.
func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
