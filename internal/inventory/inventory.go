package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options controls what Build collects.
type Options struct {
	// IncludeInactive adds defined but not running domains.
	IncludeInactive bool

	// WantInterfaces collects per-interface addresses and counters.
	WantInterfaces bool

	// AddressSource selects the interface data source. Defaults to SourceLease.
	AddressSource AddressSource

	// Parallel bounds the number of domains fetched at once. Values below 1
	// mean one at a time.
	Parallel int

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// OnFallback, if set, is called with the bulk listing error when
	// enumeration falls back to the legacy calls.
	OnFallback func(err error)
}

func (o Options) parallel() int {
	if o.Parallel < 1 {
		return 1
	}
	return o.Parallel
}

// Build enumerates domains and assembles one DomainRecord per handle, in
// enumeration order.
//
// Enumeration completes before any per-domain work starts. A failure to read
// the name, state or info of any domain aborts the run and no records are
// returned. Interface data is best effort and never fails the run.
func Build(ctx context.Context, lv LibvirtClient, opts Options) ([]DomainRecord, error) {
	logger := opts.logger()

	domains, err := Enumerate(lv, opts)
	if err != nil {
		return nil, err
	}

	records := make([]DomainRecord, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallel())

	for i, dom := range domains {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := buildRecord(lv, dom, opts, logger)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup only cancels gctx on a member error; a parent cancellation
	// that raced the last goroutine still has to surface.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("inventory built", "domains", len(records), "interfaces", opts.WantInterfaces)
	return records, nil
}

// buildRecord fetches the core attributes of one domain and, if requested,
// its interfaces.
func buildRecord(lv LibvirtClient, dom libvirt.Domain, opts Options, logger *slog.Logger) (DomainRecord, error) {
	if dom.Name == "" {
		return DomainRecord{}, &DomainDetailError{
			Domain: uuid.UUID(dom.UUID).String(),
			Op:     "name",
			Err:    errors.New("domain handle has no name"),
		}
	}

	stateCode, _, err := lv.DomainGetState(dom, 0)
	if err != nil {
		return DomainRecord{}, &DomainDetailError{Domain: dom.Name, Op: "state", Err: err}
	}

	infoState, maxMem, memory, nrVirtCPU, cpuTime, err := lv.DomainGetInfo(dom)
	if err != nil {
		return DomainRecord{}, &DomainDetailError{Domain: dom.Name, Op: "info", Err: err}
	}

	state := StateFromCode(uint32(stateCode))
	if fromInfo := StateFromInfo(infoState); fromInfo != state {
		// The domain changed state between the two calls.
		logger.Debug("domain state changed during collection", "domain", dom.Name, "state", state, "info_state", fromInfo)
	}

	rec := DomainRecord{
		Name:      dom.Name,
		UUID:      uuid.UUID(dom.UUID).String(),
		State:     state,
		MaxMemory: maxMem,
		Memory:    memory,
		VCPUs:     uint32(nrVirtCPU),
		CPUTime:   cpuTime,
	}

	if opts.WantInterfaces {
		rec.Interfaces = CollectInterfaces(lv, dom, opts.AddressSource, logger)
	}

	return rec, nil
}
