// Package driver selects and instantiates backend drivers. Availability is
// probed once at registry construction; the result is cached for the life
// of the session and never re-probed per call.
package driver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/winauto-dev/winrunner/pkg/core"
)

// Auto selects the first available backend in priority order.
const Auto = "auto"

// priority is the fixed probe and selection order. Win32 comes first on
// purpose: the control-tree backend covers more legacy Win32 controls,
// while uia covers modern UI-tree-based ones.
var priority = []core.BackendID{core.BackendWin32, core.BackendUIA}

// Candidate pairs a driver with its availability probe.
type Candidate struct {
	Driver core.Driver
	// Probe checks whether the backend's agent is reachable, e.g. a
	// status call. A nil Probe means always available.
	Probe func() (bool, error)
}

// Registry holds the probed backend drivers for one session.
type Registry struct {
	drivers map[core.BackendID]core.Driver
	probed  []core.BackendID // priority order, available only
	log     *zap.Logger
}

// NewRegistry probes each candidate once and registers the available ones.
func NewRegistry(candidates map[core.BackendID]Candidate, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{
		drivers: make(map[core.BackendID]core.Driver),
		log:     log,
	}

	for _, id := range priority {
		cand, ok := candidates[id]
		if !ok {
			continue
		}

		if cand.Probe != nil {
			ready, err := cand.Probe()
			if err != nil || !ready {
				r.log.Debug("backend unavailable",
					zap.String("backend", string(id)),
					zap.Bool("ready", ready),
					zap.Error(err))
				continue
			}
		}

		r.drivers[id] = cand.Driver
		r.probed = append(r.probed, id)
		r.log.Info("backend registered", zap.String("backend", string(id)))
	}

	return r
}

// Get returns the driver for name. An empty name or "auto" selects the
// first available backend in priority order. An explicit name that is not
// registered fails with core.ErrUnknownBackend.
func (r *Registry) Get(name string) (core.Driver, error) {
	if name == "" || name == Auto {
		if len(r.probed) == 0 {
			return nil, fmt.Errorf("%w: no backend available", core.ErrUnknownBackend)
		}
		return r.drivers[r.probed[0]], nil
	}

	d, ok := r.drivers[core.BackendID(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", core.ErrUnknownBackend, name, r.probed)
	}
	return d, nil
}

// Available lists the registered backends in priority order.
func (r *Registry) Available() []core.BackendID {
	out := make([]core.BackendID, len(r.probed))
	copy(out, r.probed)
	return out
}
