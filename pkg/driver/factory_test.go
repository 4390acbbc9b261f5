package driver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winauto-dev/winrunner/pkg/core"
)

// stubDriver is a minimal core.Driver carrying only its backend tag.
type stubDriver struct {
	core.Driver
	id core.BackendID
}

func (s *stubDriver) Name() core.BackendID { return s.id }

func candidate(id core.BackendID, ready bool, probeErr error) Candidate {
	return Candidate{
		Driver: &stubDriver{id: id},
		Probe:  func() (bool, error) { return ready, probeErr },
	}
}

func TestAutoPrefersWin32(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: candidate(core.BackendWin32, true, nil),
		core.BackendUIA:   candidate(core.BackendUIA, true, nil),
	}, nil)

	for _, name := range []string{"", Auto} {
		d, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, core.BackendWin32, d.Name())
	}
}

func TestAutoFallsBackToUIA(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: candidate(core.BackendWin32, false, errors.New("agent down")),
		core.BackendUIA:   candidate(core.BackendUIA, true, nil),
	}, nil)

	d, err := r.Get(Auto)
	require.NoError(t, err)
	assert.Equal(t, core.BackendUIA, d.Name())
}

func TestExplicitName(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: candidate(core.BackendWin32, true, nil),
		core.BackendUIA:   candidate(core.BackendUIA, true, nil),
	}, nil)

	d, err := r.Get("uia")
	require.NoError(t, err)
	assert.Equal(t, core.BackendUIA, d.Name())
}

func TestUnknownBackend(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: candidate(core.BackendWin32, true, nil),
	}, nil)

	_, err := r.Get("appium")
	assert.ErrorIs(t, err, core.ErrUnknownBackend)
	assert.Contains(t, err.Error(), "appium")
}

func TestUnavailableBackendIsNotRegistered(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: candidate(core.BackendWin32, false, nil),
		core.BackendUIA:   candidate(core.BackendUIA, true, nil),
	}, nil)

	_, err := r.Get("win32")
	assert.ErrorIs(t, err, core.ErrUnknownBackend)
	assert.Equal(t, []core.BackendID{core.BackendUIA}, r.Available())
}

func TestNoBackendAvailable(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: candidate(core.BackendWin32, false, nil),
	}, nil)

	_, err := r.Get(Auto)
	assert.ErrorIs(t, err, core.ErrUnknownBackend)
	assert.Empty(t, r.Available())
}

func TestProbeRunsOnceAtConstruction(t *testing.T) {
	probes := 0
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendWin32: {
			Driver: &stubDriver{id: core.BackendWin32},
			Probe: func() (bool, error) {
				probes++
				// Slow probes are why re-probing per call is forbidden.
				time.Sleep(time.Millisecond)
				return true, nil
			},
		},
	}, nil)

	for i := 0; i < 5; i++ {
		_, err := r.Get(Auto)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, probes)
}

func TestNilProbeMeansAvailable(t *testing.T) {
	r := NewRegistry(map[core.BackendID]Candidate{
		core.BackendUIA: {Driver: &stubDriver{id: core.BackendUIA}},
	}, nil)

	d, err := r.Get(Auto)
	require.NoError(t, err)
	assert.Equal(t, core.BackendUIA, d.Name())
}
