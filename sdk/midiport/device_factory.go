package midiport

import (
	"errors"
	"fmt"

	"github.com/soundio/midiport/internal/midi/midicoremidi"
	"github.com/soundio/midiport/internal/midi/midirtmidi"
	"github.com/soundio/midiport/internal/midi/midiwinmm"
	"github.com/soundio/midiport/sdk/contracts"
)

// ErrUnknownBackend is returned when the requested backend is not in the
// registry.
var ErrUnknownBackend = errors.New("unknown midi backend")

// deviceInitializers maps backend names to device handle constructors.
// Platform-specific backends compile everywhere and fail at construction
// time on the wrong operating system.
var deviceInitializers = map[contracts.Backend]func(*contracts.ClientOptions) (contracts.DeviceHandle, error){
	contracts.BackendRtMidi:   midirtmidi.NewDeviceHandle,
	contracts.BackendCoreMIDI: midicoremidi.NewDeviceHandle,
	contracts.BackendWinMM:    midiwinmm.NewDeviceHandle,
}

// newDeviceHandle resolves the device handle for the given options: an
// injected handle wins, otherwise the named backend is constructed.
func newDeviceHandle(opts *contracts.ClientOptions) (contracts.DeviceHandle, error) {
	if opts.DeviceHandle != nil {
		return opts.DeviceHandle, nil
	}

	initializer, exists := deviceInitializers[opts.Backend]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
	return initializer(opts)
}
