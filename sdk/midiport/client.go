package midiport

import (
	"github.com/soundio/midiport/internal/input"
	"github.com/soundio/midiport/sdk/contracts"
)

// NewInput creates a MIDI input bound to the given event handler.
// The handler is the one required argument; it runs on a single dedicated
// goroutine, one message at a time, in delivery order.
//
// handler contracts.Handler: invoked once per received MIDI message.
// opts ...contracts.Option: a variadic list of option functions to customize
// the input configuration.
//
// Returns:
//   - contracts.MIDIInput: the input instance.
//   - error: ErrInvalidArgument when the handler is nil, ErrDriverInit when
//     the device handle could not be created.
//
// Call Destroy when done. Dropping all references also tears the input
// down, but only reliably while no port was ever opened; an open port's
// driver registration keeps the instance alive until Destroy or ClosePort.
func NewInput(handler contracts.Handler, opts ...contracts.Option) (contracts.MIDIInput, error) {
	if handler == nil {
		return nil, contracts.ErrInvalidArgument
	}

	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	dev, err := newDeviceHandle(&options)
	if err != nil {
		return nil, err
	}

	return input.New(handler, dev, &options)
}
