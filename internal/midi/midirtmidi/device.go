// Package midirtmidi adapts the RtMidi input API to the DeviceHandle
// contract. RtMidi compiles against CoreMIDI, ALSA, JACK and winmm, so this
// backend works on every supported platform and is the default. It is also
// the only backend with virtual port support.
package midirtmidi

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/rtmididrv/imported/rtmidi"

	"github.com/soundio/midiport/sdk/contracts"
)

// DefaultQueueSize matches the driver-side buffer the library has always
// requested from RtMidi.
const DefaultQueueSize = 2048

// Device wraps one rtmidi.MIDIIn. The binding exposes no is-open query, so
// open state is tracked here.
type Device struct {
	mu   sync.Mutex
	in   rtmidi.MIDIIn
	open bool
}

// NewDeviceHandle creates an RtMidi input handle using the first compiled
// API the library finds.
func NewDeviceHandle(opts *contracts.ClientOptions) (contracts.DeviceHandle, error) {
	cfg := opts.DriverConfig

	in, err := rtmidi.NewMIDIIn(rtmidi.APIUnspecified, cfg.ClientName, cfg.QueueSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDriverInit, err)
	}
	return &Device{in: in}, nil
}

// PortCount returns the number of input ports RtMidi can see.
func (d *Device) PortCount() (int, error) {
	return d.in.PortCount()
}

// PortName returns the name of the port at the given index.
func (d *Device) PortName(port int) (string, error) {
	return d.in.PortName(port)
}

// OpenPort connects to the port at the given index.
func (d *Device) OpenPort(port int, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.in.OpenPort(port, name); err != nil {
		return err
	}
	d.open = true
	return nil
}

// OpenVirtualPort creates a virtual input endpoint under the given name.
func (d *Device) OpenVirtualPort(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.in.OpenVirtualPort(name); err != nil {
		return err
	}
	d.open = true
	return nil
}

// ClosePort disconnects from the current port, if any.
func (d *Device) ClosePort() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil
	}
	d.open = false
	return d.in.Close()
}

// IsPortOpen reports whether a port is currently open.
func (d *Device) IsPortOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// SetCallback registers fn with the driver. RtMidi invokes it on its own
// thread with the message buffer and the time delta in seconds.
func (d *Device) SetCallback(fn contracts.ReceiveFunc) error {
	return d.in.SetCallback(func(_ rtmidi.MIDIIn, message []byte, deltaSeconds float64) {
		fn(deltaSeconds, message)
	})
}

// CancelCallback deregisters the receive function. RtMidi's cancellation is
// synchronous: the driver thread no longer fires after this returns.
func (d *Device) CancelCallback() error {
	return d.in.CancelCallback()
}

// IgnoreTypes delegates filtering to the driver.
func (d *Device) IgnoreTypes(sysex, timeCode, activeSense bool) error {
	return d.in.IgnoreTypes(sysex, timeCode, activeSense)
}

// Destroy releases the RtMidi handle.
func (d *Device) Destroy() {
	d.in.Destroy()
}
