// Package miditest provides a scriptable DeviceHandle used by tests in place
// of MIDI hardware. It honors the same ordering contract as real backends:
// Emit only reaches the registered callback while a callback is set, and
// filtering happens before the callback fires.
package miditest

import (
	"errors"
	"sync"

	"github.com/soundio/midiport/sdk/contracts"
)

// Device is a fake MIDI input endpoint. Emit synthesizes a driver delivery
// on the calling goroutine, which tests may run concurrently to model the
// driver thread.
type Device struct {
	mu sync.Mutex

	ports   []string
	cb      contracts.ReceiveFunc
	filter  contracts.FilterConfig
	open    bool
	last    string // Name of the most recently opened port.
	virtual bool

	destroyed bool

	// Injectable failures.
	OpenErr        error
	VirtualOpenErr error
	SetCallbackErr error

	setCalls    int
	cancelCalls int
	openCalls   int
	closeCalls  int
}

// NewDevice creates a fake with the given port names.
func NewDevice(ports ...string) *Device {
	return &Device{ports: ports}
}

// PortCount returns the number of configured ports.
func (d *Device) PortCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ports), nil
}

// PortName returns the configured name, or an error mimicking a driver
// rejecting an invalid index.
func (d *Device) PortName(port int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if port < 0 || port >= len(d.ports) {
		return "", errors.New("invalid port number")
	}
	return d.ports[port], nil
}

// OpenPort marks the indexed port open, or fails with OpenErr when set.
func (d *Device) OpenPort(port int, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.openCalls++
	if d.OpenErr != nil {
		return d.OpenErr
	}
	if port < 0 || port >= len(d.ports) {
		return errors.New("invalid port number")
	}
	d.open = true
	d.virtual = false
	d.last = name
	return nil
}

// OpenVirtualPort marks a virtual port open, or fails with VirtualOpenErr.
func (d *Device) OpenVirtualPort(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.openCalls++
	if d.VirtualOpenErr != nil {
		return d.VirtualOpenErr
	}
	d.open = true
	d.virtual = true
	d.last = name
	return nil
}

// ClosePort marks the port closed.
func (d *Device) ClosePort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCalls++
	d.open = false
	return nil
}

// IsPortOpen reports whether a port is marked open.
func (d *Device) IsPortOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// SetCallback registers the receive function, or fails with SetCallbackErr.
func (d *Device) SetCallback(fn contracts.ReceiveFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.setCalls++
	if d.SetCallbackErr != nil {
		return d.SetCallbackErr
	}
	d.cb = fn
	return nil
}

// CancelCallback deregisters the receive function. An Emit starting after
// this returns no longer delivers.
func (d *Device) CancelCallback() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelCalls++
	d.cb = nil
	return nil
}

// IgnoreTypes records the filter configuration.
func (d *Device) IgnoreTypes(sysex, timeCode, activeSense bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = contracts.FilterConfig{SysEx: sysex, TimeCode: timeCode, ActiveSense: activeSense}
	return nil
}

// Destroy marks the handle released.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = true
	d.open = false
	d.cb = nil
}

// Emit synthesizes one driver delivery. The message buffer is reused after
// the call returns, matching the transient-buffer contract, so callbacks
// that retain bytes must have copied them.
func (d *Device) Emit(deltaSeconds float64, message []byte) {
	d.mu.Lock()
	cb := d.cb
	drop := d.filter.Drops(message)
	d.mu.Unlock()

	if cb == nil || drop {
		return
	}

	buf := append([]byte(nil), message...)
	cb(deltaSeconds, buf)
	for i := range buf {
		buf[i] = 0 // Invalidate, as a real driver buffer would be.
	}
}

// SetCallbackCalls returns how many times SetCallback was invoked.
func (d *Device) SetCallbackCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setCalls
}

// CancelCallbackCalls returns how many times CancelCallback was invoked.
func (d *Device) CancelCallbackCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelCalls
}

// OpenCalls returns how many open attempts the device saw.
func (d *Device) OpenCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openCalls
}

// Destroyed reports whether Destroy has run.
func (d *Device) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// LastOpened returns the name passed to the most recent open call and
// whether it was virtual.
func (d *Device) LastOpened() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.virtual
}

// Filter returns the current filter configuration.
func (d *Device) Filter() contracts.FilterConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}
