//go:build darwin
// +build darwin

// Package midicoremidi adapts CoreMIDI to the DeviceHandle contract.
// CoreMIDI delivers packets without driver-side filtering or timestamps in
// seconds, so this backend applies FilterConfig in Go and timestamps events
// relative to the moment the port was opened. Virtual ports are not exposed
// by this backend; use the rtmidi backend for those.
package midicoremidi

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youpy/go-coremidi"

	"github.com/soundio/midiport/sdk/contracts"
)

// internalPortConnection is the part of a CoreMIDI port connection the
// device needs for teardown.
type internalPortConnection interface {
	Disconnect()
}

// receiveBox wraps the callback so an atomic.Value can hold "no callback".
type receiveBox struct {
	fn contracts.ReceiveFunc
}

// Device manages one CoreMIDI source connection.
type Device struct {
	mu     sync.Mutex
	client coremidi.Client
	conn   internalPortConnection
	open   bool

	callback atomic.Value // receiveBox
	filter   atomic.Value // contracts.FilterConfig
	openedAt atomic.Int64 // UnixNano at port open; timestamp epoch.
}

// NewDeviceHandle creates a CoreMIDI client under the configured name.
func NewDeviceHandle(opts *contracts.ClientOptions) (contracts.DeviceHandle, error) {
	client, err := coremidi.NewClient(opts.DriverConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDriverInit, err)
	}

	d := &Device{client: client}
	d.callback.Store(receiveBox{})
	d.filter.Store(contracts.FilterConfig{})
	return d, nil
}

// PortCount returns the number of CoreMIDI sources.
func (d *Device) PortCount() (int, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return 0, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	return len(sources), nil
}

// PortName returns the name of the source at the given index.
func (d *Device) PortName(port int) (string, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return "", fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if port < 0 || port >= len(sources) {
		return "", fmt.Errorf("invalid MIDI source %d, have %d", port, len(sources))
	}
	return sources[port].Name(), nil
}

// OpenPort connects an input port to the source at the given index.
func (d *Device) OpenPort(port int, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if port < 0 || port >= len(sources) {
		return fmt.Errorf("invalid MIDI source %d, have %d", port, len(sources))
	}

	if d.conn != nil {
		d.conn.Disconnect()
		d.conn = nil
	}

	inputPort, err := coremidi.NewInputPort(d.client, name, d.handlePacket)
	if err != nil {
		return fmt.Errorf("error creating input port: %w", err)
	}

	d.openedAt.Store(time.Now().UnixNano())
	conn, err := inputPort.Connect(sources[port])
	if err != nil {
		return fmt.Errorf("error connecting to MIDI source: %w", err)
	}

	d.conn = conn
	d.open = true
	return nil
}

// OpenVirtualPort is not supported by this backend.
func (d *Device) OpenVirtualPort(name string) error {
	return fmt.Errorf("virtual ports are not supported by the coremidi backend")
}

// ClosePort disconnects from the current source, if any.
func (d *Device) ClosePort() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		d.conn.Disconnect()
		d.conn = nil
	}
	d.open = false
	return nil
}

// IsPortOpen reports whether a source is currently connected.
func (d *Device) IsPortOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// SetCallback registers the receive function. The CoreMIDI read procedure is
// bound at port creation, so the callback is stored atomically and read per
// packet on the driver thread.
func (d *Device) SetCallback(fn contracts.ReceiveFunc) error {
	d.callback.Store(receiveBox{fn: fn})
	return nil
}

// CancelCallback deregisters the receive function. Packets arriving after
// this returns are discarded on the driver thread.
func (d *Device) CancelCallback() error {
	d.callback.Store(receiveBox{})
	return nil
}

// IgnoreTypes updates the filter applied to incoming packets.
func (d *Device) IgnoreTypes(sysex, timeCode, activeSense bool) error {
	d.filter.Store(contracts.FilterConfig{
		SysEx:       sysex,
		TimeCode:    timeCode,
		ActiveSense: activeSense,
	})
	return nil
}

// Destroy releases the connection. The CoreMIDI client itself is reclaimed
// with the process.
func (d *Device) Destroy() {
	_ = d.ClosePort()
}

// handlePacket runs on the CoreMIDI driver thread. Filtered packets never
// reach the receive function; everything else is forwarded with a timestamp
// relative to the port-open instant.
func (d *Device) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	box, _ := d.callback.Load().(receiveBox)
	if box.fn == nil {
		return
	}
	if len(packet.Data) == 0 {
		return
	}

	filter, _ := d.filter.Load().(contracts.FilterConfig)
	if filter.Drops(packet.Data) {
		return
	}

	elapsed := time.Duration(time.Now().UnixNano() - d.openedAt.Load())
	box.fn(elapsed.Seconds(), packet.Data)
}
