// Package input implements the lifecycle of one MIDI input port: it
// sequences open, close and destroy against the bridge and the device handle
// so the driver callback can never fire into a torn-down bridge and teardown
// can never race an in-flight delivery.
package input

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/soundio/midiport/internal/bridge"
	"github.com/soundio/midiport/internal/logger"
	"github.com/soundio/midiport/sdk/contracts"
)

// Input owns exactly one device handle and one bridge. It implements
// contracts.MIDIInput.
//
// Ordering rules enforced here:
//   - Open: arm the bridge, register the driver callback, then open the
//     port. The callback cannot fire before the bridge exists.
//   - Close: close the port, cancel the driver callback, then disarm the
//     bridge. No new delivery can start once disarming begins.
type Input struct {
	logger contracts.Logger
	dev    contracts.DeviceHandle
	bridge *bridge.Bridge

	mu        sync.Mutex
	handler   contracts.Handler
	armed     bool // Driver callback registered and bridge armed.
	destroyed bool
}

// New wires a device handle and a handler into a ready-to-open input.
// The handler is required; its absence fails construction.
//
// A finalizer routes reference-drop through Destroy, but cgo-backed device
// handles hold the callback registration in a global registry while a port
// is open, which keeps the input reachable. Call Destroy explicitly once a
// port has been opened; the finalizer only covers inputs that never armed.
func New(handler contracts.Handler, dev contracts.DeviceHandle, opts *contracts.ClientOptions) (*Input, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: expected an event handler", contracts.ErrInvalidArgument)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	in := &Input{
		logger:  log,
		dev:     dev,
		bridge:  bridge.New(log, opts.BufferSize),
		handler: handler,
	}

	// Dropping every reference without calling Destroy must still cancel the
	// driver registration and release the handle.
	runtime.SetFinalizer(in, func(in *Input) { _ = in.Destroy() })

	return in, nil
}

// PortCount returns the number of available input ports.
func (in *Input) PortCount() (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return 0, contracts.ErrNotInitialized
	}
	count, err := in.dev.PortCount()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}
	return count, nil
}

// PortName returns the name of the port at the given index.
func (in *Input) PortName(port int) (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return "", contracts.ErrNotInitialized
	}
	name, err := in.dev.PortName(port)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}
	return name, nil
}

// OpenPort opens the hardware port at the given index. A failed open leaves
// the callback armed and the port closed; a later OpenPort may retry without
// re-arming.
func (in *Input) OpenPort(port int) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return contracts.ErrNotInitialized
	}

	count, err := in.dev.PortCount()
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}
	if port < 0 || port >= count {
		return fmt.Errorf("%w: port %d, have %d ports", contracts.ErrOutOfRange, port, count)
	}

	if err := in.arm(); err != nil {
		return err
	}

	name, err := in.dev.PortName(port)
	if err != nil {
		name = fmt.Sprintf("port %d", port)
	}
	if err := in.dev.OpenPort(port, name); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}

	in.logger.Info("midi port opened",
		in.logger.Field().Int("port", port),
		in.logger.Field().String("name", name))
	return nil
}

// OpenVirtualPort creates a virtual input endpoint under the given name.
func (in *Input) OpenVirtualPort(name string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return contracts.ErrNotInitialized
	}
	if name == "" {
		return fmt.Errorf("%w: virtual port name must not be empty", contracts.ErrInvalidArgument)
	}

	if err := in.arm(); err != nil {
		return err
	}
	if err := in.dev.OpenVirtualPort(name); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}

	in.logger.Info("virtual midi port opened",
		in.logger.Field().String("name", name))
	return nil
}

// ClosePort closes the port and tears the bridge down. Repeat calls are
// no-ops; the only failure is calling it on a destroyed input.
func (in *Input) ClosePort() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return contracts.ErrNotInitialized
	}
	in.teardown()
	return nil
}

// Destroy closes the port, if open, and releases the device handle. It is a
// no-op when already destroyed.
func (in *Input) Destroy() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return nil
	}
	in.teardown()
	in.dev.Destroy()
	in.destroyed = true
	runtime.SetFinalizer(in, nil)

	in.logger.Info("midi input destroyed")
	return nil
}

// IsPortOpen reports whether a port is currently open.
func (in *Input) IsPortOpen() (bool, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return false, contracts.ErrNotInitialized
	}
	return in.dev.IsPortOpen(), nil
}

// IgnoreTypes configures suppression of system-exclusive, timing and
// active-sensing messages. Filtering happens at the device boundary, before
// the bridge sees the message.
func (in *Input) IgnoreTypes(sysex, timeCode, activeSense bool) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.destroyed {
		return contracts.ErrNotInitialized
	}
	if err := in.dev.IgnoreTypes(sysex, timeCode, activeSense); err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}
	return nil
}

// arm brings the bridge and the driver callback up, in that order. It is
// idempotent: opening again after a failed open, or opening a second port
// on the same input, reuses the existing registration.
func (in *Input) arm() error {
	if in.armed {
		return nil
	}

	if err := in.bridge.Arm(in.handler); err != nil {
		return err
	}
	if err := in.dev.SetCallback(in.receive); err != nil {
		in.bridge.Disarm()
		return fmt.Errorf("%w: %v", contracts.ErrDriver, err)
	}

	in.armed = true
	return nil
}

// teardown is the single close path shared by ClosePort, Destroy and the
// finalizer. Order matters: close the port so the driver stops producing,
// cancel the callback registration, then barrier-wait on the bridge.
func (in *Input) teardown() {
	if err := in.dev.ClosePort(); err != nil {
		in.logger.Warn("failed to close midi port",
			in.logger.Field().Error("error", err))
	}

	if in.armed {
		in.armed = false
		if err := in.dev.CancelCallback(); err != nil {
			in.logger.Warn("failed to cancel driver callback",
				in.logger.Field().Error("error", err))
		}
		in.bridge.Disarm()
	}
}

// receive runs on the driver thread. The driver's buffer is only valid for
// the duration of the call, so the payload is copied before the event is
// handed to the bridge. Nothing here may block or panic across the thread
// boundary; a delivery that cannot be queued is dropped by the bridge.
func (in *Input) receive(deltaSeconds float64, message []byte) {
	in.bridge.Deliver(contracts.Event{
		Timestamp: deltaSeconds,
		Payload:   append([]byte(nil), message...),
	})
}
