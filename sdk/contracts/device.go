package contracts

// ReceiveFunc is invoked by a DeviceHandle on its own driver thread, once per
// received MIDI message. The message slice is only valid for the duration of
// the call; implementations receiving it must copy before retaining.
type ReceiveFunc func(deltaSeconds float64, message []byte)

// DeviceHandle is the boundary to the underlying MIDI transport. One handle
// owns exactly one input endpoint and is never shared across instances.
//
// The lifecycle controller guarantees the call ordering: SetCallback is
// called before OpenPort/OpenVirtualPort, and ClosePort then CancelCallback
// before the bridge is disarmed. After CancelCallback returns, no new
// callback invocation begins observing the registration; a delivery already
// in flight on the driver thread may still complete, and is then dropped by
// the disarmed bridge.
type DeviceHandle interface {
	// PortCount returns the number of input ports currently visible.
	PortCount() (int, error)

	// PortName returns the display name of the port at the given index, or a
	// driver error when the index is invalid.
	PortName(port int) (string, error)

	// OpenPort connects the handle to the port at the given index. The name
	// is advisory, used by drivers that label their connections.
	OpenPort(port int, name string) error

	// OpenVirtualPort creates a virtual input endpoint other applications can
	// send to. Backends without virtual port support return a driver error.
	OpenVirtualPort(name string) error

	// ClosePort disconnects from the current port, if any.
	ClosePort() error

	// IsPortOpen reports whether a port is currently open.
	IsPortOpen() bool

	// SetCallback registers the receive function invoked on the driver thread.
	SetCallback(fn ReceiveFunc) error

	// CancelCallback deregisters the receive function.
	CancelCallback() error

	// IgnoreTypes configures suppression of system-exclusive, timing and
	// active-sensing messages at the driver boundary.
	IgnoreTypes(sysex, timeCode, activeSense bool) error

	// Destroy releases the handle itself. No further calls are valid.
	Destroy()
}

// Backend names a DeviceHandle implementation in the backend registry.
type Backend string

const (
	// BackendRtMidi is the default backend, available on every platform with
	// a compiled RtMidi, including virtual port support.
	BackendRtMidi Backend = "rtmidi"
	// BackendCoreMIDI connects through CoreMIDI directly. Darwin only.
	BackendCoreMIDI Backend = "coremidi"
	// BackendWinMM connects through the Windows multimedia API. Windows only.
	BackendWinMM Backend = "winmm"
)
