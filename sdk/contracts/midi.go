package contracts

// Event is a single captured MIDI message. It is constructed on the driver
// callback path with a deep copy of the driver's transient buffer, handed to
// the bridge exactly once, and consumed by at most one handler invocation.
// Neither field may be mutated after construction.
type Event struct {
	Timestamp float64 // Seconds, relative to a driver-defined epoch.
	Payload   []byte  // Raw MIDI message bytes, no framing added.
}

// Handler receives one MIDI message per invocation, on the consumer's single
// execution context, in delivery order. The payload is owned by the handler
// for the duration of the call only.
type Handler func(timestamp float64, payload []byte)

// MIDIInput is the consumer-facing surface of one MIDI input port.
// All operations fail with ErrNotInitialized once Destroy has run.
type MIDIInput interface {
	PortCount() (int, error)                             // Number of available input ports.
	PortName(port int) (string, error)                   // Name of the port at the given index.
	OpenPort(port int) error                             // Opens a hardware port by index.
	OpenVirtualPort(name string) error                   // Opens a virtual port under the given name.
	ClosePort() error                                    // Closes the port; repeat calls are no-ops.
	IsPortOpen() (bool, error)                           // Reports whether a port is currently open.
	IgnoreTypes(sysex, timeCode, activeSense bool) error // Configures message suppression.
	Destroy() error                                      // Releases the device handle; no-op when already destroyed.
}
