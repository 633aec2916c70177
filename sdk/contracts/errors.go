package contracts

import "errors"

// Error kinds reported by the public surface. Driver failures are wrapped
// with fmt.Errorf("%w: ...", ErrDriver) so callers can match with errors.Is.
// No error is ever delivered through the event handler; failures on the
// driver thread are converted into dropped events instead.
var (
	// ErrNotInitialized is returned for any operation on a destroyed input.
	ErrNotInitialized = errors.New("midi input not initialised")

	// ErrInvalidArgument is returned when a required argument is missing or
	// malformed, such as a nil event handler or an empty virtual port name.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned when a port index is not in [0, PortCount).
	ErrOutOfRange = errors.New("port number out of range")

	// ErrDriver wraps failures surfaced by the underlying MIDI transport.
	ErrDriver = errors.New("midi driver error")

	// ErrDriverInit is returned when the device handle itself could not be
	// created; the input is unusable and no object is returned.
	ErrDriverInit = errors.New("failed to initialise midi driver")

	// ErrBridgeArmed is returned by the bridge when Arm is called while a
	// previous arm cycle is still active. The lifecycle controller prevents
	// this; seeing it outside tests indicates a caller bug.
	ErrBridgeArmed = errors.New("bridge already armed")

	// ErrUnsupportedPlatform is returned by platform-specific backends when
	// built for another operating system.
	ErrUnsupportedPlatform = errors.New("midi backend not available on this platform")
)
