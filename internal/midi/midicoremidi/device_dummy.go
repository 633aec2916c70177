//go:build !darwin
// +build !darwin

package midicoremidi

import (
	"fmt"

	"github.com/soundio/midiport/sdk/contracts"
)

// NewDeviceHandle fails on non-darwin systems; the coremidi backend needs
// CoreMIDI.
func NewDeviceHandle(opts *contracts.ClientOptions) (contracts.DeviceHandle, error) {
	return nil, fmt.Errorf("%w: coremidi backend requires darwin", contracts.ErrUnsupportedPlatform)
}
