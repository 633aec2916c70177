//go:build !windows
// +build !windows

package midiwinmm

import (
	"fmt"

	"github.com/soundio/midiport/sdk/contracts"
)

// NewDeviceHandle fails on non-windows systems; the winmm backend needs the
// Windows multimedia API.
func NewDeviceHandle(opts *contracts.ClientOptions) (contracts.DeviceHandle, error) {
	return nil, fmt.Errorf("%w: winmm backend requires windows", contracts.ErrUnsupportedPlatform)
}
