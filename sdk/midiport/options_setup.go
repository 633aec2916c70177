package midiport

import (
	"github.com/soundio/midiport/internal/bridge"
	"github.com/soundio/midiport/internal/logger"
	"github.com/soundio/midiport/internal/midi/midirtmidi"
	"github.com/soundio/midiport/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not
// explicitly provided.
//
// opts ...contracts.Option: a variadic list of option functions that can
// modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: the finalized options with defaults applied.
//   - error: an error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.Backend == "" {
		options.Backend = contracts.BackendRtMidi
	}
	if options.BufferSize == 0 {
		options.BufferSize = bridge.DefaultBufferSize
	}
	if options.DriverConfig == nil {
		options.DriverConfig = &contracts.DriverConfig{ClientName: "midiport input"}
	}
	if options.DriverConfig.QueueSize == 0 {
		options.DriverConfig.QueueSize = midirtmidi.DefaultQueueSize
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
