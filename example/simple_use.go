package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"

	"github.com/soundio/midiport/internal/logger"
	"github.com/soundio/midiport/sdk/contracts"
	"github.com/soundio/midiport/sdk/midiport"
)

func main() {
	log := logger.NewZapLogger()

	in, err := midiport.NewInput(func(timestamp float64, payload []byte) {
		msg := midi.Message(payload)
		fmt.Printf("%9.4f  %s\n", timestamp, msg.String())
	},
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithBufferSize(256),
		contracts.WithDriverConfig(contracts.DriverConfig{ClientName: "midiport example"}),
	)
	if err != nil {
		log.Error("failed to create MIDI input", log.Field().Error("error", err))
		return
	}
	defer in.Destroy()

	count, err := in.PortCount()
	if err != nil {
		log.Error("failed to count MIDI ports", log.Field().Error("error", err))
		return
	}

	if count == 0 {
		// No hardware around; expose a virtual port other apps can send to.
		if err := in.OpenVirtualPort("midiport example"); err != nil {
			log.Error("failed to open virtual port", log.Field().Error("error", err))
			return
		}
		fmt.Println("Listening on virtual port \"midiport example\"... Ctrl+C to exit.")
	} else {
		for i := 0; i < count; i++ {
			name, _ := in.PortName(i)
			fmt.Printf("  %d: %s\n", i, name)
		}
		if err := in.OpenPort(0); err != nil {
			log.Error("failed to open port", log.Field().Error("error", err))
			return
		}
		fmt.Println("Listening on port 0... Ctrl+C to exit.")
	}

	// Drop clock and active sensing, keep sysex.
	if err := in.IgnoreTypes(false, true, true); err != nil {
		log.Error("failed to configure filtering", log.Field().Error("error", err))
		return
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if err := in.ClosePort(); err != nil {
		log.Error("failed to close port", log.Field().Error("error", err))
	}
}
