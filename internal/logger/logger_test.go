package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundio/midiport/sdk/contracts"
)

func TestZapLoggerLevelsDoNotPanic(t *testing.T) {
	log := NewNopLogger()

	log.SetLevel(contracts.DebugLevel)
	log.Debug("debug", log.Field().Int("n", 1))
	log.Info("info", log.Field().String("s", "x"))
	log.Warn("warn", log.Field().Uint64("u", 2))
	log.Error("error", log.Field().Error("error", errors.New("boom")))
}

func TestFieldBuildersReturnZapFields(t *testing.T) {
	log := NewNopLogger()

	fields := []contracts.Field{
		log.Field().Bool("b", true),
		log.Field().Int("i", 1),
		log.Field().Float64("f", 0.5),
		log.Field().String("s", "x"),
		log.Field().Uint8("u8", 7),
	}

	assert.Len(t, unwrap(fields), len(fields))
}
