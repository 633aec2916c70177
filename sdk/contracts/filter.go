package contracts

// MIDI status bytes relevant to input filtering.
const (
	StatusSysExStart   byte = 0xF0
	StatusMIDITimeCode byte = 0xF1
	StatusTimingClock  byte = 0xF8
	StatusActiveSense  byte = 0xFE
)

// FilterConfig holds the three independent suppression switches applied at
// the device boundary. A true value suppresses the message class before it
// reaches the bridge; the bridge never buffers filter state.
type FilterConfig struct {
	SysEx       bool // Suppress system-exclusive messages.
	TimeCode    bool // Suppress time code and timing clock messages.
	ActiveSense bool // Suppress active-sensing messages.
}

// Drops reports whether the given raw message must be suppressed under this
// configuration. Backends whose driver applies filtering natively (rtmidi)
// do not use it; backends receiving unfiltered streams (CoreMIDI, winmm) and
// the test fake call it once per message on the driver thread.
func (f FilterConfig) Drops(message []byte) bool {
	if len(message) == 0 {
		return false
	}
	switch message[0] {
	case StatusSysExStart:
		return f.SysEx
	case StatusMIDITimeCode, StatusTimingClock:
		return f.TimeCode
	case StatusActiveSense:
		return f.ActiveSense
	}
	return false
}
