package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterConfigDrops(t *testing.T) {
	tests := []struct {
		name    string
		filter  FilterConfig
		message []byte
		want    bool
	}{
		{"empty message passes", FilterConfig{SysEx: true, TimeCode: true, ActiveSense: true}, nil, false},
		{"note on passes unfiltered", FilterConfig{}, []byte{0x90, 0x40, 0x7F}, false},
		{"note on passes filtered", FilterConfig{SysEx: true, TimeCode: true, ActiveSense: true}, []byte{0x90, 0x40, 0x7F}, false},
		{"sysex dropped", FilterConfig{SysEx: true}, []byte{0xF0, 0x7E, 0x01, 0xF7}, true},
		{"sysex passes without flag", FilterConfig{TimeCode: true, ActiveSense: true}, []byte{0xF0, 0x7E, 0x01, 0xF7}, false},
		{"timing clock dropped", FilterConfig{TimeCode: true}, []byte{0xF8}, true},
		{"time code dropped", FilterConfig{TimeCode: true}, []byte{0xF1, 0x00}, true},
		{"timing clock passes without flag", FilterConfig{SysEx: true, ActiveSense: true}, []byte{0xF8}, false},
		{"active sensing dropped", FilterConfig{ActiveSense: true}, []byte{0xFE}, true},
		{"active sensing passes without flag", FilterConfig{SysEx: true, TimeCode: true}, []byte{0xFE}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Drops(tt.message))
		})
	}
}
