//go:build windows
// +build windows

// Package midiwinmm adapts the Windows multimedia MIDI API to the
// DeviceHandle contract. winmm delivers short messages packed into a DWORD
// on a driver-owned thread; this backend unpacks them into raw bytes,
// applies FilterConfig in Go and timestamps events with the driver's
// millisecond clock (epoch: midiInStart). Virtual ports and system-exclusive
// input are not supported by this backend; use the rtmidi backend for those.
package midiwinmm

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soundio/midiport/sdk/contracts"
)

type hMidiIn windows.Handle

// Flags for midiInOpen.
const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
)

// Driver callback message types.
const (
	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimLongData  = 0x3C4
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

// midiInCaps mirrors the winmm MIDIINCAPSW structure.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// Go pointers must not cross the DLL boundary, so devices register under an
// integer cookie that the driver callback maps back to the instance.
var (
	registryMu sync.Mutex
	registry   = map[uintptr]*Device{}
	nextID     uintptr = 1
)

// midiInProc is shared by every device; created once because the runtime
// caps the number of windows.NewCallback trampolines per process.
var midiInProcPtr uintptr

var midiInProcOnce sync.Once

func midiInProcAddr() uintptr {
	midiInProcOnce.Do(func() {
		midiInProcPtr = windows.NewCallback(midiInProc)
	})
	return midiInProcPtr
}

// receiveBox wraps the callback so an atomic.Value can hold "no callback".
type receiveBox struct {
	fn contracts.ReceiveFunc
}

// Device manages one winmm MIDI input handle.
type Device struct {
	mu     sync.Mutex
	id     uintptr
	handle hMidiIn
	open   bool

	callback atomic.Value // receiveBox
	filter   atomic.Value // contracts.FilterConfig
}

// NewDeviceHandle creates an unopened winmm device.
func NewDeviceHandle(opts *contracts.ClientOptions) (contracts.DeviceHandle, error) {
	d := &Device{}
	d.callback.Store(receiveBox{})
	d.filter.Store(contracts.FilterConfig{})

	registryMu.Lock()
	d.id = nextID
	nextID++
	registry[d.id] = d
	registryMu.Unlock()

	return d, nil
}

// PortCount returns the number of MIDI input devices winmm reports.
func (d *Device) PortCount() (int, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	return int(uint32(r0)), nil
}

// PortName returns the product name of the device at the given index.
func (d *Device) PortName(port int) (string, error) {
	var caps midiInCaps
	r1, _, _ := procMidiInGetDevCaps.Call(
		uintptr(port),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != 0 {
		return "", fmt.Errorf("failed to get information for MIDI device %d", port)
	}
	return windows.UTF16ToString(caps.szPname[:]), nil
}

// OpenPort opens the device at the given index and starts input. The name is
// ignored; winmm names devices itself.
func (d *Device) OpenPort(port int, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		if err := d.closeLocked(); err != nil {
			return err
		}
	}

	r1, _, callErr := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&d.handle)),
		uintptr(port),
		midiInProcAddr(),
		d.id,
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		return fmt.Errorf("failed to open MIDI device %d: %v", port, callErr)
	}

	r1, _, callErr = procMidiInStart.Call(uintptr(d.handle))
	if r1 != 0 {
		_, _, _ = procMidiInClose.Call(uintptr(d.handle))
		d.handle = 0
		return fmt.Errorf("failed to start MIDI input on device %d: %v", port, callErr)
	}

	d.open = true
	return nil
}

// OpenVirtualPort is not supported by this backend.
func (d *Device) OpenVirtualPort(name string) error {
	return fmt.Errorf("virtual ports are not supported by the winmm backend")
}

// ClosePort stops input and closes the device handle, if open.
func (d *Device) ClosePort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeLocked()
}

func (d *Device) closeLocked() error {
	if !d.open {
		return nil
	}

	r1, _, callErr := procMidiInStop.Call(uintptr(d.handle))
	if r1 != 0 {
		return fmt.Errorf("failed to stop MIDI input: %v", callErr)
	}
	r1, _, callErr = procMidiInClose.Call(uintptr(d.handle))
	if r1 != 0 {
		return fmt.Errorf("failed to close MIDI device: %v", callErr)
	}

	d.handle = 0
	d.open = false
	return nil
}

// IsPortOpen reports whether a device is currently open.
func (d *Device) IsPortOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// SetCallback registers the receive function. The winmm callback is bound at
// open time, so the function is stored atomically and read per message on
// the driver thread.
func (d *Device) SetCallback(fn contracts.ReceiveFunc) error {
	d.callback.Store(receiveBox{fn: fn})
	return nil
}

// CancelCallback deregisters the receive function. Messages arriving after
// this returns are discarded on the driver thread.
func (d *Device) CancelCallback() error {
	d.callback.Store(receiveBox{})
	return nil
}

// IgnoreTypes updates the filter applied to incoming messages.
func (d *Device) IgnoreTypes(sysex, timeCode, activeSense bool) error {
	d.filter.Store(contracts.FilterConfig{
		SysEx:       sysex,
		TimeCode:    timeCode,
		ActiveSense: activeSense,
	})
	return nil
}

// Destroy closes the device and removes it from the callback registry.
func (d *Device) Destroy() {
	_ = d.ClosePort()

	registryMu.Lock()
	delete(registry, d.id)
	registryMu.Unlock()
}

// midiInProc runs on the winmm driver thread. Every parameter is uintptr;
// windows.NewCallback only accepts pointer-sized arguments.
func midiInProc(hMidiIn, wMsg, dwInstance, dwParam1, dwParam2 uintptr) uintptr {
	registryMu.Lock()
	d := registry[dwInstance]
	registryMu.Unlock()
	if d == nil {
		return 0
	}

	switch wMsg {
	case mimData:
		d.handleData(dwParam1, dwParam2)
	case mimOpen, mimClose, mimLongData, mimError, mimLongError, mimMoreData:
		// Long (sysex) buffers are not prepared by this backend; driver
		// status and error notifications carry no message payload.
	}
	return 0
}

// handleData unpacks one short message. dwParam1 packs up to three bytes,
// dwParam2 is milliseconds since midiInStart.
func (d *Device) handleData(dwParam1, dwParam2 uintptr) {
	box, _ := d.callback.Load().(receiveBox)
	if box.fn == nil {
		return
	}

	status := byte(dwParam1 & 0xFF)
	message := []byte{status, byte(dwParam1 >> 8 & 0xFF), byte(dwParam1 >> 16 & 0xFF)}
	message = message[:shortMessageLength(status)]

	filter, _ := d.filter.Load().(contracts.FilterConfig)
	if filter.Drops(message) {
		return
	}

	box.fn(float64(dwParam2)/1000.0, message)
}

// shortMessageLength returns the raw length of a non-sysex MIDI message for
// the given status byte.
func shortMessageLength(status byte) int {
	switch {
	case status >= 0xF8: // System real-time.
		return 1
	case status == 0xF1 || status == 0xF3: // MTC quarter frame, song select.
		return 2
	case status == 0xF2: // Song position pointer.
		return 3
	case status >= 0xF0: // Remaining system common.
		return 1
	case status&0xF0 == 0xC0 || status&0xF0 == 0xD0: // Program change, channel pressure.
		return 2
	default:
		return 3
	}
}
