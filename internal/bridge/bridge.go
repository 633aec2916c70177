// Package bridge moves MIDI events from the driver's callback thread to a
// single consumer goroutine. It is the only synchronization point between the
// two execution contexts: the producer side never blocks, and Disarm acts as
// a barrier after which no handler invocation can occur.
package bridge

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/soundio/midiport/sdk/contracts"
)

// DefaultBufferSize is the queue capacity used when the caller does not
// configure one.
const DefaultBufferSize = 128

// Bridge transports events from an arbitrary producer thread to one consumer
// goroutine, preserving arrival order and delivering each event at most once.
// The zero value is not usable; construct with New.
type Bridge struct {
	logger contracts.Logger
	size   int

	mu      sync.RWMutex
	armed   bool
	handler contracts.Handler
	events  chan contracts.Event
	quit    chan struct{}
	done    chan struct{} // Kept across Disarm so a re-arm can wait out the old consumer.

	consumerID atomic.Uint64 // Goroutine id of the active consumer.
	dropped    atomic.Uint64
}

// New creates an unarmed bridge whose queue holds up to size events.
func New(logger contracts.Logger, size int) *Bridge {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Bridge{logger: logger, size: size}
}

// Arm registers the handler and starts the consumer goroutine. It fails with
// ErrBridgeArmed when a previous arm cycle is still active; the lifecycle
// controller only calls it with the bridge disarmed.
func (b *Bridge) Arm(handler contracts.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.armed {
		return contracts.ErrBridgeArmed
	}
	if handler == nil {
		return contracts.ErrInvalidArgument
	}

	b.armed = true
	b.handler = handler
	b.events = make(chan contracts.Event, b.size)
	b.quit = make(chan struct{})
	prev := b.done
	b.done = make(chan struct{})

	go b.consume(handler, b.events, b.quit, b.done, prev)
	return nil
}

// Deliver hands one event to the bridge. Called on the producer thread; it
// never blocks. When the bridge is disarmed, tearing down, or the queue is
// full, the event is dropped and its ownership ends here.
func (b *Bridge) Deliver(event contracts.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.armed {
		b.dropped.Add(1)
		return
	}

	select {
	case b.events <- event:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event queue full; dropping MIDI event",
			b.logger.Field().Uint64("dropped", b.dropped.Load()))
	}
}

// Disarm stops delivery and blocks until the consumer goroutine has exited.
// When it returns, any in-flight handler invocation has completed and no
// further invocation will start. Events still queued are discarded.
// Disarm is idempotent; disarming an unarmed bridge is a no-op.
//
// Disarm is legal from inside the handler itself (a handler closing its own
// port). That call runs on the consumer goroutine, so the barrier wait is
// skipped there: the loop exits on quit as soon as the handler returns,
// and no further invocation starts either way.
//
// The controller cancels the driver callback registration before calling
// Disarm, so no new deliveries begin while the barrier is waiting.
func (b *Bridge) Disarm() {
	b.mu.Lock()
	if !b.armed {
		b.mu.Unlock()
		return
	}
	b.armed = false
	b.handler = nil
	quit, done := b.quit, b.done
	b.events, b.quit = nil, nil
	b.mu.Unlock()

	close(quit)
	if goroutineID() == b.consumerID.Load() {
		// Re-entrant call from the handler; waiting here would deadlock
		// against our own goroutine.
		return
	}
	<-done
}

// Armed reports whether an arm cycle is active.
func (b *Bridge) Armed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.armed
}

// Dropped returns the number of events discarded since construction.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// consume is the consumer execution context: one goroutine per arm cycle,
// invoking the handler sequentially in delivery order. The channels are
// passed in rather than read from the struct so a later re-arm cannot race
// an exiting goroutine.
func (b *Bridge) consume(handler contracts.Handler, events chan contracts.Event, quit, done, prev chan struct{}) {
	defer close(done)

	// A handler may disarm its own bridge and re-arm it (close then reopen
	// from inside the callback). The previous consumer is then still inside
	// that handler invocation; waiting for it keeps invocations sequential
	// across arm cycles.
	if prev != nil {
		<-prev
	}
	b.consumerID.Store(goroutineID())

	for {
		select {
		case <-quit:
			return
		case event := <-events:
			handler(event.Timestamp, event.Payload)
		}
	}
}

// goroutineID returns the numeric id from the first line of the calling
// goroutine's stack trace ("goroutine 123 [running]:"). Only used to detect
// a Disarm issued from the consumer goroutine itself.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(header, ' '); i > 0 {
		id, err := strconv.ParseUint(string(header[:i]), 10, 64)
		if err == nil {
			return id
		}
	}
	return 0
}
