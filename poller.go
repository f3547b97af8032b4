package epio

import "errors"

var (
	// ErrInterrupted is returned by Poller.Wait when the wait was
	// interrupted by a signal before any event was collected. The
	// scheduler retries the wait.
	ErrInterrupted = errors.New("epio: poller wait interrupted")

	// ErrUnsupported is returned when no Poller implementation exists
	// for the current platform.
	ErrUnsupported = errors.New("epio: platform not supported")
)

// Poller is the OS readiness multiplexer driven by a Scheduler.
type Poller interface {
	// Add registers fd for the given readiness flags.
	Add(fd int, events Events) error
	// Modify replaces the flags fd is registered with.
	Modify(fd int, events Events) error
	// Wait blocks without timeout until at least one registered
	// descriptor is ready, filling events and returning how many
	// were written.
	Wait(events []Event) (int, error)
	// Close releases the multiplexer handle.
	Close() error
}

// Event is a readiness notification returned by Poller.Wait.
type Event struct {
	FD     int
	Events Events
}
