package epio

import (
	"strconv"
	"strings"
)

// Events is a set of readiness flags. EventRead, EventWrite and
// EventEdge may be requested; EventError and EventHangup are only
// ever reported by a Poller.
type Events uint32

const (
	// EventRead indicates the descriptor is (or should be watched for
	// becoming) readable.
	EventRead Events = 1 << iota
	// EventWrite indicates the descriptor is (or should be watched for
	// becoming) writable.
	EventWrite
	// EventEdge requests edge-triggered notification.
	EventEdge
	// EventError indicates an error condition on the descriptor.
	EventError
	// EventHangup indicates the peer closed its end of the connection.
	EventHangup
)

var eventNames = [...]string{"read", "write", "edge", "error", "hangup"}

func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	var sb strings.Builder
	for i, name := range eventNames {
		if e&(1<<i) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
		e &^= 1 << i
	}
	if e != 0 {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("0x")
		sb.WriteString(strconv.FormatUint(uint64(e), 16))
	}
	return sb.String()
}

// Interest is the readiness a suspended task waits for: the descriptor
// and the flags to register it with. A task yields exactly one Interest
// each time it suspends, and the scheduler consumes it in the same
// step, so there is never more than one pending Interest.
type Interest struct {
	FD     int
	Events Events
}
