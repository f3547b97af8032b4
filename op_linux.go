//go:build linux

package epio

import (
	"os"

	"golang.org/x/sys/unix"
)

// AcceptOp accepts one connection from a listening socket. Accepted
// descriptors are non-blocking and close-on-exec.
type AcceptOp struct {
	fd int
}

// Poll attempts one accept. It waits for readability of the listening
// descriptor when no connection is pending.
func (op *AcceptOp) Poll() Poll[int] {
	nfd, _, err := unix.Accept4(op.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	switch {
	case err == nil:
		return Ready(nfd, nil)
	case err == unix.EAGAIN:
		return Pending[int](Interest{FD: op.fd, Events: EventRead})
	default:
		return Ready(-1, os.NewSyscallError("accept4", err))
	}
}

// Await suspends t until the accept completes and returns the new
// descriptor.
func (op *AcceptOp) Await(t *Task) (int, error) {
	return Await[int](t, op)
}

// ReadOp reads once into a buffer.
//
// Its first poll always suspends for readability so the descriptor is
// registered before any read is attempted. Every later poll reads
// directly and is ready with whatever the read returns, including
// EAGAIN as an error: a spurious or exhausted edge is not retried.
type ReadOp struct {
	fd      int
	buf     []byte
	started bool
}

func (op *ReadOp) Poll() Poll[int] {
	if !op.started {
		op.started = true
		return Pending[int](Interest{FD: op.fd, Events: EventRead})
	}

	n, err := unix.Read(op.fd, op.buf)
	if err != nil {
		return Ready(0, os.NewSyscallError("read", err))
	}
	return Ready(n, nil)
}

// Await suspends t until the read completes and returns the number of
// bytes read; zero means the peer shut down its side.
func (op *ReadOp) Await(t *Task) (int, error) {
	return Await[int](t, op)
}

// WriteOp writes a buffer once, waiting in edge-triggered mode for
// writability whenever the write would block.
type WriteOp struct {
	fd  int
	buf []byte
}

func (op *WriteOp) Poll() Poll[int] {
	n, err := unix.Write(op.fd, op.buf)
	switch {
	case err == nil:
		return Ready(n, nil)
	case err == unix.EAGAIN:
		return Pending[int](Interest{FD: op.fd, Events: EventWrite | EventEdge})
	default:
		return Ready(0, os.NewSyscallError("write", err))
	}
}

// Await suspends t until the write completes and returns the number of
// bytes written.
func (op *WriteOp) Await(t *Task) (int, error) {
	return Await[int](t, op)
}
