//go:build linux

package epio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Socket owns one IPv4 TCP socket descriptor. It must not be copied;
// Close releases the descriptor.
type Socket struct {
	noCopy noCopy
	sched  *Scheduler
	fd     int
}

// NewSocket creates a TCP socket whose registrations live in s.
func NewSocket(s *Scheduler) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	return &Socket{sched: s, fd: fd}, nil
}

// WrapSocket takes ownership of fd, typically one returned by an
// AcceptOp.
func WrapSocket(s *Scheduler, fd int) *Socket {
	return &Socket{sched: s, fd: fd}
}

// FD returns the owned descriptor, or -1 after Close.
func (sk *Socket) FD() int {
	return sk.fd
}

// Bind enables SO_REUSEPORT and binds the wildcard address on port.
func (sk *Socket) Bind(port int) error {
	if err := unix.SetsockoptInt(sk.fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	if err := unix.Bind(sk.fd, &unix.SockaddrInet4{Port: port}); err != nil {
		return os.NewSyscallError("bind", err)
	}
	return nil
}

// Listen marks the socket as listening and switches it to
// non-blocking mode.
func (sk *Socket) Listen(backlog int) error {
	if err := unix.Listen(sk.fd, backlog); err != nil {
		return os.NewSyscallError("listen", err)
	}
	if err := unix.SetNonblock(sk.fd, true); err != nil {
		return os.NewSyscallError("fcntl", err)
	}
	return nil
}

// Connect switches the socket to non-blocking mode and starts
// connecting to addr:port. A connection still in progress is not an
// error; a following WriteOp suspends until it is established.
func (sk *Socket) Connect(addr [4]byte, port int) error {
	if err := unix.SetNonblock(sk.fd, true); err != nil {
		return os.NewSyscallError("fcntl", err)
	}
	err := unix.Connect(sk.fd, &unix.SockaddrInet4{Port: port, Addr: addr})
	if err != nil && err != unix.EINPROGRESS {
		return os.NewSyscallError("connect", err)
	}
	return nil
}

// Port returns the local port the socket is bound to.
func (sk *Socket) Port() (int, error) {
	sa, err := unix.Getsockname(sk.fd)
	if err != nil {
		return 0, os.NewSyscallError("getsockname", err)
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("epio: unexpected socket address %T", sa)
	}
	return sa4.Port, nil
}

// Accept returns an operation accepting one connection.
func (sk *Socket) Accept() *AcceptOp {
	return &AcceptOp{fd: sk.fd}
}

// Read returns an operation reading once into buf.
func (sk *Socket) Read(buf []byte) *ReadOp {
	return &ReadOp{fd: sk.fd, buf: buf}
}

// Write returns an operation writing the first n bytes of buf.
func (sk *Socket) Write(buf []byte, n int) *WriteOp {
	return &WriteOp{fd: sk.fd, buf: buf[:n]}
}

// Close removes the descriptor's registry entry and closes it.
func (sk *Socket) Close() error {
	if sk.fd < 0 {
		return os.ErrClosed
	}
	fd := sk.fd
	sk.fd = -1
	sk.sched.registry.remove(fd)
	if err := unix.Close(fd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}
