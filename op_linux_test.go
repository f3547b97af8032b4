//go:build linux

package epio

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (int, int) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestReadOpFirstPollSuspends(t *testing.T) {
	r := require.New(t)
	a, b := socketpair(t)

	_, err := unix.Write(b, []byte("ping"))
	r.NoError(err)

	op := &ReadOp{fd: a, buf: make([]byte, 16)}

	// Data is already buffered but the first poll only asks to wait.
	p := op.Poll()
	r.False(p.Ready)
	r.Equal(Interest{FD: a, Events: EventRead}, p.Want)

	p = op.Poll()
	r.True(p.Ready)
	r.NoError(p.Err)
	r.Equal(4, p.Value)
	r.Equal("ping", string(op.buf[:p.Value]))
}

func TestReadOpDoesNotRetryWouldBlock(t *testing.T) {
	r := require.New(t)
	a, _ := socketpair(t)

	op := &ReadOp{fd: a, buf: make([]byte, 16)}
	r.False(op.Poll().Ready)

	p := op.Poll()
	r.True(p.Ready)
	r.ErrorIs(p.Err, unix.EAGAIN)
	r.Zero(p.Value)
}

func TestReadOpPeerClosed(t *testing.T) {
	r := require.New(t)

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	r.NoError(err)
	defer unix.Close(fds[0])
	r.NoError(unix.Close(fds[1]))

	op := &ReadOp{fd: fds[0], buf: make([]byte, 16)}
	r.False(op.Poll().Ready)

	p := op.Poll()
	r.True(p.Ready)
	r.NoError(p.Err)
	r.Zero(p.Value)
}

func TestAcceptOp(t *testing.T) {
	r := require.New(t)

	lfd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	r.NoError(err)
	defer unix.Close(lfd)
	r.NoError(unix.Bind(lfd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}))
	r.NoError(unix.Listen(lfd, 8))
	r.NoError(unix.SetNonblock(lfd, true))

	sa, err := unix.Getsockname(lfd)
	r.NoError(err)
	port := sa.(*unix.SockaddrInet4).Port

	op := &AcceptOp{fd: lfd}
	for i := 0; i < 2; i++ {
		p := op.Poll()
		r.False(p.Ready)
		r.Equal(Interest{FD: lfd, Events: EventRead}, p.Want)
	}

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	r.NoError(err)
	defer conn.Close()

	var p Poll[int]
	r.Eventually(func() bool {
		p = op.Poll()
		return p.Ready
	}, 5*time.Second, 10*time.Millisecond)

	r.NoError(p.Err)
	nfd := p.Value
	defer unix.Close(nfd)

	fl, err := unix.FcntlInt(uintptr(nfd), unix.F_GETFL, 0)
	r.NoError(err)
	r.NotZero(fl & unix.O_NONBLOCK)

	fd, err := unix.FcntlInt(uintptr(nfd), unix.F_GETFD, 0)
	r.NoError(err)
	r.NotZero(fd & unix.FD_CLOEXEC)
}

func TestAcceptOpError(t *testing.T) {
	r := require.New(t)

	op := &AcceptOp{fd: -1}
	p := op.Poll()
	r.True(p.Ready)
	r.Equal(-1, p.Value)
	r.ErrorIs(p.Err, unix.EBADF)
}

func TestWriteOpWouldBlock(t *testing.T) {
	r := require.New(t)
	a, b := socketpair(t)

	chunk := make([]byte, 4096)

	var p Poll[int]
	for i := 0; ; i++ {
		r.Less(i, 1<<16, "socket buffer never filled")
		p = (&WriteOp{fd: a, buf: chunk}).Poll()
		if !p.Ready {
			break
		}
		r.NoError(p.Err)
	}

	op := &WriteOp{fd: a, buf: chunk}
	for i := 0; i < 2; i++ {
		p = op.Poll()
		r.False(p.Ready)
		r.Equal(Interest{FD: a, Events: EventWrite | EventEdge}, p.Want)
	}

	buf := make([]byte, 1<<16)
	for {
		if _, err := unix.Read(b, buf); err != nil {
			r.ErrorIs(err, unix.EAGAIN)
			break
		}
	}

	p = op.Poll()
	r.True(p.Ready)
	r.NoError(p.Err)
	r.Positive(p.Value)
}

func TestWriteOpError(t *testing.T) {
	r := require.New(t)

	p := (&WriteOp{fd: -1, buf: []byte("x")}).Poll()
	r.True(p.Ready)
	r.ErrorIs(p.Err, unix.EBADF)
}
