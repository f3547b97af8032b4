//go:build linux

package epio

import (
	"os"

	"golang.org/x/sys/unix"
)

// epollPoller implements Poller using epoll(7).
type epollPoller struct {
	epfd int
	buf  []unix.EpollEvent
}

// newPoller creates the platform Poller.
func newPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	return &epollPoller{epfd: epfd}, nil
}

func (p *epollPoller) Add(fd int, events Events) error {
	return p.ctl(unix.EPOLL_CTL_ADD, fd, events)
}

func (p *epollPoller) Modify(fd int, events Events) error {
	return p.ctl(unix.EPOLL_CTL_MOD, fd, events)
}

func (p *epollPoller) ctl(op, fd int, events Events) error {
	ev := unix.EpollEvent{
		Events: eventsToEpoll(events),
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(p.epfd, op, fd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

func (p *epollPoller) Wait(events []Event) (int, error) {
	if len(p.buf) < len(events) {
		p.buf = make([]unix.EpollEvent, len(events))
	}

	n, err := unix.EpollWait(p.epfd, p.buf[:len(events)], -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, ErrInterrupted
		}
		return 0, os.NewSyscallError("epoll_wait", err)
	}

	for i := 0; i < n; i++ {
		events[i] = Event{
			FD:     int(p.buf[i].Fd),
			Events: epollToEvents(p.buf[i].Events),
		}
	}
	return n, nil
}

func (p *epollPoller) Close() error {
	return os.NewSyscallError("close", unix.Close(p.epfd))
}

func eventsToEpoll(events Events) uint32 {
	var ep uint32
	if events&EventRead != 0 {
		ep |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		ep |= unix.EPOLLOUT
	}
	if events&EventEdge != 0 {
		ep |= unix.EPOLLET
	}
	return ep
}

func epollToEvents(ep uint32) Events {
	var events Events
	if ep&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if ep&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if ep&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if ep&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}
