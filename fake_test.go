package epio

import (
	"errors"
	"sort"
)

var errScriptDone = errors.New("fake poller: script exhausted")

// fakeWait is one scripted result of fakePoller.Wait. The events are
// copied into the caller's buffer even when err is set.
type fakeWait struct {
	events []Event
	err    error
}

// fakePoller replays scripted waits. Once the script is exhausted it
// either fails or, in auto mode, reports every registered descriptor as
// ready, rotating the start so no descriptor is starved by a small
// event buffer.
type fakePoller struct {
	script    []fakeWait
	auto      bool
	addErr    error
	modErr    error
	adds      []Interest
	mods      []Interest
	regs      map[int]Events
	waits     int
	rotate    int
	closed    bool
	closedErr error
}

func newFakePoller(script ...fakeWait) *fakePoller {
	return &fakePoller{script: script, regs: make(map[int]Events)}
}

func (p *fakePoller) Add(fd int, events Events) error {
	if p.addErr != nil {
		return p.addErr
	}
	if _, ok := p.regs[fd]; ok {
		return errors.New("fake poller: already registered")
	}
	p.adds = append(p.adds, Interest{FD: fd, Events: events})
	p.regs[fd] = events
	return nil
}

func (p *fakePoller) Modify(fd int, events Events) error {
	if p.modErr != nil {
		return p.modErr
	}
	if _, ok := p.regs[fd]; !ok {
		return errors.New("fake poller: not registered")
	}
	p.mods = append(p.mods, Interest{FD: fd, Events: events})
	p.regs[fd] = events
	return nil
}

// remove emulates the kernel dropping a registration when its
// descriptor is closed.
func (p *fakePoller) remove(fd int) {
	delete(p.regs, fd)
}

func (p *fakePoller) Wait(events []Event) (int, error) {
	p.waits++

	if len(p.script) > 0 {
		w := p.script[0]
		p.script = p.script[1:]
		n := copy(events, w.events)
		if w.err != nil {
			return 0, w.err
		}
		return n, nil
	}

	if !p.auto || len(p.regs) == 0 {
		return 0, errScriptDone
	}

	fds := make([]int, 0, len(p.regs))
	for fd := range p.regs {
		fds = append(fds, fd)
	}
	sort.Ints(fds)

	n := 0
	for i := 0; i < len(fds) && n < len(events); i++ {
		fd := fds[(p.rotate+i)%len(fds)]
		events[n] = Event{FD: fd, Events: p.regs[fd]}
		n++
	}
	p.rotate += n
	return n, nil
}

func (p *fakePoller) Close() error {
	p.closed = true
	return p.closedErr
}

// countdown is a Future that stays pending on want for the given number
// of polls and is then ready with the total number of polls.
type countdown struct {
	want  Interest
	left  int
	polls int
}

func (f *countdown) Poll() Poll[int] {
	f.polls++
	if f.left == 0 {
		return Ready(f.polls, nil)
	}
	f.left--
	return Pending[int](f.want)
}

// sequence is a Future that waits on each Interest in turn and is then
// ready.
type sequence struct {
	wants []Interest
	polls int
}

func (f *sequence) Poll() Poll[int] {
	f.polls++
	if len(f.wants) == 0 {
		return Ready(f.polls, nil)
	}
	want := f.wants[0]
	f.wants = f.wants[1:]
	return Pending[int](want)
}

// failing is a Future that is immediately ready with err.
type failing struct {
	err error
}

func (f failing) Poll() Poll[int] {
	return Ready(0, f.err)
}

// release emulates a socket release for a descriptor used by a fake
// future: the registry entry goes away and so does the kernel's
// registration.
func release(s *Scheduler, p *fakePoller, fd int) {
	s.registry.remove(fd)
	p.remove(fd)
}
