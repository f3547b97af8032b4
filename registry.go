package epio

// registration records which task slot waits on a descriptor and the
// flags the descriptor is registered with in the Poller.
type registration struct {
	slot   int
	events Events
}

// registry maps descriptors to the task waiting on them. Every entry
// is mirrored by a Poller registration with the same flags once the
// scheduler has finished handling the poll that produced it.
type registry struct {
	m map[int]registration
}

func newRegistry() *registry {
	return &registry{m: make(map[int]registration)}
}

func (r *registry) lookup(fd int) (registration, bool) {
	reg, ok := r.m[fd]
	return reg, ok
}

func (r *registry) insert(fd, slot int, events Events) {
	r.m[fd] = registration{slot: slot, events: events}
}

func (r *registry) remove(fd int) {
	delete(r.m, fd)
}

func (r *registry) len() int {
	return len(r.m)
}
