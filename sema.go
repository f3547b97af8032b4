package epio

import "github.com/gammazero/deque"

// sema implements a semaphore for task synchronization. It manages a
// count of available resources and a queue of parked tasks.
type sema struct {
	noCopy noCopy             // Prevents copying of the semaphore
	v      uint32             // Value (available resources)
	w      deque.Deque[*Task] // Parked tasks queue
}

// acquire takes a resource for the given task. If none is available,
// the task parks until a release hands one to it.
func (s *sema) acquire(t *Task) {
	if s.v > 0 {
		s.v--
		return
	}

	s.w.PushBack(t)
	t.park()
}

// release hands a resource to the longest parked task, or makes it
// available when no task is waiting.
func (s *sema) release() {
	if s.w.Len() == 0 {
		s.v++
		return
	}

	s.w.PopFront().wake()
}

// waiting returns the number of parked tasks.
func (s *sema) waiting() int {
	return s.w.Len()
}
