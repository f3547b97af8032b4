package epio

// Mutex provides mutual exclusion for tasks. It allows only one task
// to hold the lock at a time, parking other tasks that attempt to
// acquire the lock until it is handed to them in FIFO order.
type Mutex struct {
	noCopy noCopy // Prevents copying of the mutex
	owner  *Task  // Task holding the lock
	sema   sema   // Semaphore for queuing parked tasks
}

// Lock acquires the mutex for the given task. If the mutex is already
// locked, the task parks until the mutex is handed to it.
func (m *Mutex) Lock(task *Task) {
	if m.owner == nil {
		m.owner = task
		return
	}

	m.sema.acquire(task)
}

// Unlock releases the mutex. If tasks are waiting, ownership passes
// directly to the first of them, which resumes before the scheduler
// next blocks.
func (m *Mutex) Unlock() {
	if m.owner == nil {
		panic("epio: unlock of unlocked mutex")
	}

	if m.sema.waiting() == 0 {
		m.owner = nil
		return
	}

	m.owner = m.sema.w.Front()
	m.sema.release()
}

// WaitCount returns the number of tasks waiting to acquire the mutex.
func (m *Mutex) WaitCount() int {
	return m.sema.waiting()
}
