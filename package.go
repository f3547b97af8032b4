// Package epio provides a single-threaded cooperative task scheduler
// paired with an OS readiness multiplexer (epoll on Linux). Tasks are
// coroutines that perform non-blocking socket operations and suspend
// whenever an operation would block.
//
// Key components:
//
//   - Scheduler: Owns the task arena, the descriptor registry and the
//     Poller. Run drains newly spawned tasks, blocks for readiness and
//     resumes the task registered for each ready descriptor.
//
//   - Task: A fire-and-forget coroutine spawned with
//     Scheduler.Spawn. A task suspends by yielding the Interest it
//     wants the scheduler to register, and completes when its
//     function returns.
//
//   - Future / Await: Suspendable operations are polled state
//     machines. Await polls a Future from inside a task and suspends
//     the task while the Future reports it is not ready.
//
//   - Socket: Owns one OS socket descriptor and produces AcceptOp,
//     ReadOp and WriteOp futures. Close removes the descriptor's
//     registry entry and closes it.
//
//   - Synchronization primitives: Mutex, WaitGroup and ErrGroup park
//     tasks without any descriptor interest and resume them through
//     the scheduler's wake queue.
//
// Exactly one task runs at a time. None of the types in this package
// are safe for use from goroutines other than the one calling
// Scheduler.Run.
package epio
