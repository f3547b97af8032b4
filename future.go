package epio

// Future is a suspendable operation advanced by repeated polling. Each
// Poll makes at most one attempt and either completes or reports the
// Interest it must wait for before it is polled again.
type Future[T any] interface {
	Poll() Poll[T]
}

// Poll is the outcome of one Future.Poll call. When Ready is false,
// Want holds the descriptor and flags to wait for.
type Poll[T any] struct {
	Value T
	Err   error
	Want  Interest
	Ready bool
}

// Ready returns a completed Poll.
func Ready[T any](v T, err error) Poll[T] {
	return Poll[T]{Value: v, Err: err, Ready: true}
}

// Pending returns a Poll asking to be resumed once want is ready.
func Pending[T any](want Interest) Poll[T] {
	return Poll[T]{Want: want}
}

// Await polls f until it is ready, suspending t on the requested
// Interest after every poll that is not. It must be called from t's
// own function.
func Await[T any](t *Task, f Future[T]) (T, error) {
	for {
		p := f.Poll()
		if p.Ready {
			return p.Value, p.Err
		}
		t.wait(p.Want)
	}
}
