//go:build !linux

package epio

// newPoller returns an error on platforms without an epoll backend.
func newPoller() (Poller, error) {
	return nil, ErrUnsupported
}
