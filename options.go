package epio

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultMaxEvents is the default number of readiness events collected
// per Poller.Wait call.
const DefaultMaxEvents = 1024

// ErrInvalidMaxEvents is returned by New when WithMaxEvents is given a
// value below one.
var ErrInvalidMaxEvents = errors.New("epio: max events must be positive")

// schedulerOptions holds configuration resolved by New.
type schedulerOptions struct {
	maxEvents  int
	logger     zerolog.Logger
	registerer prometheus.Registerer
	poller     Poller
}

// Option configures a Scheduler.
type Option interface {
	apply(*schedulerOptions) error
}

type optionFunc func(*schedulerOptions) error

func (f optionFunc) apply(opts *schedulerOptions) error {
	return f(opts)
}

// WithMaxEvents sets the maximum number of readiness events retrieved
// by a single wait. More ready descriptors than this are picked up by
// subsequent waits.
func WithMaxEvents(n int) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		if n < 1 {
			return ErrInvalidMaxEvents
		}
		opts.maxEvents = n
		return nil
	})
}

// WithLogger sets the logger used for scheduler diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	})
}

// WithRegisterer registers the scheduler's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		opts.registerer = reg
		return nil
	})
}

// WithPoller makes the scheduler drive p instead of creating the
// platform Poller. The scheduler takes ownership of p.
func WithPoller(p Poller) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		opts.poller = p
		return nil
	})
}

func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		maxEvents: DefaultMaxEvents,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
