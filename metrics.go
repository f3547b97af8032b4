package epio

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "epio"

// metrics groups the scheduler's collectors. They are always updated
// and only exported when a Registerer is configured.
type metrics struct {
	spawned       prometheus.Counter
	completed     prometheus.Counter
	live          prometheus.Gauge
	polls         prometheus.Counter
	waits         prometheus.Counter
	events        prometheus.Counter
	interrupts    prometheus.Counter
	stale         prometheus.Counter
	registrations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tasks_spawned_total",
			Help:      "Tasks submitted with Spawn.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tasks_completed_total",
			Help:      "Tasks whose function returned.",
		}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tasks_live",
			Help:      "Arena slots holding a task that has not completed.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "task_polls_total",
			Help:      "Task resumptions performed by the scheduler.",
		}),
		waits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "waits_total",
			Help:      "Poller waits that returned events.",
		}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "readiness_events_total",
			Help:      "Readiness events returned by the poller.",
		}),
		interrupts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "wait_interrupts_total",
			Help:      "Poller waits interrupted by a signal and retried.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_events_total",
			Help:      "Readiness events skipped because no runnable task was registered.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Poller registration changes by operation.",
		}, []string{"op"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{
		m.spawned,
		m.completed,
		m.live,
		m.polls,
		m.waits,
		m.events,
		m.interrupts,
		m.stale,
		m.registrations,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
