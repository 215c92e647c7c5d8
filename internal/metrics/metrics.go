// Package metrics defines the Prometheus collectors exported by the client
// transport and the relay.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "sealchat"

// Transport counts connection lifecycle and frame handling on the client.
type Transport struct {
	Connects        prometheus.Counter
	Disconnects     prometheus.Counter
	ReconnectDelay  prometheus.Histogram
	FramesReceived  *prometheus.CounterVec
	FramesDropped   *prometheus.CounterVec
	SendsDropped    prometheus.Counter
	HandlerFailures *prometheus.CounterVec
	State           prometheus.Gauge
}

// NewTransport registers transport collectors with reg. A nil reg leaves
// them unregistered, which is what tests want.
func NewTransport(reg prometheus.Registerer) *Transport {
	m := &Transport{
		Connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "connects_total",
			Help: "Successful connection establishments.",
		}),
		Disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "disconnects_total",
			Help: "Connection losses and failed dials.",
		}),
		ReconnectDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "transport", Name: "reconnect_delay_seconds",
			Help:    "Backoff delay scheduled before each reconnection attempt.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "frames_received_total",
			Help: "Inbound frames dispatched, by event type.",
		}, []string{"type"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "frames_dropped_total",
			Help: "Inbound frames dropped, by reason.",
		}, []string{"reason"}),
		SendsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "sends_dropped_total",
			Help: "Outbound events dropped because the link was down.",
		}),
		HandlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transport", Name: "handler_failures_total",
			Help: "Subscriber errors and panics, by event type.",
		}, []string{"type"}),
		State: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "transport", Name: "state",
			Help: "Connection state: 0 disconnected, 1 connecting, 2 connected.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Connects, m.Disconnects, m.ReconnectDelay, m.FramesReceived,
			m.FramesDropped, m.SendsDropped, m.HandlerFailures, m.State)
	}
	return m
}

// Relay counts routing activity on the relay.
type Relay struct {
	Clients      prometheus.Gauge
	Routed       *prometheus.CounterVec
	Rejected     *prometheus.CounterVec
	SecretsHeld  prometheus.Gauge
	SecretsBurnt prometheus.Counter
}

// NewRelay registers relay collectors with reg (nil leaves them unregistered).
func NewRelay(reg prometheus.Registerer) *Relay {
	m := &Relay{
		Clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "relay", Name: "clients",
			Help: "Authenticated connections.",
		}),
		Routed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "relay", Name: "routed_total",
			Help: "Events forwarded, by event type.",
		}, []string{"type"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "relay", Name: "rejected_total",
			Help: "Frames refused, by reason.",
		}, []string{"reason"}),
		SecretsHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "relay", Name: "secrets_held",
			Help: "One-time secrets delivered but not yet burnt.",
		}),
		SecretsBurnt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "relay", Name: "secrets_burnt_total",
			Help: "One-time secrets destroyed after being read.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Clients, m.Routed, m.Rejected, m.SecretsHeld, m.SecretsBurnt)
	}
	return m
}
