package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Realtime carries the collectors for the room core.
type Realtime struct {
	RoomsActive        prometheus.Gauge
	ParticipantsActive prometheus.Gauge
	CodeBroadcasts     prometheus.Counter
	ChatMessages       prometheus.Counter
	BootstrapRequests  prometheus.Counter
	DroppedMessages    prometheus.Counter
}

func NewRealtime(reg prometheus.Registerer) *Realtime {
	factory := promauto.With(reg)

	return &Realtime{
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "coderoom",
			Name:      "rooms_active",
			Help:      "Number of rooms with at least one participant.",
		}),
		ParticipantsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "coderoom",
			Name:      "participants_active",
			Help:      "Number of connected participants across all rooms.",
		}),
		CodeBroadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom",
			Name:      "code_broadcasts_total",
			Help:      "Code-change events relayed to room members.",
		}),
		ChatMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom",
			Name:      "chat_messages_total",
			Help:      "Chat messages relayed to room members.",
		}),
		BootstrapRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom",
			Name:      "bootstrap_requests_total",
			Help:      "Late-joiner code bootstrap handshakes initiated.",
		}),
		DroppedMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "coderoom",
			Name:      "dropped_messages_total",
			Help:      "Outbound messages dropped because a client queue was full.",
		}),
	}
}
