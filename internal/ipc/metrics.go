package ipc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transport metrics, registered on the default registry.
var (
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tensorwire",
		Subsystem: "ipc",
		Name:      "messages_sent_total",
		Help:      "Messages written to the transport.",
	})
	messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tensorwire",
		Subsystem: "ipc",
		Name:      "messages_received_total",
		Help:      "Messages read from the transport.",
	})
	framesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tensorwire",
		Subsystem: "ipc",
		Name:      "frames_decoded_total",
		Help:      "Tensor frames decoded from received messages.",
	})
	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tensorwire",
		Subsystem: "ipc",
		Name:      "bytes_sent_total",
		Help:      "Payload bytes written to the transport.",
	})
	bytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tensorwire",
		Subsystem: "ipc",
		Name:      "bytes_received_total",
		Help:      "Payload bytes read from the transport.",
	})
	decodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tensorwire",
		Subsystem: "ipc",
		Name:      "decode_errors_total",
		Help:      "Messages dropped because a frame failed to decode.",
	})
)
