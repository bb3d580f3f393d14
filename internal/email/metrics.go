package email

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authgate_emails_sent_total",
		Help: "Total number of emails handed to the transport successfully",
	})
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authgate_emails_dropped_total",
		Help: "Total number of emails dropped due to a full buffer or delivery failure",
	})
)
