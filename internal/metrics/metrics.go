package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vas_queue_messages_consumed_total",
		Help: "Messages consumed per queue.",
	}, []string{"queue"})

	MessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vas_queue_messages_published_total",
		Help: "Messages published per queue.",
	}, []string{"queue"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vas_queue_publish_failures_total",
		Help: "Publish attempts that exhausted retries, per queue.",
	}, []string{"queue"})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vas_authorization_decisions_total",
		Help: "Authorization engine outcomes.",
	}, []string{"outcome"})
)
