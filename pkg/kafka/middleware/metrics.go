package kafka_middleware

import (
	"context"
	"time"

	"servimarket/pkg/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servimarket",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Messages handed to the broker, by topic and result",
		},
		[]string{"topic", "result"},
	)

	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "servimarket",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing a message",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)

// MetricsProducerMiddleware tracks publish counts and latency.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		publishDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = kafka.ClassifyError(err).String()
		}
		messagesPublished.WithLabelValues(msg.Topic, result).Inc()

		return err
	}
}
