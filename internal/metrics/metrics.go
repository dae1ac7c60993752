// Package metrics exposes the chat platform's Prometheus gauges and
// counters: connection churn, message throughput, broadcast fan-out, and
// consumer lag, scraped at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatgrid_connections_active",
		Help: "Current number of active websocket sessions on this instance.",
	})

	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatgrid_connections_total",
		Help: "Total websocket sessions accepted since startup.",
	})

	MessagesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatgrid_messages_sent_total",
		Help: "Total messages persisted via MessageService.Send.",
	})

	MessagesPublishFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatgrid_messages_publish_failures_total",
		Help: "Total message_sent events that failed to publish after the message was durably stored.",
	})

	BroadcastsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatgrid_broadcasts_sent_total",
		Help: "Total frames delivered to local connections by the fan-out consumer.",
	}, []string{"channel_id"})

	BroadcastsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatgrid_broadcasts_dropped_total",
		Help: "Total frames dropped because a connection's outbound queue was full.",
	})

	KafkaConsumerLagRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chatgrid_kafka_consumer_lag_records",
		Help: "Estimated consumer lag in records, by consumer group and topic.",
	}, []string{"group", "topic"})

	ShardTopicMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatgrid_shard_topic_messages_total",
		Help: "Total events produced per shard topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(
		ConnectionsActive,
		ConnectionsTotal,
		MessagesSentTotal,
		MessagesPublishFailuresTotal,
		BroadcastsSentTotal,
		BroadcastsDroppedTotal,
		KafkaConsumerLagRecords,
		ShardTopicMessagesTotal,
	)
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
