package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NotificationsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notifications delivered, by event type",
	}, []string{"type"})
	NotificationDuplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_duplicates_total",
		Help: "Deliveries skipped because the event was already notified",
	})
	NotificationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Deliveries that were not notified, by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(NotificationsSentTotal, NotificationDuplicatesTotal, NotificationFailuresTotal)
}
