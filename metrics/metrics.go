package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackfest_http_requests_total", Help: "Total HTTP requests by method and status"},
		[]string{"method", "status"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackfest_rate_limited_total", Help: "Total requests rejected by the rate limiter"},
	)
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "hackfest_ws_clients", Help: "Currently connected websocket clients"},
	)
	NotificationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackfest_notifications_sent_total", Help: "Total notification rows written"},
	)
	NotificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackfest_notifications_failed_total", Help: "Total notification writes dropped during fan-out"},
	)
)

func Register() {
	prometheus.MustRegister(HTTPRequests, RateLimited, ConnectedClients, NotificationsSent, NotificationsFailed)
}
