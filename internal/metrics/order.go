package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_order_requests_total",
			Help: "Total prize order requests by result",
		},
		[]string{"result"},
	)

	orderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lottery_order_duration_ms",
			Help:    "Prize order generation duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)

	orderPrizeCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lottery_order_prize_count",
			Help:    "Number of prizes per generated order",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	blindBoxTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_blindbox_requests_total",
			Help: "Total blind box draw requests by result",
		},
		[]string{"result"},
	)
)

// RecordOrder records business metrics for an order generation call.
// result should be "success" or "fail".
func RecordOrder(result string, prizeCount int, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	orderTotal.WithLabelValues(res).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	orderDuration.WithLabelValues(res).Observe(durMs)
	if res == "success" && prizeCount > 0 {
		orderPrizeCount.Observe(float64(prizeCount))
	}
}

// RecordBlindBox records business metrics for a blind box draw.
func RecordBlindBox(result string, started time.Time) {
	res := strings.ToLower(result)
	switch res {
	case "success", "exhausted":
	default:
		res = "fail"
	}
	blindBoxTotal.WithLabelValues(res).Inc()
}
