package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	drawTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_draw_requests_total",
			Help: "Total draw requests by result",
		},
		[]string{"result"},
	)

	drawDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lottery_draw_duration_ms",
			Help:    "Draw request duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)

	prizeUnitsAllocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_prize_units_allocated_total",
			Help: "Total prize units allocated by prize_type",
		},
		[]string{"prize_type"},
	)

	drawSampleRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lottery_draw_sample_retries_total",
			Help: "Times a sampled pool entry lost the decrement race and was resampled",
		},
	)

	poolRemainingUnits = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lottery_pool_remaining_units",
			Help: "Remaining units per pool entry",
		},
		[]string{"entry_id", "prize_type"},
	)
)

// RecordDraw records business metrics for a draw call.
// result should be one of "success", "partial", "exhausted", "fail".
func RecordDraw(result string, started time.Time) {
	res := strings.ToLower(result)
	switch res {
	case "success", "partial", "exhausted":
	default:
		res = "fail"
	}
	drawTotal.WithLabelValues(res).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	drawDuration.WithLabelValues(res).Observe(durMs)
}

// RecordPrizeAllocated 记录单个奖品单位的分配
func RecordPrizeAllocated(prizeType string) {
	prizeUnitsAllocated.WithLabelValues(strings.ToLower(prizeType)).Inc()
}

// RecordSampleRetry 记录一次扣减竞争失败后的重采样
func RecordSampleRetry() {
	drawSampleRetries.Inc()
}

// SetPoolRemaining 更新奖池条目剩余数量
func SetPoolRemaining(entryID int64, prizeType string, remaining int64) {
	poolRemainingUnits.WithLabelValues(strconv.FormatInt(entryID, 10), strings.ToLower(prizeType)).Set(float64(remaining))
}
