package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics_Counter(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricPaymentsSettled, 1)
	m.Counter(MetricPaymentsSettled, 2)

	assert.Equal(t, int64(3), m.GetCounter(MetricPaymentsSettled))
}

func TestInMemoryMetrics_CounterWithTags(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricDeliveries, 1, T("kind", "photo"))
	m.Counter(MetricDeliveries, 1, T("kind", "video"))

	assert.Equal(t, int64(1), m.GetCounter(MetricDeliveries, T("kind", "photo")))
	assert.Equal(t, int64(1), m.GetCounter(MetricDeliveries, T("kind", "video")))
	assert.Equal(t, int64(0), m.GetCounter(MetricDeliveries))
}

func TestInMemoryMetrics_Gauge(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Gauge("fanvault.outbox.pending", 10)
	m.Gauge("fanvault.outbox.pending", 4)

	assert.Equal(t, float64(4), m.GetGauge("fanvault.outbox.pending"))
}

func TestInMemoryMetrics_Timing(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Timing(MetricSettlementDuration, 5*time.Millisecond)
	m.Timing(MetricSettlementDuration, 7*time.Millisecond)

	timings := m.GetTimings(MetricSettlementDuration)
	assert.Len(t, timings, 2)
}

func TestInMemoryMetrics_Reset(t *testing.T) {
	m := NewInMemoryMetrics()
	m.Counter(MetricPurchasesRecorded, 5)

	m.Reset()

	assert.Equal(t, int64(0), m.GetCounter(MetricPurchasesRecorded))
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	m.Counter(MetricItemsPublished, 1)
	m.Gauge("anything", 1)
	m.Histogram("anything", 1)
	m.Timing("anything", time.Second)
}
