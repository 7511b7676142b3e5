package prometheus

import (
	"errors"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utkarsh5026/taskpool/pool"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("taskpool", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordTaskDuration("pool-a", 250*time.Millisecond)
	exporter.RecordTaskOutcome("pool-a", pool.OutcomePanic)
	exporter.RecordQueueDepth("pool-a", 7)
	exporter.RecordTaskRejected("pool-a", pool.RejectQueueFull)

	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.taskOutcomeTotal.WithLabelValues("pool-a", "panic")))
	assert.Equal(t, 7.0, testutil.ToFloat64(exporter.queueDepth.WithLabelValues("pool-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("pool-a", "queue_full")))

	count, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("pool-a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestMetricsExporter_EmptyLabels(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordTaskRejected("", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("unknown", "unknown")))
}

func TestMetricsExporter_NilSafe(t *testing.T) {
	var exporter *MetricsExporter
	assert.NotPanics(t, func() {
		exporter.RecordTaskDuration("p", time.Second)
		exporter.RecordTaskOutcome("p", pool.OutcomeSuccess)
		exporter.RecordTaskRejected("p", pool.RejectStopped)
		exporter.RecordQueueDepth("p", 1)
	})
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("taskpool", reg, ExporterOptions{})
	require.NoError(t, err)
	second, err := NewMetricsExporter("taskpool", reg, ExporterOptions{})
	require.NoError(t, err)

	first.RecordTaskOutcome("pool-a", pool.OutcomeFailure)
	second.RecordTaskOutcome("pool-a", pool.OutcomeFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.taskOutcomeTotal.WithLabelValues("pool-a", "failure")))
}

func TestMetricsExporter_WiredIntoPool(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("taskpool", reg, ExporterOptions{})
	require.NoError(t, err)

	p := pool.NewThreadPool(pool.WithWorkerCount(2), pool.WithName("wired"), pool.WithMetrics(exporter))
	for i := range 5 {
		_, err := pool.Submit(p, func() (int, error) { return i, nil })
		require.NoError(t, err)
	}
	_, err = pool.Submit(p, func() (int, error) { return 0, errors.New("bad") })
	require.NoError(t, err)
	p.Shutdown()

	_, err = pool.Submit(p, func() (int, error) { return 0, nil })
	require.ErrorIs(t, err, pool.ErrPoolStopped)

	assert.Equal(t, 5.0, testutil.ToFloat64(exporter.taskOutcomeTotal.WithLabelValues("wired", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.taskOutcomeTotal.WithLabelValues("wired", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("wired", "stopped")))

	count, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("wired"))
	require.NoError(t, err)
	assert.Equal(t, uint64(6), count)
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, errors.New("observer is not a collector")
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.GetHistogram() != nil {
			return msg.GetHistogram().GetSampleCount(), nil
		}
	}
	return 0, nil
}
