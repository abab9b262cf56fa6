package checks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

func seriesAt(start time.Time, step time.Duration, values ...float64) metricSeries {
	s := metricSeries{
		timestamps: make([]time.Time, len(values)),
		values:     values,
	}
	for i := range values {
		s.timestamps[i] = start.Add(time.Duration(i) * step)
	}
	return s
}

func TestBreachPeriodsGroupsConsecutiveBreaches(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	values := make([]float64, 30)
	for i := range values {
		if i >= 5 && i < 20 {
			values[i] = 90
		} else {
			values[i] = 40
		}
	}

	periods := breachPeriods(seriesAt(start, time.Minute, values...), 75, true)
	require.Len(t, periods, 1)

	assert.Equal(t, float64(90), periods[0].peak)
	assert.Equal(t, 14, periods[0].minutes)
	assert.Equal(t, start.Add(5*time.Minute).In(entity.WIB).Format("15:04"), periods[0].start)
}

func TestBreachPeriodsDropsShortBlips(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	values := []float64{90, 90, 90, 40, 40, 40, 40, 40, 40, 40}

	periods := breachPeriods(seriesAt(start, time.Minute, values...), 75, true)
	assert.Empty(t, periods)
}

func TestBreachPeriodsSplitsOnGap(t *testing.T) {
	s := metricSeries{}
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		s.timestamps = append(s.timestamps, start.Add(time.Duration(i)*time.Minute))
		s.values = append(s.values, 90)
	}
	// A 30 minute quiet gap, then a second long breach.
	second := start.Add(45 * time.Minute)
	for i := 0; i < 15; i++ {
		s.timestamps = append(s.timestamps, second.Add(time.Duration(i)*time.Minute))
		s.values = append(s.values, 85)
	}

	periods := breachPeriods(s, 75, true)
	require.Len(t, periods, 2)
	assert.Equal(t, 11, periods[0].minutes)
	assert.Equal(t, 14, periods[1].minutes)
}

func TestEvaluateMetricCPUWarn(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	values := make([]float64, 15)
	for i := range values {
		values[i] = 85
	}

	status, msg := evaluateMetric("CPUUtilization", seriesAt(start, time.Minute, values...), 75)

	assert.Equal(t, entity.MetricStatusWarn, status)
	assert.Contains(t, msg, "CPU Utilization: 85% (di atas 75%)")
	assert.Contains(t, msg, "WIB")
	assert.Contains(t, msg, "menit)")
}

func TestEvaluateMetricCPUPastWarn(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	values := make([]float64, 30)
	for i := range values {
		if i < 15 {
			values[i] = 88
		} else {
			values[i] = 40
		}
	}

	status, msg := evaluateMetric("CPUUtilization", seriesAt(start, time.Minute, values...), 75)

	assert.Equal(t, entity.MetricStatusPastWarn, status)
	assert.Contains(t, msg, "sekarang normal, sempat > 75%")
	assert.Contains(t, msg, "88% pukul")
}

func TestEvaluateMetricCPUNormal(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	status, msg := evaluateMetric("CPUUtilization", seriesAt(start, time.Minute, 30, 35, 32), 75)

	assert.Equal(t, entity.MetricStatusOK, status)
	assert.Equal(t, "CPU Utilization: 32% (normal)", msg)
}

func TestEvaluateMetricFreeableMemoryLow(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	const gb = 1024 * 1024 * 1024

	status, msg := evaluateMetric("FreeableMemory", seriesAt(start, time.Minute, 4*gb), 10*gb)

	assert.Equal(t, entity.MetricStatusWarn, status)
	assert.Equal(t, "Freeable Memory: 4.0 GB (rendah < 10.0 GB)", msg)
}

func TestEvaluateMetricConnectionsOver(t *testing.T) {
	start := time.Date(2026, 2, 16, 1, 0, 0, 0, time.UTC)
	status, msg := evaluateMetric("DatabaseConnections", seriesAt(start, time.Minute, 1800), 1500)

	assert.Equal(t, entity.MetricStatusWarn, status)
	assert.Equal(t, "DB Connections: 1800 (di atas 1500)", msg)
}

func TestEvaluateMetricNoData(t *testing.T) {
	status, msg := evaluateMetric("CPUUtilization", metricSeries{}, 75)

	assert.Equal(t, entity.MetricStatusNoData, status)
	assert.Equal(t, "Data tidak tersedia", msg)
}

func TestResolveThresholdsDefaults(t *testing.T) {
	th := resolveThresholds(types.RDSThresholds{})

	assert.Equal(t, float64(75), th["ACUUtilization"])
	assert.Equal(t, float64(75), th["CPUUtilization"])
	assert.Equal(t, float64(10*1024*1024*1024), th["FreeableMemory"])
	assert.Equal(t, float64(1500), th["DatabaseConnections"])
}

func TestResolveThresholdsConfigured(t *testing.T) {
	th := resolveThresholds(types.RDSThresholds{
		FreeableMemoryGB: 20,
		ACUPercent:       80,
		CPUPercent:       70,
		Connections:      3000,
	})

	assert.Equal(t, float64(80), th["ACUUtilization"])
	assert.Equal(t, float64(70), th["CPUUtilization"])
	assert.Equal(t, float64(20*1024*1024*1024), th["FreeableMemory"])
	assert.Equal(t, float64(3000), th["DatabaseConnections"])
}
