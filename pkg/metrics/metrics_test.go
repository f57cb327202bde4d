package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.exportsRequested.Inc()

			Convey("Then collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_exports_requested_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When registering the same manager twice", func() {
			NewManager(WithPrometheusRegistry(registry))
			Convey("Then promauto panics on the duplicate", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestExportMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		before := testutil.ToFloat64(globalManager.exportsRequested)
		failedBefore := testutil.ToFloat64(globalManager.exportsFailed.WithLabelValues("render_failure"))

		RecordExportRequested()
		RecordExportRequested()
		RecordExportFailed("render_failure")

		So(testutil.ToFloat64(globalManager.exportsRequested), ShouldEqual, before+2)
		So(testutil.ToFloat64(globalManager.exportsFailed.WithLabelValues("render_failure")), ShouldEqual, failedBefore+1)

		Convey("Then gauges hold the last value", func() {
			UpdateRosterAthletes(7)
			UpdateQueueSize(3)
			So(testutil.ToFloat64(globalManager.rosterAthletes), ShouldEqual, 7)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
		})

		Convey("Then the remaining recorders do not panic", func() {
			So(func() {
				RecordExportDeduplicated()
				RecordExportCompleted()
				RecordComposeLatency(3)
				RecordRasterizeLatency("gochart", 40)
				RecordEncodeLatency(12)
				RecordReportPages(3)
				RecordReportBytes(64 << 10)
				UpdateExportsStored(2)
				RecordRosterRejected(1)
				RecordAggregationLatency(0.2)
				RecordDataQualityWarning("unknown_sport")
				RecordSeriesCacheHit()
				RecordSeriesCacheMiss()
				RecordHTTPRequest("analytics", "GET", "200")
				RecordHTTPRequestDuration("analytics", "GET", "200", 1.5)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.3)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.1)
				UpdateWorkerCount(2)
				UpdateWorkerActiveCount(1)
				UpdateWorkerIdleCount(1)
				UpdateWorkerMessagesPerSecond(0.5)
				RecordWorkerProcessingLatency(80)
				RecordWorkerError()
				RecordErrorByComponent("queue", "full")
				RecordErrorByEndpoint("reports", "POST", "backpressure")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("The custom registry exposes the service metrics", t, func() {
		RecordSeriesCacheHit()
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)
		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		So(strings.Join(names, ","), ShouldContainSubstring, "nolimit_analytics_series_cache_hits_total")
	})
}
