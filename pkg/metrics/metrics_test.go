package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// gathered returns the value of the first sample of a family whose labels
// contain every pair in want.
func gathered(reg *prometheus.Registry, name string, want map[string]string) (float64, bool) {
	families, err := reg.Gather()
	if err != nil {
		return 0, false
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue(), true
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue(), true
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount()), true
			}
		}
	}
	return 0, false
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should use the default refresh interval", func() {
				So(m, ShouldNotBeNil)
				So(m.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			reg := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("live"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithRefreshInterval(2*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(reg),
			)
			m.RecordMatchReset()

			Convey("Then names and constant labels should follow them", func() {
				So(m.RefreshInterval(), ShouldEqual, 2*time.Second)
				v, ok := gathered(reg, "test_live_resets_total", map[string]string{"env": "test"})
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1.0)
			})
		})

		Convey("When options carry empty values", func() {
			m := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(-time.Second),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(m.namespace, ShouldEqual, "matchxg")
				So(m.subsystem, ShouldEqual, "match")
				So(m.histogramBuckets, ShouldResemble, DefaultBucketsMs)
				So(m.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given a configured global manager", t, func() {
		before := GetRegistry()
		m := Init(WithNamespace("stadium"), WithRefreshInterval(3*time.Second), WithCustomLabels(map[string]string{"pitch": "a"}))
		defer Init()

		Convey("Then package helpers write to the new registry", func() {
			So(GetRegistry(), ShouldNotEqual, before)
			So(RefreshInterval(), ShouldEqual, 3*time.Second)
			So(m.RefreshInterval(), ShouldEqual, 3*time.Second)

			RecordMatchReset()
			v, ok := gathered(GetRegistry(), "stadium_match_resets_total", map[string]string{"pitch": "a"})
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1.0)

			_, ok = gathered(before, "stadium_match_resets_total", nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMatchMetrics(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(reg))

		Convey("When events are recorded", func() {
			m.RecordEvent("home", "shot_on_target")
			m.RecordEvent("home", "shot_on_target")
			m.RecordEvent("away", "corner")
			m.RecordEventDuplicate()
			m.RecordEventRejected("unknown_team")

			Convey("Then counters should be labelled by team and kind", func() {
				v, _ := gathered(reg, "matchxg_match_events_recorded_total", map[string]string{"team": "home", "kind": "shot_on_target"})
				So(v, ShouldEqual, 2.0)
				v, _ = gathered(reg, "matchxg_match_events_recorded_total", map[string]string{"team": "away"})
				So(v, ShouldEqual, 1.0)
				v, _ = gathered(reg, "matchxg_match_events_duplicate_total", nil)
				So(v, ShouldEqual, 1.0)
				v, _ = gathered(reg, "matchxg_match_events_rejected_total", map[string]string{"reason": "unknown_team"})
				So(v, ShouldEqual, 1.0)
			})
		})

		Convey("When team totals and alerts are updated", func() {
			m.UpdateTeam("home", 1.25, 4)
			m.UpdateAlerts([]string{"over", "under"}, map[string]int{"over": 1})

			Convey("Then gauges should reflect the latest values", func() {
				v, _ := gathered(reg, "matchxg_match_team_xg", map[string]string{"team": "home"})
				So(v, ShouldEqual, 1.25)
				v, _ = gathered(reg, "matchxg_match_team_shots", map[string]string{"team": "home"})
				So(v, ShouldEqual, 4.0)
				v, _ = gathered(reg, "matchxg_match_alerts_active", map[string]string{"kind": "over"})
				So(v, ShouldEqual, 1.0)
				v, ok := gathered(reg, "matchxg_match_alerts_active", map[string]string{"kind": "under"})
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.0)
			})
		})

		Convey("When the clock moves", func() {
			m.UpdateClock(37, true)
			m.RecordClockTick()

			Convey("Then minute and running should be exported", func() {
				v, _ := gathered(reg, "matchxg_match_clock_minute", nil)
				So(v, ShouldEqual, 37.0)
				v, _ = gathered(reg, "matchxg_match_clock_running", nil)
				So(v, ShouldEqual, 1.0)

				m.UpdateClock(37, false)
				v, _ = gathered(reg, "matchxg_match_clock_running", nil)
				So(v, ShouldEqual, 0.0)
			})
		})

		Convey("When HTTP and live feed activity happens", func() {
			m.RecordHTTPRequest("/events", "POST", "201")
			m.RecordHTTPRequestDuration("/events", "POST", "201", 3.5)
			m.UpdateLiveClients(2)
			m.RecordLiveBroadcast()
			m.RecordLiveDropped()
			m.RecordError("http", "bad_request")

			Convey("Then each collector should see it", func() {
				v, _ := gathered(reg, "matchxg_match_http_requests_total", map[string]string{"endpoint": "/events"})
				So(v, ShouldEqual, 1.0)
				v, _ = gathered(reg, "matchxg_match_http_request_duration_milliseconds", nil)
				So(v, ShouldEqual, 1.0)
				v, _ = gathered(reg, "matchxg_match_live_clients", nil)
				So(v, ShouldEqual, 2.0)
				v, _ = gathered(reg, "matchxg_match_errors_total", map[string]string{"component": "http"})
				So(v, ShouldEqual, 1.0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then package helpers should not panic", func() {
			So(func() {
				RecordEvent("home", "corner")
				RecordEventDuplicate()
				RecordEventRejected("bad_request")
				UpdateTeam("away", 0.3, 1)
				UpdateAlerts([]string{"over"}, nil)
				RecordMatchReset()
				UpdateClock(0, false)
				RecordClockTick()
				UpdateLiveClients(0)
				RecordLiveBroadcast()
				RecordLiveDropped()
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/healthz", "GET", "200", 1)
				RecordError("clock", "tick")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
			So(RefreshInterval() > 0, ShouldBeTrue)
		})
	})
}
