package eventlog_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/okian/matchxg/internal/domain/eventlog"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/internal/domain/xg"
	. "github.com/smartystreets/goconvey/convey"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}
}

func TestLogRecord(t *testing.T) {
	Convey("Given an empty event log", t, func() {
		log := eventlog.New(eventlog.WithIDGenerator(sequentialIDs()))

		Convey("When a dangerous shot is recorded for home at minute 75", func() {
			e, err := log.Record(model.Home, model.DangerousShot, 75)

			Convey("Then the event should carry the boosted xG", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "evt-1")
				So(e.Team, ShouldEqual, model.Home)
				So(e.Minute, ShouldEqual, 75)
				So(e.XG, ShouldAlmostEqual, 0.275, 1e-12)
			})

			Convey("And home stats should reflect it", func() {
				stats := log.StatsFor(model.Home)
				So(stats.DangerousShots, ShouldEqual, 1)
				So(stats.TotalXG, ShouldAlmostEqual, 0.275, 1e-12)
			})

			Convey("And away stats should stay zero", func() {
				So(log.StatsFor(model.Away).IsZero(), ShouldBeTrue)
			})
		})

		Convey("When recording for an unknown team", func() {
			_, err := log.Record(model.Team("referee"), model.Corner, 10)

			Convey("Then it should be rejected without touching the log", func() {
				So(err, ShouldEqual, eventlog.ErrUnknownTeam)
				So(log.Len(), ShouldEqual, 0)
			})
		})

		Convey("When recording an unknown kind", func() {
			e, err := log.Record(model.Away, "offside", 30)

			Convey("Then it should be logged with zero xG and no bucket", func() {
				So(err, ShouldBeNil)
				So(e.XG, ShouldEqual, 0.0)
				So(log.Len(), ShouldEqual, 1)
				So(log.StatsFor(model.Away).IsZero(), ShouldBeTrue)
			})
		})

		Convey("When recording with an out-of-range minute", func() {
			late, _ := log.Record(model.Home, model.Corner, 130)
			early, _ := log.Record(model.Home, model.Corner, -3)

			Convey("Then minutes should be clamped to the match", func() {
				So(late.Minute, ShouldEqual, 90)
				So(early.Minute, ShouldEqual, 0)
			})
		})

		Convey("When ids come from the default generator", func() {
			log := eventlog.New()
			a, _ := log.Record(model.Home, model.Corner, 1)
			b, _ := log.Record(model.Home, model.Corner, 1)

			Convey("Then every event should get a distinct id", func() {
				So(a.ID, ShouldNotBeEmpty)
				So(a.ID, ShouldNotEqual, b.ID)
			})
		})
	})
}

func TestLogMatchesFold(t *testing.T) {
	Convey("Given a long random sequence of recorded events", t, func() {
		rng := rand.New(rand.NewSource(7))
		log := eventlog.New()
		kinds := append([]model.EventKind{"unknown"}, model.Kinds...)
		expected := map[model.Team]float64{}

		for i := 0; i < 500; i++ {
			team := model.Teams[rng.Intn(len(model.Teams))]
			kind := kinds[rng.Intn(len(kinds))]
			minute := rng.Intn(91)
			_, err := log.Record(team, kind, minute)
			So(err, ShouldBeNil)
			expected[team] += xg.For(kind, minute)
		}

		Convey("Then cached stats should equal a full fold of the log", func() {
			events := log.Events()
			for _, team := range model.Teams {
				So(log.StatsFor(team), ShouldResemble, eventlog.Fold(events, team))
			}
		})

		Convey("And total xG should equal the sum of per-event xG", func() {
			for _, team := range model.Teams {
				So(log.StatsFor(team).TotalXG, ShouldAlmostEqual, expected[team], 1e-9)
			}
		})

		Convey("And bucket counts should match the number of events per kind", func() {
			counts := map[model.Team]map[model.EventKind]int{model.Home: {}, model.Away: {}}
			for _, e := range log.Events() {
				counts[e.Team][e.Kind]++
			}
			for _, team := range model.Teams {
				for _, k := range model.Kinds {
					So(log.StatsFor(team).Count(k), ShouldEqual, counts[team][k])
				}
			}
		})

		Convey("When the log is reset", func() {
			log.Reset()

			Convey("Then both teams should have all-zero stats", func() {
				So(log.Len(), ShouldEqual, 0)
				So(log.Events(), ShouldBeEmpty)
				for _, team := range model.Teams {
					So(log.StatsFor(team), ShouldResemble, model.TeamStats{})
				}
			})
		})
	})
}

func TestLogEventsIsACopy(t *testing.T) {
	Convey("Given a log with one event", t, func() {
		log := eventlog.New()
		_, _ = log.Record(model.Home, model.Corner, 5)

		Convey("When the returned slice is modified", func() {
			events := log.Events()
			events[0].XG = 99

			Convey("Then the log should be unchanged", func() {
				So(log.Events()[0].XG, ShouldAlmostEqual, 0.03, 1e-12)
			})
		})
	})
}

func TestCumulativeSeries(t *testing.T) {
	Convey("Given an empty log", t, func() {
		log := eventlog.New()

		Convey("Then the series should hold only the origin", func() {
			So(log.Series(), ShouldResemble, []model.SeriesPoint{{}})
		})

		Convey("When events for both teams are recorded", func() {
			_, _ = log.Record(model.Home, model.ShotOnTarget, 10)
			_, _ = log.Record(model.Away, model.DangerousShot, 20)
			_, _ = log.Record(model.Home, model.ShotOnTarget, 85)

			Convey("Then each point should carry running totals in log order", func() {
				So(log.Series(), ShouldResemble, []model.SeriesPoint{
					{Minute: 0, Home: 0, Away: 0},
					{Minute: 10, Home: 0.15, Away: 0},
					{Minute: 20, Home: 0.15, Away: 0.25},
					{Minute: 85, Home: 0.33, Away: 0.25},
				})
			})
		})

		Convey("When events arrive out of minute order after a seek", func() {
			_, _ = log.Record(model.Home, model.Corner, 60)
			_, _ = log.Record(model.Home, model.Corner, 30)

			Convey("Then the series should keep insertion order", func() {
				series := log.Series()
				So(series[1].Minute, ShouldEqual, 60)
				So(series[2].Minute, ShouldEqual, 30)
			})
		})
	})
}
