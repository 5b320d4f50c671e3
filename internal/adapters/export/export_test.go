package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	service "github.com/okian/matchxg/internal/app"
	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestWriteCSV(t *testing.T) {
	convey.Convey("Given a short event log", t, func() {
		info := model.MatchInfo{HomeName: "Casa", AwayName: "Visitante"}
		events := []model.Event{
			{ID: "a", Team: model.Home, Kind: model.ShotOnTarget, Minute: 10, XG: 0.15},
			{ID: "b", Team: model.Away, Kind: model.DangerousShot, Minute: 85, XG: 0.3},
		}

		convey.Convey("When written as CSV", func() {
			var buf bytes.Buffer
			err := WriteCSV(&buf, events, info)

			convey.Convey("Then rows should follow log order with display names", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(buf.String(), convey.ShouldEqual,
					"time,team,event,xg\n"+
						"10,Casa,shot on target,0.150\n"+
						"85,Visitante,dangerous shot,0.300\n")
			})
		})

		convey.Convey("When the log is empty", func() {
			var buf bytes.Buffer
			err := WriteCSV(&buf, nil, info)

			convey.Convey("Then only the header should be written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(buf.String(), convey.ShouldEqual, "time,team,event,xg\n")
			})
		})

		convey.Convey("When a team name contains a comma", func() {
			var buf bytes.Buffer
			err := WriteCSV(&buf, events[:1], model.MatchInfo{HomeName: "Club, FC", AwayName: "B"})

			convey.Convey("Then the field should be quoted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(buf.String(), convey.ShouldContainSubstring, `10,"Club, FC",shot on target,0.150`)
			})
		})
	})
}

func TestFileName(t *testing.T) {
	convey.Convey("Given match info", t, func() {
		now := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)

		convey.Convey("Then names should be slugged with the match date", func() {
			info := model.MatchInfo{HomeName: "São Paulo", AwayName: "Grêmio", Date: "2025-04-30"}
			convey.So(FileName(info, now), convey.ShouldEqual, "sao-paulo-vs-gremio-2025-04-30.csv")
		})

		convey.Convey("Then today should be used without a date", func() {
			info := model.MatchInfo{HomeName: "Home", AwayName: "Away"}
			convey.So(FileName(info, now), convey.ShouldEqual, "home-vs-away-2025-05-01.csv")
		})

		convey.Convey("Then the label should lead when set", func() {
			info := model.MatchInfo{HomeName: "A", AwayName: "B", Label: "Final", Date: "2025-05-01"}
			convey.So(FileName(info, now), convey.ShouldEqual, "final-a-vs-b-2025-05-01.csv")
		})
	})
}

func TestWriteSummary(t *testing.T) {
	convey.Convey("Given a match with events", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithMatchInfo(model.MatchInfo{
			HomeName: "Casa", AwayName: "Visitante", Championship: "Copa",
		}))
		defer svc.Stop()

		svc.SeekClock(ctx, 30)
		for i := 0; i < 12; i++ {
			_, _, _ = svc.RecordEvent(ctx, model.Home, model.DangerousShot, "")
		}
		_, _, _ = svc.RecordEvent(ctx, model.Away, model.Corner, "")

		convey.Convey("When the summary is rendered", func() {
			var buf bytes.Buffer
			err := WriteSummary(&buf, svc.Snapshot())
			out := buf.String()

			convey.Convey("Then it should contain the header, the table and alerts", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Casa vs Visitante  |  30:00  |  Copa")
				convey.So(out, convey.ShouldContainSubstring, "DANGEROUS SHOT")
				convey.So(out, convey.ShouldContainSubstring, "3.00")
				convey.So(out, convey.ShouldContainSubstring, "[over] High probability of OVER 2.5 goals")
				convey.So(out, convey.ShouldContainSubstring, "[dominance] Casa dominating the chances")
			})
		})

		convey.Convey("When the match is reset", func() {
			svc.ResetMatch(ctx)
			var buf bytes.Buffer
			err := WriteSummary(&buf, svc.Snapshot())

			convey.Convey("Then no alerts should be listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(strings.Contains(buf.String(), "No alerts"), convey.ShouldBeTrue)
			})
		})
	})
}
