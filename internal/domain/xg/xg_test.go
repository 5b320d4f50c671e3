package xg_test

import (
	"testing"

	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/internal/domain/xg"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFor(t *testing.T) {
	Convey("Given the default xG table", t, func() {
		Convey("When scoring in the first 70 minutes", func() {
			Convey("Then base values should apply unchanged", func() {
				So(xg.For(model.ShotOnTarget, 10), ShouldAlmostEqual, 0.15, 1e-12)
				So(xg.For(model.DangerousShot, 70), ShouldAlmostEqual, 0.25, 1e-12)
				So(xg.For(model.ShotOffTarget, 0), ShouldAlmostEqual, 0.05, 1e-12)
				So(xg.For(model.Corner, 45), ShouldAlmostEqual, 0.03, 1e-12)
				So(xg.For(model.DangerousFoul, 45), ShouldAlmostEqual, 0.08, 1e-12)
				So(xg.For(model.Possession, 45), ShouldAlmostEqual, 0.01, 1e-12)
				So(xg.For(model.RedCard, 45), ShouldEqual, 0.0)
			})
		})

		Convey("When scoring between minutes 71 and 80", func() {
			Convey("Then values should be boosted by 10%", func() {
				So(xg.For(model.DangerousShot, 75), ShouldAlmostEqual, 0.275, 1e-12)
				So(xg.For(model.ShotOnTarget, 80), ShouldAlmostEqual, 0.165, 1e-12)
			})
		})

		Convey("When scoring after minute 80", func() {
			Convey("Then values should be boosted by 20%", func() {
				So(xg.For(model.DangerousShot, 81), ShouldAlmostEqual, 0.30, 1e-12)
				So(xg.For(model.Corner, 90), ShouldAlmostEqual, 0.036, 1e-12)
			})
		})

		Convey("When scoring an unknown kind", func() {
			Convey("Then it should score zero at any minute", func() {
				So(xg.For("offside", 10), ShouldEqual, 0.0)
				So(xg.For("offside", 85), ShouldEqual, 0.0)
			})
		})

		Convey("When scoring the same input twice", func() {
			Convey("Then results should be identical", func() {
				So(xg.For(model.Corner, 77), ShouldEqual, xg.For(model.Corner, 77))
			})
		})
	})
}

func TestMultiplier(t *testing.T) {
	Convey("Given match minutes around the boost thresholds", t, func() {
		So(xg.Multiplier(70), ShouldEqual, 1.0)
		So(xg.Multiplier(71), ShouldEqual, 1.1)
		So(xg.Multiplier(80), ShouldEqual, 1.1)
		So(xg.Multiplier(81), ShouldEqual, 1.2)
	})
}

func TestModelOptions(t *testing.T) {
	Convey("Given a model built with configured base values", t, func() {
		m := xg.NewModel(xg.WithBaseValues(map[string]float64{
			"corner":     0.05,
			"RED_CARD":   0.02,
			"offside":    0.5,
			"possession": -1,
		}))

		Convey("Then known kinds should be overridden", func() {
			So(m.Base(model.Corner), ShouldEqual, 0.05)
			So(m.Base(model.RedCard), ShouldEqual, 0.02)
		})

		Convey("And invalid entries should be ignored", func() {
			So(m.Base("offside"), ShouldEqual, 0.0)
			So(m.Base(model.Possession), ShouldEqual, 0.01)
		})

		Convey("And the default table should be untouched", func() {
			So(xg.For(model.Corner, 10), ShouldAlmostEqual, 0.03, 1e-12)
		})
	})
}
