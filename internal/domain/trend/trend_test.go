package trend_test

import (
	"errors"
	"math"
	"testing"
	"time"

	trend "github.com/amshq/pulse/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSynthesize(t *testing.T) {
	Convey("Given a default synthesizer", t, func() {
		synth := trend.New()

		Convey("When synthesizing a member series", func() {
			series, err := synth.Synthesize(trend.MemberGrowth, 420, 6)

			Convey("Then it should produce the requested horizon", func() {
				So(err, ShouldBeNil)
				So(series.Len(), ShouldEqual, 6)
				So(series.Labels, ShouldHaveLength, 6)
			})

			Convey("And the most recent sample should equal the input exactly", func() {
				So(err, ShouldBeNil)
				So(series.Last(), ShouldEqual, 420.0)
			})

			Convey("And every sample should be non-negative", func() {
				So(err, ShouldBeNil)
				for _, s := range series.Samples {
					So(s, ShouldBeGreaterThanOrEqualTo, 0.0)
				}
			})

			Convey("And historical samples should carry two decimals at most", func() {
				So(err, ShouldBeNil)
				for _, s := range series.Samples[:series.Len()-1] {
					So(math.Round(s*100)/100, ShouldAlmostEqual, s, 1e-9)
				}
			})

			Convey("And the curve should generally rise toward the anchor", func() {
				So(err, ShouldBeNil)
				So(series.First(), ShouldBeLessThan, series.Last())
			})
		})

		Convey("When synthesizing the same series twice", func() {
			first, err1 := synth.Synthesize(trend.Revenue, 52500, 8)
			second, err2 := synth.Synthesize(trend.Revenue, 52500, 8)

			Convey("Then both runs should be identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second.Samples, ShouldResemble, first.Samples)
				So(second.Labels, ShouldResemble, first.Labels)
			})
		})

		Convey("When synthesizing different kinds from the same value", func() {
			members, _ := synth.Synthesize(trend.MemberGrowth, 300, 6)
			revenue, _ := synth.Synthesize(trend.Revenue, 300, 6)

			Convey("Then the curves should differ", func() {
				So(members.First(), ShouldNotEqual, revenue.First())
			})
		})

		Convey("When the current value is zero", func() {
			series, err := synth.Synthesize(trend.EventActivity, 0, 4)

			Convey("Then every sample should be zero", func() {
				So(err, ShouldBeNil)
				for _, s := range series.Samples {
					So(s, ShouldEqual, 0.0)
				}
			})
		})

		Convey("When the current value is negative", func() {
			series, err := synth.Synthesize(trend.MemberGrowth, -50, 4)

			Convey("Then it should be treated as zero", func() {
				So(err, ShouldBeNil)
				So(series.Last(), ShouldEqual, 0.0)
			})
		})

		Convey("When the horizon is too short", func() {
			_, err := synth.Synthesize(trend.MemberGrowth, 100, 1)

			Convey("Then it should report an invalid argument", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, trend.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the horizon is zero", func() {
			_, err := synth.Synthesize(trend.MemberGrowth, 100, 0)

			Convey("Then it should report an invalid argument", func() {
				So(errors.Is(err, trend.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the value is NaN", func() {
			_, err := synth.Synthesize(trend.MemberGrowth, math.NaN(), 6)

			Convey("Then it should report an invalid argument", func() {
				So(errors.Is(err, trend.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the value is infinite", func() {
			_, err := synth.Synthesize(trend.MemberGrowth, math.Inf(1), 6)

			Convey("Then it should report an invalid argument", func() {
				So(errors.Is(err, trend.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the kind is unknown", func() {
			_, err := synth.Synthesize(trend.Kind(99), 100, 6)

			Convey("Then it should report the unknown kind", func() {
				So(errors.Is(err, trend.ErrUnknownKind), ShouldBeTrue)
			})
		})
	})
}

func TestLabels(t *testing.T) {
	Convey("Given the default December anchor", t, func() {
		synth := trend.New()

		Convey("When synthesizing six periods", func() {
			series, err := synth.Synthesize(trend.MemberGrowth, 100, 6)

			Convey("Then labels should run July through December", func() {
				So(err, ShouldBeNil)
				So(series.Labels, ShouldResemble, []string{"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"})
			})
		})

		Convey("When synthesizing fourteen periods", func() {
			series, err := synth.Synthesize(trend.MemberGrowth, 100, 14)

			Convey("Then the calendar should cycle", func() {
				So(err, ShouldBeNil)
				So(series.Labels[0], ShouldEqual, "Nov")
				So(series.Labels[13], ShouldEqual, "Dec")
			})
		})
	})

	Convey("Given a June anchor", t, func() {
		synth := trend.New(trend.WithAnchorMonth(time.June))

		Convey("When synthesizing three periods", func() {
			series, err := synth.Synthesize(trend.MemberGrowth, 100, 3)

			Convey("Then labels should end in June", func() {
				So(err, ShouldBeNil)
				So(series.Labels, ShouldResemble, []string{"Apr", "May", "Jun"})
			})
		})
	})
}

func TestKind(t *testing.T) {
	Convey("Given the kind constants", t, func() {
		Convey("When rendering wire names", func() {
			So(trend.MemberGrowth.String(), ShouldEqual, "members")
			So(trend.EventActivity.String(), ShouldEqual, "events")
			So(trend.Revenue.String(), ShouldEqual, "revenue")
			So(trend.Kind(99).String(), ShouldEqual, "unknown")
		})

		Convey("When parsing wire names", func() {
			kind, err := trend.ParseKind("members")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, trend.MemberGrowth)

			kind, err = trend.ParseKind("events")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, trend.EventActivity)

			kind, err = trend.ParseKind("revenue")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, trend.Revenue)
		})

		Convey("When parsing an unknown name", func() {
			_, err := trend.ParseKind("attendance")
			So(errors.Is(err, trend.ErrUnknownKind), ShouldBeTrue)
		})
	})
}

func TestWithBaseRates(t *testing.T) {
	Convey("Given a synthesizer with a custom base rate", t, func() {
		flat := trend.New(trend.WithBaseRates(map[trend.Kind]float64{trend.MemberGrowth: 0}))
		standard := trend.New()

		Convey("When synthesizing with both", func() {
			custom, err1 := flat.Synthesize(trend.MemberGrowth, 200, 6)
			stock, err2 := standard.Synthesize(trend.MemberGrowth, 200, 6)

			Convey("Then the custom curve should sit closer to the anchor", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(custom.First(), ShouldBeGreaterThan, stock.First())
			})
		})
	})
}
