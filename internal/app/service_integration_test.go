package service_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	service "github.com/amshq/pulse/internal/app"
	"github.com/amshq/pulse/internal/domain/benchmark"
	"github.com/amshq/pulse/internal/domain/model"
	"github.com/amshq/pulse/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

// testSubmission builds a well-formed submission whose counters scale with
// the member count, so bigger chapters rank higher on every dimension.
func testSubmission(subID, chapterID, region string, members int) model.Submission {
	return model.Submission{
		SubmissionID: subID,
		Chapter: model.Chapter{
			ID:              chapterID,
			Name:            "Chapter " + chapterID,
			Region:          region,
			MemberCount:     members,
			EventCount:      12,
			EventAttendance: members * 4,
			AnnualRevenue:   float64(members) * 150,
			RenewedMembers:  members * 8 / 10,
			ExpiringMembers: members,
			YearsActive:     10,
		},
	}
}

// waitForChapters polls until the registry holds want chapters or the
// deadline passes.
func waitForChapters(ctx context.Context, svc *service.Service, want int) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if svc.ListChapters(ctx).Count >= want {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
			service.WithSnapshotInterval(50*time.Millisecond),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And the service should be running", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When processing submissions end-to-end", func() {
			err := svc.Start(ctx)
			So(err, ShouldBeNil)

			subs := []model.Submission{
				testSubmission("sub-1", "ch-1", "CA", 100),
				testSubmission("sub-2", "ch-2", "CA", 300),
				testSubmission("sub-3", "ch-3", "TX", 500),
			}
			for _, sub := range subs {
				So(svc.Enqueue(ctx, sub), ShouldBeTrue)
			}
			So(waitForChapters(ctx, svc, len(subs)), ShouldBeTrue)

			Convey("Then the registry should hold all chapters", func() {
				listing := svc.ListChapters(ctx)
				So(listing.Count, ShouldEqual, 3)
				So(listing.Version, ShouldBeGreaterThan, 0)

				// Snapshots iterate in chapter ID order.
				So(listing.Chapters[0].ID, ShouldEqual, "ch-1")
				So(listing.Chapters[2].ID, ShouldEqual, "ch-3")
			})

			Convey("And individual chapters should be readable", func() {
				rec, err := svc.GetChapter(ctx, "ch-2")
				So(err, ShouldBeNil)
				So(rec.MemberCount, ShouldEqual, 300)
				So(rec.Metrics.EngagementScore, ShouldBeBetweenOrEqual, 0, 100)
				So(rec.Metrics.RetentionRate, ShouldBeBetweenOrEqual, 70, 98)
			})

			Convey("And re-reporting a chapter should replace its record", func() {
				So(svc.Enqueue(ctx, testSubmission("sub-4", "ch-2", "CA", 350)), ShouldBeTrue)

				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					rec, err := svc.GetChapter(ctx, "ch-2")
					if err == nil && rec.MemberCount == 350 {
						break
					}
					time.Sleep(20 * time.Millisecond)
				}

				rec, err := svc.GetChapter(ctx, "ch-2")
				So(err, ShouldBeNil)
				So(rec.MemberCount, ShouldEqual, 350)
			})

			Convey("And rankings should order chapters by dimension value", func() {
				standings := svc.RankDimension(ctx, benchmark.DimEngagement, 10)
				So(len(standings), ShouldEqual, 3)

				So(standings[0].Rank, ShouldEqual, 1)
				// Largest chapter carries the biggest size component.
				So(standings[0].ChapterID, ShouldEqual, "ch-3")
				for i := 1; i < len(standings); i++ {
					So(standings[i-1].Value, ShouldBeGreaterThanOrEqualTo, standings[i].Value)
				}
			})

			Convey("And a benchmark report should be composable", func() {
				report, err := svc.BenchmarkChapter(ctx, "ch-3")
				So(err, ShouldBeNil)
				So(report.ChapterID, ShouldEqual, "ch-3")
				So(len(report.Dimensions), ShouldEqual, 5)

				sum := 0.0
				for _, d := range report.Dimensions {
					So(d.Percentile, ShouldBeBetweenOrEqual, 0, 100)
					So(d.Rank, ShouldBeGreaterThanOrEqualTo, 1)
					So(d.OutOf, ShouldEqual, 3)
					sum += d.Percentile
				}
				mean := sum / 5
				So(report.Overall, ShouldEqual, math.Round(mean*10)/10)
				So(report.Level, ShouldBeIn,
					"Excellent", "Very Good", "Good", "Fair", "Needs Improvement")
			})

			Convey("And benchmarking an unknown chapter should fail", func() {
				_, err := svc.BenchmarkChapter(ctx, "ch-none")
				So(err, ShouldNotBeNil)
			})

			Convey("And a percentile probe should rank hypothetical values", func() {
				probe := svc.PercentileProbe(ctx, benchmark.DimEngagement, 200)
				So(probe.OutOf, ShouldEqual, 3)
				// 200 exceeds the clamped 0..100 engagement range.
				So(probe.Percentile, ShouldEqual, 100)

				low := svc.PercentileProbe(ctx, benchmark.DimEngagement, -1)
				So(low.Percentile, ShouldEqual, 0)
			})

			Convey("And a trend should anchor at the chapter's current value", func() {
				report, err := svc.TrendFor(ctx, "ch-1", trend.MemberGrowth, 6)
				So(err, ShouldBeNil)
				So(len(report.Samples), ShouldEqual, 6)
				So(len(report.Labels), ShouldEqual, 6)
				So(report.Samples[5], ShouldEqual, 100)

				revenue, err := svc.TrendFor(ctx, "ch-1", trend.Revenue, 6)
				So(err, ShouldBeNil)
				So(revenue.Samples[5], ShouldEqual, float64(100)*150)
			})

			Convey("And a trend for an unknown chapter should fail", func() {
				_, err := svc.TrendFor(ctx, "ch-none", trend.MemberGrowth, 6)
				So(err, ShouldNotBeNil)
			})

			Convey("And stats should reflect the population", func() {
				stats := svc.GetStats()
				So(stats["totalChapters"], ShouldEqual, 3)
			})
		})

		Convey("When probing an empty population", func() {
			err := svc.Start(ctx)
			So(err, ShouldBeNil)

			probe := svc.PercentileProbe(ctx, benchmark.DimGrowth, 10)

			Convey("Then the percentile should read neutral", func() {
				So(probe.Percentile, ShouldEqual, 50)
				So(probe.OutOf, ShouldEqual, 0)
			})
		})
	})
}

func TestServiceIntegration_Throughput(t *testing.T) {
	Convey("Given a started service under load", t, func() {
		svc := service.New(
			service.WithWorkerCount(4),
			service.WithQueueSize(5000),
			service.WithSnapshotInterval(50*time.Millisecond),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When enqueueing many submissions", func() {
			const n = 1000
			start := time.Now()
			for i := 0; i < n; i++ {
				sub := testSubmission(
					fmt.Sprintf("sub-%d", i),
					fmt.Sprintf("ch-%d", i%100), // 100 distinct chapters
					"NY",
					100+i%400,
				)
				svc.Enqueue(ctx, sub)
			}
			enqueueTime := time.Since(start)
			So(waitForChapters(ctx, svc, 100), ShouldBeTrue)

			Convey("Then enqueueing should be fast", func() {
				So(enqueueTime, ShouldBeLessThan, 5*time.Second)
			})

			Convey("And ranking queries should be fast", func() {
				start := time.Now()
				standings := svc.RankDimension(ctx, benchmark.DimEngagement, 100)
				queryTime := time.Since(start)

				So(len(standings), ShouldEqual, 100)
				So(queryTime, ShouldBeLessThan, 100*time.Millisecond)
			})

			Convey("And benchmark queries should be fast", func() {
				start := time.Now()
				report, err := svc.BenchmarkChapter(ctx, "ch-0")
				queryTime := time.Since(start)

				So(err, ShouldBeNil)
				So(report.ChapterID, ShouldEqual, "ch-0")
				So(queryTime, ShouldBeLessThan, 500*time.Millisecond)
			})
		})
	})
}
