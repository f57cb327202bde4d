package sessions_test

import (
	"testing"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/sessions"
	"github.com/smartystreets/goconvey/convey"
)

func TestRecordZone(t *testing.T) {
	convey.Convey("Given a session with strain 16.2", t, func() {
		r := sessions.Record{Strain: 16.2, DurationMinutes: 75}

		convey.Convey("Then it is high intensity", func() {
			convey.So(r.Zone(), convey.ShouldEqual, classify.ZoneHigh)
		})

		convey.Convey("Then durations render in hours and minutes", func() {
			convey.So(r.Duration(), convey.ShouldEqual, "1h 15m")
			r.DurationMinutes = 45
			convey.So(r.Duration(), convey.ShouldEqual, "45m")
		})
	})
}

func TestSynthesize(t *testing.T) {
	convey.Convey("Given a seeded source", t, func() {
		today := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
		log := sessions.Synthesize(1, 8, today, history.NewSource(3))

		convey.Convey("Then the log is newest first and starts today", func() {
			convey.So(log, convey.ShouldHaveLength, 8)
			convey.So(log[0].Date, convey.ShouldEqual, "2024-03-15")
			for i := 1; i < len(log); i++ {
				convey.So(log[i].Date < log[i-1].Date, convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then every session is plausible", func() {
			for _, r := range log {
				convey.So(r.Strain, convey.ShouldBeBetweenOrEqual, 2, 21)
				convey.So(r.MaxHR, convey.ShouldBeGreaterThan, r.AvgHR)
				convey.So(r.DurationMinutes, convey.ShouldBeGreaterThan, 0)
				convey.So(r.ID, convey.ShouldNotBeBlank)
			}
		})

		convey.Convey("Then the same seed repeats the log", func() {
			convey.So(sessions.Synthesize(1, 8, today, history.NewSource(3)), convey.ShouldResemble, log)
		})

		convey.Convey("Then zero sessions yields an empty log", func() {
			convey.So(sessions.Synthesize(1, 0, today, history.NewSource(3)), convey.ShouldBeEmpty)
		})
	})
}
