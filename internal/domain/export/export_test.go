package export_test

import (
	"errors"
	"testing"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/smartystreets/goconvey/convey"
)

func TestJobLifecycle(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	convey.Convey("Given a pending job", t, func() {
		j := export.NewJob("job-1", 4, history.Window30, true, nil, now)
		convey.So(j.Validate(), convey.ShouldBeNil)
		convey.So(j.Status, convey.ShouldEqual, export.StatusPending)
		convey.So(j.CanDownload(now), convey.ShouldBeFalse)

		convey.Convey("When it completes", func() {
			convey.So(j.MarkProcessing(), convey.ShouldBeNil)
			convey.So(j.MarkReady("a.pdf", 1024, 3, now, time.Hour), convey.ShouldBeNil)

			convey.Convey("Then it is downloadable until it expires", func() {
				convey.So(j.CanDownload(now.Add(time.Minute)), convey.ShouldBeTrue)
				convey.So(j.CanDownload(now.Add(2*time.Hour)), convey.ShouldBeFalse)
				convey.So(j.Terminal(), convey.ShouldBeTrue)
			})

			convey.Convey("Then expiring removes download access", func() {
				j.Expire()
				convey.So(j.Status, convey.ShouldEqual, export.StatusExpired)
				convey.So(j.CanDownload(now), convey.ShouldBeFalse)
			})

			convey.Convey("Then it cannot fail afterwards", func() {
				convey.So(errors.Is(j.MarkFailed(errors.New("late"), now), export.ErrInvalidTransition), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When it fails", func() {
			convey.So(j.MarkProcessing(), convey.ShouldBeNil)
			convey.So(j.MarkFailed(errors.New("render failure: chrome gone"), now), convey.ShouldBeNil)

			convey.Convey("Then no file is attached", func() {
				convey.So(j.Status, convey.ShouldEqual, export.StatusFailed)
				convey.So(j.FileName, convey.ShouldBeEmpty)
				convey.So(j.Error, convey.ShouldContainSubstring, "chrome gone")
				convey.So(j.CanDownload(now), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When it is marked ready without processing", func() {
			err := j.MarkReady("a.pdf", 1, 1, now, time.Hour)
			convey.So(errors.Is(err, export.ErrInvalidTransition), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given jobs with missing identity", t, func() {
		j := export.NewJob("", 4, history.Window7, false, nil, now)
		convey.So(errors.Is(j.Validate(), export.ErrEmptyJobID), convey.ShouldBeTrue)
		j = export.NewJob("x", 0, history.Window7, false, nil, now)
		convey.So(errors.Is(j.Validate(), export.ErrInvalidAthleteID), convey.ShouldBeTrue)
	})
}
