package history

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// constSource returns the same draw every time.
type constSource struct {
	f float64
	n int
}

func (c constSource) Float64() float64 { return c.f }
func (c constSource) IntN(n int) int   { return min(c.n, n-1) }

var today = time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)

func TestDaily(t *testing.T) {
	Convey("Given a profile and a centred source", t, func() {
		p := ProfileFor(1)
		days := Daily(p, today, constSource{f: 0.5})

		Convey("Then there are 30 chronological days ending today", func() {
			So(days, ShouldHaveLength, Days)
			So(days[0].Date, ShouldEqual, "2024-02-15")
			So(days[29].Date, ShouldEqual, "2024-03-15")
			So(days[29].DateShort, ShouldEqual, "3/15")
		})

		Convey("Then values sit on the baseline", func() {
			So(days[0].Recovery, ShouldEqual, 85)
			So(days[0].HRV, ShouldEqual, 62)
			So(days[0].Strain, ShouldEqual, 13)
			So(days[0].Sleep, ShouldEqual, 7.5)
			So(days[0].RHR, ShouldEqual, 52)
		})
	})

	Convey("Given a source at the low extreme", t, func() {
		days := Daily(ProfileFor(6), today, constSource{f: 0})

		Convey("Then values clamp to their floors", func() {
			So(days[0].Recovery, ShouldEqual, 45)
			So(days[0].HRV, ShouldEqual, 37)
			So(days[0].Strain, ShouldEqual, 5)
			So(days[0].Sleep, ShouldEqual, 5.5)
			So(days[0].RHR, ShouldEqual, 50)
		})
	})

	Convey("Given many seeded sources", t, func() {
		Convey("Then every point stays inside its bounds", func() {
			for seed := uint64(0); seed < 200; seed++ {
				for _, id := range []int{1, 4, 6, 7, 99} {
					s := Generate(id, today, NewSource(seed))
					for _, d := range s.Daily {
						So(d.Recovery >= 30 && d.Recovery <= 100, ShouldBeTrue)
						So(d.HRV >= 25, ShouldBeTrue)
						So(d.Strain >= 2 && d.Strain <= 21, ShouldBeTrue)
						So(d.Sleep >= 4 && d.Sleep <= 10, ShouldBeTrue)
						So(d.RHR >= 40, ShouldBeTrue)
					}
					for _, w := range s.Weekly {
						So(w.AvgRecovery >= 40 && w.AvgRecovery <= 100, ShouldBeTrue)
						So(w.AvgStrain >= 5 && w.AvgStrain <= 18, ShouldBeTrue)
					}
				}
			}
		})
	})
}

func TestWeeklyAndBreakdown(t *testing.T) {
	Convey("Given a generated series", t, func() {
		s := Generate(2, today, constSource{f: 0.5, n: 100})

		Convey("Then the weekly series has eight labelled weeks", func() {
			So(s.Weekly, ShouldHaveLength, Weeks)
			So(s.Weekly[0].Week, ShouldEqual, "W1")
			So(s.Weekly[7].Week, ShouldEqual, "W8")
			So(s.Weekly[3].AvgRecovery, ShouldEqual, 80)
			So(s.Weekly[3].AvgStrain, ShouldEqual, 12)
		})

		Convey("Then the breakdown covers the four training types at their maxima", func() {
			So(s.Breakdown, ShouldHaveLength, 4)
			So(s.Breakdown[0], ShouldResemble, SessionTypeCount{Type: "Strength", Sessions: 11, Color: "#3b82f6"})
			So(s.Breakdown[1].Sessions, ShouldEqual, 8)
			So(s.Breakdown[2].Sessions, ShouldEqual, 6)
			So(s.Breakdown[3], ShouldResemble, SessionTypeCount{Type: "Recovery", Sessions: 5, Color: "#8b5cf6"})
		})

		Convey("Then a zero draw gives the minima", func() {
			b := Breakdown(constSource{})
			So([]int{b[0].Sessions, b[1].Sessions, b[2].Sessions, b[3].Sessions}, ShouldResemble, []int{4, 3, 2, 2})
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given the same seed", t, func() {
		seed := SeedFor(4, today)
		a := Generate(4, today, NewSource(seed))
		b := Generate(4, today, NewSource(seed))
		So(a, ShouldResemble, b)

		Convey("Then another day yields another seed", func() {
			So(SeedFor(4, today.AddDate(0, 0, 1)), ShouldNotEqual, seed)
			So(SeedFor(5, today), ShouldNotEqual, seed)
			So(SeedFor(4, today.Add(3*time.Hour)), ShouldEqual, seed)
		})
	})
}

func TestProfiles(t *testing.T) {
	Convey("Unknown athletes fall back to the default profile", t, func() {
		So(ProfileFor(42), ShouldResemble, ProfileFor(DefaultProfileID))
		So(HasProfile(42), ShouldBeFalse)
		So(ProfileFor(7).Strain, ShouldEqual, 15)
	})
}

func TestWindow(t *testing.T) {
	Convey("Given a 30 day series", t, func() {
		s := Generate(1, today, NewSource(7))

		Convey("Then the 7 day window is the last seven points", func() {
			w := s.Window(Window7)
			So(w, ShouldHaveLength, 7)
			So(w, ShouldResemble, s.Daily[23:])
			So(w[6].Date, ShouldEqual, "2024-03-15")
		})

		Convey("Then 14 and 30 day windows are suffixes too", func() {
			So(s.Window(Window14), ShouldResemble, s.Daily[16:])
			So(s.Window(Window30), ShouldResemble, s.Daily)
		})

		Convey("Then out of range windows are clamped", func() {
			So(s.Window(Window(-3)), ShouldBeEmpty)
			So(s.Window(Window(0)), ShouldBeEmpty)
			So(s.Window(Window(90)), ShouldResemble, s.Daily)
		})

		Convey("Then windows parse from their labels", func() {
			w, err := ParseWindow("14D")
			So(err, ShouldBeNil)
			So(w, ShouldEqual, Window14)
			So(w.String(), ShouldEqual, "14d")
			_, err = ParseWindow("90d")
			So(errors.Is(err, ErrUnknownWindow), ShouldBeTrue)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a window", t, func() {
		pts := []Point{
			{Recovery: 80, HRV: 60, Strain: 12.0, Sleep: 7.0, RHR: 50},
			{Recovery: 70, HRV: 55, Strain: 16.5, Sleep: 8.0, RHR: 53},
		}
		s := Summarize(pts)
		So(s.Days, ShouldEqual, 2)
		So(s.AvgRecovery, ShouldEqual, 75)
		So(s.AvgHRV, ShouldEqual, 57.5)
		So(s.AvgStrain, ShouldEqual, 14.3)
		So(s.AvgSleep, ShouldEqual, 7.5)
		So(s.AvgRHR, ShouldEqual, 51.5)
		So(s.PeakStrain, ShouldEqual, 16.5)
		So(s.LowRecovery, ShouldEqual, 70)

		So(Summarize(nil), ShouldResemble, Summary{})
	})
}

func TestWindowText(t *testing.T) {
	Convey("Windows marshal as their label", t, func() {
		b, err := Window14.MarshalText()
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "14d")

		var w Window
		So(w.UnmarshalText([]byte("7d")), ShouldBeNil)
		So(w, ShouldEqual, Window7)
		So(w.UnmarshalText([]byte("1y")), ShouldNotBeNil)
	})
}
