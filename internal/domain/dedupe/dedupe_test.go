package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/M3kko/nolimit-dashboard/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is claimed", func() {
			id, claimed := d.Claim(ctx, "key-1", "job-1")

			Convey("Then it is bound to the job", func() {
				So(claimed, ShouldBeTrue)
				So(id, ShouldEqual, "job-1")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And claimed again with another job", func() {
				id, claimed := d.Claim(ctx, "key-1", "job-2")

				Convey("Then the first job is returned", func() {
					So(claimed, ShouldBeFalse)
					So(id, ShouldEqual, "job-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And released", func() {
				d.Release(ctx, "key-1")

				Convey("Then it can be claimed anew", func() {
					So(d.Size(), ShouldEqual, 0)
					id, claimed := d.Claim(ctx, "key-1", "job-3")
					So(claimed, ShouldBeTrue)
					So(id, ShouldEqual, "job-3")
				})
			})
		})

		Convey("When releasing an unknown key", func() {
			d.Release(ctx, "missing")
			So(d.Size(), ShouldEqual, 0)
		})
	})
}

func TestBoundedDeduper(t *testing.T) {
	Convey("Given a deduper bounded to three keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.Claim(ctx, fmt.Sprintf("k%d", i), fmt.Sprintf("j%d", i))
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			_, claimed := d.Claim(ctx, "k1", "again")
			So(claimed, ShouldBeTrue)
			id, claimed := d.Claim(ctx, "k4", "again")
			So(claimed, ShouldBeFalse)
			So(id, ShouldEqual, "j4")
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 100; i++ {
			d.Claim(ctx, fmt.Sprintf("k%d", i), "j")
		}
		So(d.Size(), ShouldEqual, 100)
	})
}

func TestConcurrentClaims(t *testing.T) {
	Convey("Given many goroutines racing on one key", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
			bound   = map[string]struct{}{}
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, claimed := d.Claim(ctx, "shared", fmt.Sprintf("job-%d", i))
				mu.Lock()
				defer mu.Unlock()
				if claimed {
					winners++
				}
				bound[id] = struct{}{}
			}(i)
		}
		wg.Wait()

		So(winners, ShouldEqual, 1)
		So(bound, ShouldHaveLength, 1)
	})
}
