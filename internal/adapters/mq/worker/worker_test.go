package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/M3kko/nolimit-dashboard/internal/adapters/mq/queue"
	"github.com/M3kko/nolimit-dashboard/internal/adapters/mq/worker"
	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	logging "github.com/M3kko/nolimit-dashboard/pkg/logger"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type recordingProcessor struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{fail: map[string]error{}}
}

func (p *recordingProcessor) Process(_ context.Context, j worker.Job) error { //nolint:gocritic // hugeParam
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, j.ID)
	return p.fail[j.ID]
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func newJob(id string) worker.Job {
	return export.NewJob(id, 4, history.Window14, false, nil, time.Now())
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		proc := newRecordingProcessor()
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When jobs arrive", func() {
			q.jobs <- newJob("a")
			q.jobs <- newJob("b")

			convey.Convey("Then each job reaches the processor once", func() {
				convey.So(waitFor(func() bool { return proc.count() == 2 }), convey.ShouldBeTrue)
				convey.So(proc.seen, convey.ShouldResemble, []string{"a", "b"})
			})
		})

		convey.Convey("When a job fails", func() {
			proc.mu.Lock()
			proc.fail["bad"] = errors.New("render failed")
			proc.mu.Unlock()
			q.jobs <- newJob("bad")
			q.jobs <- newJob("good")

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return proc.count() == 2 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then Run returns and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				<-w.Done()
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		proc := newRecordingProcessor()
		pool := worker.NewPool(4, q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When jobs are enqueued and the pool shuts down", func() {
			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(ctx, newJob(fmt.Sprintf("job-%d", i))), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued job is processed before workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(proc.count(), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(pool.Busy(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When Shutdown is called twice", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestProcessorFunc(t *testing.T) {
	convey.Convey("ProcessorFunc forwards to the wrapped function", t, func() {
		var got string
		p := worker.ProcessorFunc(func(_ context.Context, j worker.Job) error {
			got = j.ID
			return nil
		})
		convey.So(p.Process(context.Background(), newJob("x")), convey.ShouldBeNil)
		convey.So(got, convey.ShouldEqual, "x")
	})
}
