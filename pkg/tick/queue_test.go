package tick

import (
	"sync"
	"testing"

	"servimarket/pkg/logger"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_RunsTasksInOrder(t *testing.T) {
	q := NewQueue(logger.Discard())
	defer q.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.Defer(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Wait()

	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_NestedDeferRunsAfterQueuedTasks(t *testing.T) {
	q := NewQueue(logger.Discard())
	defer q.Close()

	var got []string
	q.Defer(func() {
		got = append(got, "first")
		q.Defer(func() { got = append(got, "nested") })
	})
	q.Defer(func() { got = append(got, "second") })
	q.Wait()

	if diff := cmp.Diff([]string{"first", "second", "nested"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_DeferNeverRunsInline(t *testing.T) {
	q := NewQueue(logger.Discard())
	defer q.Close()

	block := make(chan struct{})
	q.Defer(func() { <-block })

	ran := false
	q.Defer(func() { ran = true })
	if ran {
		t.Fatal("task ran inside Defer")
	}
	close(block)
	q.Wait()
	if !ran {
		t.Fatal("task never ran")
	}
}

func TestQueue_RecoversFromPanic(t *testing.T) {
	q := NewQueue(logger.Discard())
	defer q.Close()

	q.Defer(func() { panic("boom") })
	ran := false
	q.Defer(func() { ran = true })
	q.Wait()

	if !ran {
		t.Error("queue stopped after a panicking task")
	}
}

func TestQueue_CloseRejectsNewTasks(t *testing.T) {
	q := NewQueue(logger.Discard())

	ran := false
	q.Defer(func() { ran = true })
	q.Close()

	if !ran {
		t.Error("Close dropped a queued task")
	}
	if q.Defer(func() {}) {
		t.Error("Defer accepted a task after Close")
	}
	q.Close()
}

func TestQueue_DeferNil(t *testing.T) {
	q := NewQueue(logger.Discard())
	defer q.Close()

	if q.Defer(nil) {
		t.Error("nil task accepted")
	}
	q.Wait()
}
