package concurrency

import "testing"

// TestTaskQueue_FIFO verifies head-dequeue, tail-enqueue ordering
// Given: A queue with three tasks
// When: Tasks are popped
// Then: They come back in submission order
func TestTaskQueue_FIFO(t *testing.T) {
	// Arrange
	q := newTaskQueue()
	a := newTask(RunnableFunc(func() {}), 0)
	b := newTask(RunnableFunc(func() {}), 0)
	c := newTask(RunnableFunc(func() {}), 0)

	// Act
	q.push(a)
	q.push(b)
	q.push(c)

	// Assert
	for i, want := range []*task{a, b, c} {
		got, ok := q.popFront()
		if !ok {
			t.Fatalf("pop %d: queue empty", i)
		}
		if got != want {
			t.Errorf("pop %d returned the wrong task", i)
		}
	}
	if _, ok := q.popFront(); ok {
		t.Error("pop on empty queue succeeded")
	}
	if !q.empty() {
		t.Error("drained queue not empty")
	}
}

// TestTaskQueue_RemoveAt verifies positional erase preserves order
func TestTaskQueue_RemoveAt(t *testing.T) {
	q := newTaskQueue()
	tasks := make([]*task, 5)
	for i := range tasks {
		tasks[i] = newTask(RunnableFunc(func() {}), 0)
		q.push(tasks[i])
	}

	// Erase the middle element
	q.removeAt(2)

	if q.len() != 4 {
		t.Fatalf("len after removeAt = %d, want 4", q.len())
	}
	want := []*task{tasks[0], tasks[1], tasks[3], tasks[4]}
	for i, w := range want {
		if q.at(i) != w {
			t.Errorf("position %d holds the wrong task after removeAt", i)
		}
	}
}

// TestTaskQueue_CompactAfterDrain verifies capacity shrinks back after a burst
// Given: A queue grown past the compaction threshold
// When: It is drained below a quarter of its capacity
// Then: The backing array is compacted
func TestTaskQueue_CompactAfterDrain(t *testing.T) {
	q := newTaskQueue()
	const burst = 4 * compactMinCap

	for i := 0; i < burst; i++ {
		q.push(newTask(RunnableFunc(func() {}), 0))
	}
	for i := 0; i < burst; i++ {
		q.popFront()
	}

	if got := cap(q.tasks); got > compactMinCap {
		t.Errorf("capacity after drain = %d, want <= %d", got, compactMinCap)
	}
	if q.len() != 0 {
		t.Errorf("len after drain = %d, want 0", q.len())
	}
}
