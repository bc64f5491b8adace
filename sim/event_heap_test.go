package sim

import "testing"

func TestEventQueue_PopsInTimeOrder(t *testing.T) {
	// GIVEN events scheduled out of time order
	q := NewEventQueue()
	q.Schedule(3.0, KindDeparture, "a")
	q.Schedule(1.0, KindArrival, "a")
	q.Schedule(2.0, KindArrival, "b")

	// WHEN all events are popped
	// THEN they come out earliest first
	want := []float64{1.0, 2.0, 3.0}
	for i, wt := range want {
		ev, ok := q.PopEarliest()
		if !ok {
			t.Fatalf("queue empty at position %d", i)
		}
		if ev.Time != wt {
			t.Errorf("position %d: got time %v, want %v", i, ev.Time, wt)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after draining: %d left", q.Len())
	}
}

func TestEventQueue_EqualTimes_PopInScheduleOrder(t *testing.T) {
	// GIVEN four events scheduled at the identical time
	q := NewEventQueue()
	q.Schedule(5.0, KindDeparture, "n1")
	q.Schedule(5.0, KindArrival, "n2")
	q.Schedule(5.0, KindDeparture, "n3")
	q.Schedule(5.0, KindArrival, "n4")

	// WHEN they are popped
	// THEN ties break by schedule order, not kind or node
	wantNodes := []string{"n1", "n2", "n3", "n4"}
	for i, wn := range wantNodes {
		ev, ok := q.PopEarliest()
		if !ok {
			t.Fatalf("queue empty at position %d", i)
		}
		if ev.Node != wn {
			t.Errorf("position %d: got node %s, want %s", i, ev.Node, wn)
		}
	}
}

func TestEventQueue_SeqStrictlyIncreasing(t *testing.T) {
	// GIVEN a queue
	q := NewEventQueue()

	// WHEN events are scheduled
	e1 := q.Schedule(1.0, KindArrival, "a")
	e2 := q.Schedule(0.5, KindArrival, "a")
	e3 := q.Schedule(2.0, KindDeparture, "b")

	// THEN sequence numbers are 1, 2, 3 regardless of times
	if e1.Seq != 1 || e2.Seq != 2 || e3.Seq != 3 {
		t.Errorf("sequence numbers: got %d, %d, %d, want 1, 2, 3", e1.Seq, e2.Seq, e3.Seq)
	}
}

func TestEventQueue_InsertionOrderIndependence(t *testing.T) {
	// Helper schedules the same distinct-time events in a given order and
	// returns the observed pop order.
	type spec struct {
		time float64
		kind EventKind
		node string
	}
	specs := []spec{
		{1.0, KindArrival, "a"},
		{2.0, KindDeparture, "a"},
		{3.0, KindArrival, "b"},
		{4.0, KindDeparture, "b"},
	}
	runWithOrder := func(order []int) []string {
		q := NewEventQueue()
		for _, idx := range order {
			s := specs[idx]
			q.Schedule(s.time, s.kind, s.node)
		}
		result := []string{}
		for q.Len() > 0 {
			ev, _ := q.PopEarliest()
			result = append(result, ev.Node+"/"+ev.Kind.String())
		}
		return result
	}

	// GIVEN three different insertion orders
	r1 := runWithOrder([]int{0, 1, 2, 3})
	r2 := runWithOrder([]int{3, 2, 1, 0})
	r3 := runWithOrder([]int{1, 3, 0, 2})

	// THEN the pop order is identical
	for i := range r1 {
		if r1[i] != r2[i] || r1[i] != r3[i] {
			t.Errorf("pop order differs at position %d: %s vs %s vs %s", i, r1[i], r2[i], r3[i])
		}
	}
}

func TestEventQueue_EmptyQueueOperations(t *testing.T) {
	// GIVEN an empty queue
	q := NewEventQueue()

	// WHEN Pop and Peek are called
	// THEN both report absence
	if _, ok := q.PopEarliest(); ok {
		t.Error("PopEarliest on empty queue: got ok=true, want false")
	}
	if _, ok := q.Peek(); ok {
		t.Error("Peek on empty queue: got ok=true, want false")
	}
}

func TestEventQueue_PeekDoesNotRemove(t *testing.T) {
	// GIVEN a queue with one event
	q := NewEventQueue()
	q.Schedule(1.5, KindArrival, "a")

	// WHEN Peek is called twice
	p1, ok1 := q.Peek()
	p2, ok2 := q.Peek()

	// THEN the same event is reported and the queue keeps it
	if !ok1 || !ok2 {
		t.Fatal("Peek on non-empty queue returned ok=false")
	}
	if p1 != p2 {
		t.Errorf("Peek changed the front: %+v vs %+v", p1, p2)
	}
	if q.Len() != 1 {
		t.Errorf("Peek modified queue length: got %d, want 1", q.Len())
	}
}
