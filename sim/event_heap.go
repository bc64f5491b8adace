package sim

import "container/heap"

// EventQueue is a priority queue of pending events with deterministic
// ordering: earliest time first, schedule order breaking ties.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Schedule enqueues an event of the given kind at the given time and returns
// the stored record. Sequence numbers start at 1 and increase strictly in
// schedule order.
func (q *EventQueue) Schedule(time float64, kind EventKind, node string) Event {
	q.nextSeq++
	ev := Event{Time: time, Seq: q.nextSeq, Kind: kind, Node: node}
	heap.Push(&q.events, ev)
	return ev
}

// PopEarliest removes and returns the event with the smallest (time, seq).
// The boolean is false when the queue is empty.
func (q *EventQueue) PopEarliest() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.events).(Event), true
}

// Peek returns the next event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

// eventHeap implements heap.Interface ordered by timestamp, then sequence.
type eventHeap []Event

func (h eventHeap) Len() int {
	return len(h)
}

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
