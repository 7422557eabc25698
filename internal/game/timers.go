package game

import (
	"container/heap"
	"time"
)

// timer is a callback due at a point in tick time.
type timer struct {
	at  time.Time
	seq uint64
	fn  func()
}

// timerQueue is a min-heap by due time, then scheduling order. It is
// owned by the tick thread, so callbacks never run concurrently with a
// tick.
type timerQueue struct {
	items []*timer
	seq   uint64
}

func (q *timerQueue) Len() int { return len(q.items) }

func (q *timerQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.at.Equal(b.at) {
		return a.seq < b.seq
	}
	return a.at.Before(b.at)
}

func (q *timerQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *timerQueue) Push(x any) { q.items = append(q.items, x.(*timer)) }

func (q *timerQueue) Pop() any {
	n := len(q.items)
	t := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return t
}

func (q *timerQueue) schedule(at time.Time, fn func()) {
	q.seq++
	heap.Push(q, &timer{at: at, seq: q.seq, fn: fn})
}

// runDue fires every timer due at or before now. Timers scheduled by a
// callback for a time that is already due fire in the same call.
func (q *timerQueue) runDue(now time.Time) int {
	fired := 0
	for q.Len() > 0 && !q.items[0].at.After(now) {
		t := heap.Pop(q).(*timer)
		t.fn()
		fired++
	}
	return fired
}

// after schedules fn to run on the tick thread d after the current tick.
func (g *Game) after(d time.Duration, fn func()) {
	g.timers.schedule(g.now.Add(d), fn)
}
