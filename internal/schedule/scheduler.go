// Package schedule is a deterministic timer queue driven by an external
// clock. Nothing fires on its own: the owner advances simulated time and due
// callbacks run synchronously, in order of fire time and then insertion.
package schedule

import (
	"container/heap"
	"time"
)

// ID identifies a scheduled timer. The zero ID is never issued.
type ID uint64

type timer struct {
	id       ID
	at       time.Duration
	seq      uint64
	interval time.Duration // > 0 for periodic timers
	fn       func()
	index    int
}

// queue is a min-heap ordered by (at, seq).
type queue []*timer

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler holds pending timers against a simulated clock starting at zero.
// It is not safe for concurrent use.
type Scheduler struct {
	now     time.Duration
	queue   queue
	byID    map[ID]*timer
	nextID  ID
	seq     uint64
	stopped bool
	fired   int
}

// New returns an empty scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{byID: make(map[ID]*timer)}
}

// Now returns the current simulated time. While a callback runs it equals
// that callback's fire time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once, d after the current time.
func (s *Scheduler) After(d time.Duration, fn func()) ID {
	return s.At(s.now+d, fn)
}

// At schedules fn to run once at simulated time t. Times in the past fire on
// the next Advance.
func (s *Scheduler) At(t time.Duration, fn func()) ID {
	return s.add(t, 0, fn)
}

// Every schedules fn to run at now+interval and every interval after that,
// until cancelled or stopped. A non-positive interval schedules nothing and
// returns the zero ID.
func (s *Scheduler) Every(interval time.Duration, fn func()) ID {
	if interval <= 0 {
		return 0
	}
	return s.add(s.now+interval, interval, fn)
}

func (s *Scheduler) add(at, interval time.Duration, fn func()) ID {
	if s.stopped || fn == nil {
		return 0
	}
	if at < s.now {
		at = s.now
	}
	s.nextID++
	t := &timer{id: s.nextID, at: at, interval: interval, fn: fn, seq: s.nextSeq()}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// Cancel removes a pending timer. It reports whether the timer was pending.
// Cancelling a periodic timer from inside its own callback stops it.
func (s *Scheduler) Cancel(id ID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
	return true
}

// Advance moves the clock to `to`, running every timer due at or before it.
// Callbacks may schedule or cancel timers; new timers due within the window
// run in the same call. It returns the number of callbacks run.
func (s *Scheduler) Advance(to time.Duration) int {
	ran := 0
	for !s.stopped && s.queue.Len() > 0 && s.queue[0].at <= to {
		t := heap.Pop(&s.queue).(*timer)
		if t.interval <= 0 {
			delete(s.byID, t.id)
		}
		if t.at > s.now {
			s.now = t.at
		}
		t.fn()
		ran++

		if t.interval > 0 && !s.stopped {
			if _, live := s.byID[t.id]; live {
				t.at += t.interval
				t.seq = s.nextSeq()
				heap.Push(&s.queue, t)
			}
		}
	}
	if !s.stopped && to > s.now {
		s.now = to
	}
	s.fired += ran
	return ran
}

// Stop cancels every pending timer. Later scheduling calls are ignored and
// Advance runs nothing. Stopping from inside a callback prevents any further
// callbacks in that Advance.
func (s *Scheduler) Stop() {
	s.stopped = true
	s.queue = nil
	clear(s.byID)
}

// Stopped reports whether Stop was called.
func (s *Scheduler) Stopped() bool {
	return s.stopped
}

// Pending returns the number of scheduled timers.
func (s *Scheduler) Pending() int {
	return len(s.byID)
}

// Fired returns the total number of callbacks run.
func (s *Scheduler) Fired() int {
	return s.fired
}
