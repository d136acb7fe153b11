// Package clock provides a simulated time source with one-shot timers.
//
// Time only moves when Advance is called. Timers fire synchronously from
// Advance, in deadline order, with Now reporting each timer's own deadline
// while its callback runs. This lets spawn and expiry behaviour be driven
// deterministically from a frame loop or a test.
package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Clock is a manually advanced time source.
type Clock struct {
	mu    sync.Mutex
	now   time.Time
	queue timerQueue
	seq   uint64
}

// New creates a clock starting at start.
func New(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Timer is a pending callback created by AfterFunc.
type Timer struct {
	clock *Clock
	when  time.Time
	seq   uint64
	fn    func()
	index int // heap index, -1 once fired or stopped
}

// AfterFunc schedules fn to run once d has elapsed on the clock.
// Negative durations are treated as zero.
func (c *Clock) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &Timer{
		clock: c,
		when:  c.now.Add(d),
		seq:   c.seq,
		fn:    fn,
	}
	heap.Push(&c.queue, t)
	return t
}

// Stop cancels the timer. It reports whether the call prevented the timer
// from firing; stopping an already fired or stopped timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&c.queue, t.index)
	return true
}

// When returns the timer's deadline.
func (t *Timer) When() time.Time {
	return t.when
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls within the step, including timers scheduled by callbacks during the
// step. Returns the number of callbacks run.
func (c *Clock) Advance(d time.Duration) int {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	return c.AdvanceTo(target)
}

// AdvanceTo moves the clock to target, firing due timers on the way.
// Moving backwards is ignored.
func (c *Clock) AdvanceTo(target time.Time) int {
	fired := 0
	for {
		c.mu.Lock()
		if len(c.queue) == 0 || c.queue[0].when.After(target) {
			if target.After(c.now) {
				c.now = target
			}
			c.mu.Unlock()
			return fired
		}

		t := heap.Pop(&c.queue).(*Timer)
		if t.when.After(c.now) {
			c.now = t.when
		}
		c.mu.Unlock()

		t.fn()
		fired++
	}
}

// Pending returns the number of timers waiting to fire.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// timerQueue is a min-heap ordered by deadline, then creation order.
type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
