package voice

import (
	"sync"
	"testing"
	"time"
)

type memSink struct {
	mu      sync.Mutex
	writes  [][]byte
	flushes int
}

func (s *memSink) Write(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, append([]byte(nil), pcm...))
}

func (s *memSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
}

func (s *memSink) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *memSink) flushCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

type fakeTimer struct {
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
	timer *fakeTimer
}

// testScheduler returns a scheduler with manual time: callbacks fire only
// when the test invokes them.
func testScheduler(sink Sink) (*Scheduler, *manualClock, *[]scheduledCall) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	calls := &[]scheduledCall{}

	s := NewScheduler(sink, PlaybackConfig())
	s.clock = clock
	s.after = func(d time.Duration, fn func()) timer {
		t := &fakeTimer{}
		*calls = append(*calls, scheduledCall{delay: d, fn: fn, timer: t})
		return t
	}
	return s, clock, calls
}

// 4800 bytes is 100ms at 24kHz mono 16-bit.
func chunk100ms() []byte {
	return make([]byte, 4800)
}

func TestScheduler_ChunksNeverOverlap(t *testing.T) {
	sink := &memSink{}
	s, clock, _ := testScheduler(sink)

	dur := 100 * time.Millisecond

	startA := s.Enqueue(chunk100ms())
	if !startA.Equal(clock.now) {
		t.Errorf("first chunk start = %v, want now %v", startA, clock.now)
	}

	// Second chunk arrives immediately but must wait for the first.
	startB := s.Enqueue(chunk100ms())
	if got, want := startB, startA.Add(dur); !got.Equal(want) {
		t.Errorf("second chunk start = %v, want %v", got, want)
	}

	startC := s.Enqueue(chunk100ms())
	if startC.Before(startB.Add(dur)) {
		t.Errorf("third chunk start %v overlaps second ending %v", startC, startB.Add(dur))
	}
}

func TestScheduler_IdleCursorResetsToNow(t *testing.T) {
	sink := &memSink{}
	s, clock, _ := testScheduler(sink)

	s.Enqueue(chunk100ms())

	// Long gap: the queue has fully drained by the time the next chunk
	// arrives, so it starts immediately rather than at the stale cursor.
	clock.now = clock.now.Add(5 * time.Second)
	start := s.Enqueue(chunk100ms())
	if !start.Equal(clock.now) {
		t.Errorf("post-gap start = %v, want now %v", start, clock.now)
	}
}

func TestScheduler_SpeakingLifecycle(t *testing.T) {
	sink := &memSink{}
	s, _, calls := testScheduler(sink)

	if s.Speaking() {
		t.Fatal("speaking before any chunk")
	}

	s.Enqueue(chunk100ms())
	if !s.Speaking() {
		t.Fatal("not speaking after enqueue")
	}

	// Fire the start timer: the chunk is written and stays live until
	// its playout timer fires.
	(*calls)[0].fn()
	if sink.writeCount() != 1 {
		t.Fatalf("writes = %d, want 1", sink.writeCount())
	}
	if !s.Speaking() {
		t.Fatal("not speaking while chunk plays out")
	}

	(*calls)[1].fn()
	if s.Speaking() {
		t.Fatal("still speaking after playout")
	}
}

func TestScheduler_CancelDropsQueue(t *testing.T) {
	sink := &memSink{}
	s, clock, calls := testScheduler(sink)

	s.Enqueue(chunk100ms())
	s.Enqueue(chunk100ms())

	s.Cancel()

	if s.Speaking() {
		t.Error("speaking after cancel")
	}
	if sink.flushCount() != 1 {
		t.Errorf("flushes = %d, want 1", sink.flushCount())
	}
	for i, call := range *calls {
		if !call.timer.stopped {
			t.Errorf("timer %d not stopped", i)
		}
	}

	// A stale timer firing after cancel must not write.
	(*calls)[0].fn()
	if sink.writeCount() != 0 {
		t.Errorf("stale timer wrote %d chunks", sink.writeCount())
	}

	// Next chunk starts fresh at now.
	clock.now = clock.now.Add(time.Millisecond)
	if start := s.Enqueue(chunk100ms()); !start.Equal(clock.now) {
		t.Errorf("post-cancel start = %v, want now %v", start, clock.now)
	}
	if !s.Speaking() {
		t.Error("not speaking after post-cancel enqueue")
	}
}
