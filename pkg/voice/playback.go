package voice

import (
	"sync"
	"time"
)

// Sink receives PCM for immediate playback, typically a speaker device.
// Flush discards any buffered audio that has not reached the hardware yet.
type Sink interface {
	Write(pcm []byte)
	Flush()
}

// Clock abstracts wall time for the scheduler.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type timer interface {
	Stop() bool
}

func systemAfter(d time.Duration, fn func()) timer {
	return time.AfterFunc(d, fn)
}

// Scheduler plays PCM chunks back to back without overlap. Each enqueued
// chunk starts at the later of now and the end of the previous chunk, so
// chunks arriving faster than real time queue up instead of colliding.
type Scheduler struct {
	sink Sink
	cfg  AudioConfig

	clock Clock
	after func(d time.Duration, fn func()) timer

	mu        sync.Mutex
	nextStart time.Time
	handles   map[int64]timer
	seq       int64
	epoch     uint64
}

func NewScheduler(sink Sink, cfg AudioConfig) *Scheduler {
	return &Scheduler{
		sink:    sink,
		cfg:     cfg,
		clock:   systemClock{},
		after:   systemAfter,
		handles: make(map[int64]timer),
	}
}

// Enqueue schedules a chunk and returns its start time.
func (s *Scheduler) Enqueue(pcm []byte) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	start := now
	if s.nextStart.After(start) {
		start = s.nextStart
	}
	dur := s.pcmDuration(len(pcm))
	s.nextStart = start.Add(dur)

	id := s.seq
	s.seq++
	epoch := s.epoch
	s.handles[id] = s.after(start.Sub(now), func() { s.play(id, epoch, pcm, dur) })
	return start
}

func (s *Scheduler) play(id int64, epoch uint64, pcm []byte, dur time.Duration) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.sink.Write(pcm)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	// The chunk counts as speaking until its audio has played out.
	s.handles[id] = s.after(dur, func() { s.retire(id, epoch) })
}

func (s *Scheduler) retire(id int64, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	delete(s.handles, id)
}

// Speaking reports whether any chunk is scheduled or currently playing.
func (s *Scheduler) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles) > 0
}

// Cancel drops all pending and playing chunks and resets the cursor, so
// the next Enqueue starts immediately. Used on model interruption.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	for _, t := range s.handles {
		t.Stop()
	}
	s.handles = make(map[int64]timer)
	s.nextStart = time.Time{}
	s.epoch++
	s.mu.Unlock()

	s.sink.Flush()
}

func (s *Scheduler) pcmDuration(bytes int) time.Duration {
	bps := s.cfg.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(bytes) * time.Second / time.Duration(bps)
}
