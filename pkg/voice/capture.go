package voice

import (
	"log/slog"
	"sync"
)

// Source is a blocking PCM input, typically a microphone device.
// Read blocks until data is available; Close must unblock any pending Read.
type Source interface {
	Start() error
	Read(p []byte) (int, error)
	Close() error
}

const frameDurationMs = 20

// Pump drains a Source and forwards PCM frames to a callback from a
// dedicated goroutine. Stop is synchronous: when it returns, the callback
// will not be invoked again.
type Pump struct {
	src      Source
	onFrame  func(pcm []byte)
	frameCap int
	logger   *slog.Logger

	stop     chan struct{}
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

func NewPump(src Source, cfg AudioConfig, logger *slog.Logger) *Pump {
	return &Pump{
		src:      src,
		frameCap: cfg.BytesForDurationMs(frameDurationMs),
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Open starts the source. The returned error comes from Source.Start;
// a permission failure surfaces here, before any transport is dialed and
// before any frame is forwarded.
func (p *Pump) Open() error {
	if err := p.src.Start(); err != nil {
		p.stopOnce.Do(func() {
			close(p.stop)
			close(p.done)
		})
		return err
	}
	return nil
}

// Run spawns the forwarding goroutine. Call only after Open succeeds.
func (p *Pump) Run(onFrame func(pcm []byte)) {
	p.onFrame = onFrame
	p.running = true
	go p.loop()
}

func (p *Pump) loop() {
	defer close(p.done)

	buf := make([]byte, p.frameCap)
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		n, err := p.src.Read(buf)
		if err != nil {
			select {
			case <-p.stop:
			default:
				p.logger.Warn("audio capture stopped", "error", err)
			}
			return
		}
		if n == 0 {
			continue
		}

		select {
		case <-p.stop:
			return
		default:
			frame := make([]byte, n)
			copy(frame, buf[:n])
			p.onFrame(frame)
		}
	}
}

// Stop closes the source and waits for the forwarding goroutine to exit.
// Safe to call multiple times, and between Open and Run.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		_ = p.src.Close()
		if !p.running {
			close(p.done)
		}
	})
	<-p.done
}
