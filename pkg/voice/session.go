package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// State is the lifecycle phase of a voice session controller.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateClosed     State = "closed"
)

// SessionConfig describes the upstream live session to open.
type SessionConfig struct {
	Model  string
	System string
	Voice  string
}

// StreamEvent is an event from the upstream live stream.
type StreamEvent interface {
	streamEventType() string
}

// AudioChunkEvent carries a PCM chunk of model speech.
type AudioChunkEvent struct {
	PCM []byte
}

func (AudioChunkEvent) streamEventType() string { return "audio_chunk" }

// InterruptedEvent signals that the model turn was interrupted and any
// queued playback should be dropped.
type InterruptedEvent struct{}

func (InterruptedEvent) streamEventType() string { return "interrupted" }

// TurnCompleteEvent marks the end of a model turn.
type TurnCompleteEvent struct{}

func (TurnCompleteEvent) streamEventType() string { return "turn_complete" }

// Stream is a duplex audio connection to the model.
type Stream interface {
	SendAudio(pcm []byte) error
	Events() <-chan StreamEvent
	Close() error
	Err() error
}

// Dialer opens live streams.
type Dialer interface {
	Dial(ctx context.Context, cfg SessionConfig) (Stream, error)
}

// Controller ties microphone capture, the live stream, and playback
// together for one voice session. Controllers are single-use: once
// closed, build a new one to reconnect.
type Controller struct {
	dialer Dialer
	source Source
	sched  *Scheduler
	cfg    SessionConfig
	logger *slog.Logger

	onStateChange func(State)

	mu     sync.Mutex
	state  State
	stream Stream
	pump   *Pump

	stopOnce sync.Once
	done     chan struct{}
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithStateListener registers a callback invoked on every state change.
func WithStateListener(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.onStateChange = fn
	}
}

func NewController(dialer Dialer, source Source, sink Sink, cfg SessionConfig, logger *slog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		dialer: dialer,
		source: source,
		sched:  NewScheduler(sink, PlaybackConfig()),
		cfg:    cfg,
		logger: logger,
		state:  StateIdle,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Speaking reports whether model audio is queued or playing.
func (c *Controller) Speaking() bool {
	return c.sched.Speaking()
}

// Start opens the microphone, dials the live stream, and begins
// forwarding captured audio. A controller that is not idle returns
// ErrStreamingSession. If the microphone cannot be opened the controller
// closes without dialing upstream and the source error, typically
// ErrPermissionDenied, is returned.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrStreamingSession
	}
	c.state = StateConnecting
	c.mu.Unlock()
	c.notify(StateConnecting)

	pump := NewPump(c.source, CaptureConfig(), c.logger)
	if err := pump.Open(); err != nil {
		c.closeFailed()
		return err
	}

	stream, err := c.dialer.Dial(ctx, c.cfg)
	if err != nil {
		pump.Stop()
		c.closeFailed()
		return fmt.Errorf("connect voice session: %w", err)
	}

	c.mu.Lock()
	c.stream = stream
	c.pump = pump
	c.state = StateActive
	c.mu.Unlock()

	pump.Run(func(pcm []byte) {
		if sendErr := stream.SendAudio(pcm); sendErr != nil {
			c.logger.Warn("drop captured frame", "error", sendErr)
		}
	})
	c.notify(StateActive)

	go c.eventLoop(stream)
	return nil
}

func (c *Controller) eventLoop(stream Stream) {
	for event := range stream.Events() {
		switch e := event.(type) {
		case AudioChunkEvent:
			c.sched.Enqueue(e.PCM)
		case InterruptedEvent:
			c.sched.Cancel()
		case TurnCompleteEvent:
			c.logger.Debug("model turn complete")
		}
	}
	if err := stream.Err(); err != nil {
		c.logger.Error("voice stream closed", "error", err)
	}
	c.Stop()
}

// Stop tears the session down: capture stops synchronously, queued
// playback is dropped, and the stream is closed. Idempotent.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		pump, stream := c.pump, c.stream
		c.mu.Unlock()

		if pump != nil {
			pump.Stop()
		}
		c.sched.Cancel()
		if stream != nil {
			_ = stream.Close()
		}
		c.setState(StateClosed)
		close(c.done)
	})
	<-c.done
}

func (c *Controller) closeFailed() {
	c.stopOnce.Do(func() {
		c.setState(StateClosed)
		close(c.done)
	})
}

// Done is closed once the controller reaches the closed state.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed {
		c.notify(s)
	}
}

func (c *Controller) notify(s State) {
	if c.onStateChange != nil {
		c.onStateChange(s)
	}
}
