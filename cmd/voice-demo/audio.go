package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"

	"github.com/athompson0066/Roofing-Estimator/pkg/voice"
)

// micSource captures microphone PCM through malgo.
type micSource struct {
	ctx    malgo.Context
	cfg    voice.AudioConfig
	device *malgo.Device

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newMicSource(ctx malgo.Context, cfg voice.AudioConfig) *micSource {
	m := &micSource{
		ctx: ctx,
		cfg: cfg,
		buf: make([]byte, 0, cfg.BytesPerSecond()),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *micSource) Start() error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(m.cfg.Channels)
	deviceConfig.SampleRate = uint32(m.cfg.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			m.mu.Lock()
			m.buf = append(m.buf, pInputSamples...)
			m.mu.Unlock()
			m.cond.Signal()
		},
	}

	// A denied microphone surfaces as a device init failure.
	device, err := malgo.InitDevice(m.ctx, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("%w: %v", voice.ErrPermissionDenied, err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("%w: %v", voice.ErrPermissionDenied, err)
	}
	m.device = device
	return nil
}

func (m *micSource) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.buf) == 0 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return 0, io.EOF
	}

	n := copy(p, m.buf)
	m.buf = m.buf[n:]
	return n, nil
}

func (m *micSource) Close() error {
	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
	return nil
}

// speakerSink plays PCM through oto. It implements voice.Sink.
type speakerSink struct {
	otoCtx  *oto.Context
	player  *oto.Player
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	playing bool
	closed  bool
}

func newSpeakerSink(ctx *oto.Context, cfg voice.AudioConfig) *speakerSink {
	s := &speakerSink{
		otoCtx: ctx,
		buf:    make([]byte, 0, cfg.BytesPerSecond()*2),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *speakerSink) Write(pcm []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, pcm...)

	// Lazily start the player on first audio.
	if !s.playing && !s.closed {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
}

// Read implements io.Reader for oto.Player.
func (s *speakerSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed && len(s.buf) == 0 {
		// Feed silence so oto drains gracefully.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush discards buffered audio and resets the player so stale speech
// does not overlap the next turn.
func (s *speakerSink) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]

	if s.player != nil && s.playing {
		s.playing = false
		player := s.player
		s.player = nil
		s.mu.Unlock()

		player.Pause()
		player.Reset()
		player.Close()
		return
	}
	s.mu.Unlock()
}

func (s *speakerSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()

	if s.player != nil {
		s.player.Close()
	}
}
