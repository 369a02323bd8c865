// Package liveapi implements the Gemini Live (BidiGenerateContent)
// websocket protocol and adapts it to the voice.Stream interface.
package liveapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/athompson0066/Roofing-Estimator/pkg/voice"
)

const (
	defaultHost  = "generativelanguage.googleapis.com"
	endpointPath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	defaultConnectTimeout = 15 * time.Second

	captureMIMEType = "audio/pcm;rate=16000"
)

// Dialer opens live sessions against the Gemini Live API.
type Dialer struct {
	apiKey   string
	endpoint string
	logger   *slog.Logger
	wsDialer *websocket.Dialer
}

// DialerOption customizes a Dialer.
type DialerOption func(*Dialer)

// WithEndpoint overrides the websocket endpoint URL. The API key is
// still appended as a query parameter.
func WithEndpoint(endpoint string) DialerOption {
	return func(d *Dialer) {
		d.endpoint = endpoint
	}
}

// WithWebsocketDialer overrides the underlying websocket dialer.
func WithWebsocketDialer(wd *websocket.Dialer) DialerOption {
	return func(d *Dialer) {
		d.wsDialer = wd
	}
}

func NewDialer(apiKey string, logger *slog.Logger, opts ...DialerOption) *Dialer {
	d := &Dialer{
		apiKey:   apiKey,
		endpoint: (&url.URL{Scheme: "wss", Host: defaultHost, Path: endpointPath}).String(),
		logger:   logger,
		wsDialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects, performs the setup handshake, and returns an active
// stream. The context bounds the handshake; a context without a deadline
// gets a connect timeout.
func (d *Dialer) Dial(ctx context.Context, cfg voice.SessionConfig) (voice.Stream, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse live endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", d.apiKey)
	u.RawQuery = q.Encode()

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}

	conn, resp, err := d.wsDialer.DialContext(dialCtx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("live websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("live websocket dial: %w", err)
	}

	if err := conn.WriteJSON(buildSetup(cfg)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send live setup: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(defaultConnectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read setup ack: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var ack serverMessage
	if err := json.Unmarshal(payload, &ack); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("decode setup ack: %w", err)
	}
	if ack.SetupComplete == nil {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected first live frame: %s", strings.TrimSpace(string(payload)))
	}

	s := &Session{
		conn:   conn,
		logger: d.logger,
		events: make(chan voice.StreamEvent, 256),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func buildSetup(cfg voice.SessionConfig) setupMessage {
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	gen := &generationConfig{ResponseModalities: []string{"AUDIO"}}
	if cfg.Voice != "" {
		gen.SpeechConfig = &speechConfig{
			VoiceConfig: &voiceConfig{
				PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		}
	}

	payload := setupPayload{
		Model:            model,
		GenerationConfig: gen,
	}
	if cfg.System != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: cfg.System}}}
	}
	return setupMessage{Setup: payload}
}

// Session is an active live websocket stream.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	events chan voice.StreamEvent
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error
}

// SendAudio forwards a PCM16 chunk as a realtime media chunk.
func (s *Session) SendAudio(pcm []byte) error {
	msg := realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []mediaChunk{{
				MIMEType: captureMIMEType,
				Data:     base64.StdEncoding.EncodeToString(pcm),
			}},
		},
	}
	return s.sendJSON(msg)
}

func (s *Session) sendJSON(v any) error {
	if s.closed.Load() {
		return fmt.Errorf("live session is closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Events yields decoded stream events. The channel closes when the
// session ends.
func (s *Session) Events() <-chan voice.StreamEvent {
	return s.events
}

// Close closes the websocket and waits for the read loop to drain.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

// Err returns the terminal session error, if any.
func (s *Session) Err() error {
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.setErr(err)
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.setErr(fmt.Errorf("decode live frame: %w", err))
			return
		}
		if msg.ServerContent == nil {
			continue
		}

		sc := msg.ServerContent
		if sc.Interrupted {
			s.emit(voice.InterruptedEvent{})
		}
		if sc.ModelTurn != nil {
			for _, p := range sc.ModelTurn.Parts {
				if p.InlineData == nil || p.InlineData.Data == "" {
					continue
				}
				pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					s.logger.Warn("drop undecodable audio chunk", "error", err)
					continue
				}
				s.emit(voice.AudioChunkEvent{PCM: pcm})
			}
		}
		if sc.TurnComplete {
			s.emit(voice.TurnCompleteEvent{})
		}
	}
}

func (s *Session) emit(event voice.StreamEvent) {
	select {
	case s.events <- event:
	default:
		// The read loop must never block on a stalled consumer.
		s.logger.Warn("event buffer full, dropping stream event", "event", fmt.Sprintf("%T", event))
	}
}
