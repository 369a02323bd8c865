package liveapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/athompson0066/Roofing-Estimator/pkg/voice"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLiveServer runs handler against each upgraded websocket connection
// and returns a dialer pointed at it.
func newLiveServer(t *testing.T, handler func(*websocket.Conn, *http.Request)) *Dialer {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn, r)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewDialer("test-key", discardLogger(), WithEndpoint(wsURL))
}

func ackSetup(t *testing.T, conn *websocket.Conn) setupMessage {
	t.Helper()
	var setup setupMessage
	if err := conn.ReadJSON(&setup); err != nil {
		t.Errorf("read setup: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"setupComplete": map[string]any{}}); err != nil {
		t.Errorf("write setupComplete: %v", err)
	}
	return setup
}

func TestDial_SetupHandshake(t *testing.T) {
	setupCh := make(chan setupPayload, 1)
	inputCh := make(chan realtimeInputMessage, 1)

	dialer := newLiveServer(t, func(conn *websocket.Conn, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key query param = %q", got)
		}
		setup := ackSetup(t, conn)
		setupCh <- setup.Setup

		var input realtimeInputMessage
		if err := conn.ReadJSON(&input); err != nil {
			t.Errorf("read realtime input: %v", err)
			return
		}
		inputCh <- input
	})

	stream, err := dialer.Dial(context.Background(), voice.SessionConfig{
		Model:  "gemini-2.5-flash-native-audio-preview-09-2025",
		System: "You are a roofing estimator.",
		Voice:  "Puck",
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer stream.Close()

	setup := <-setupCh
	if setup.Model != "models/gemini-2.5-flash-native-audio-preview-09-2025" {
		t.Errorf("setup model = %q", setup.Model)
	}
	if setup.GenerationConfig == nil || len(setup.GenerationConfig.ResponseModalities) != 1 || setup.GenerationConfig.ResponseModalities[0] != "AUDIO" {
		t.Errorf("setup generation config = %+v", setup.GenerationConfig)
	}
	if setup.GenerationConfig.SpeechConfig == nil || setup.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Puck" {
		t.Error("voice name missing from setup")
	}
	if setup.SystemInstruction == nil || setup.SystemInstruction.Parts[0].Text != "You are a roofing estimator." {
		t.Error("system instruction missing from setup")
	}

	pcm := bytes.Repeat([]byte{0x12, 0x34}, 320)
	if err := stream.SendAudio(pcm); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}

	input := <-inputCh
	chunks := input.RealtimeInput.MediaChunks
	if len(chunks) != 1 {
		t.Fatalf("media chunks = %d, want 1", len(chunks))
	}
	if chunks[0].MIMEType != "audio/pcm;rate=16000" {
		t.Errorf("chunk mime type = %q", chunks[0].MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(chunks[0].Data)
	if err != nil {
		t.Fatalf("chunk not base64: %v", err)
	}
	if !bytes.Equal(decoded, pcm) {
		t.Error("chunk audio does not round-trip")
	}
}

func TestDial_RejectsUnexpectedFirstFrame(t *testing.T) {
	dialer := newLiveServer(t, func(conn *websocket.Conn, r *http.Request) {
		var setup setupMessage
		_ = conn.ReadJSON(&setup)
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
	})

	_, err := dialer.Dial(context.Background(), voice.SessionConfig{Model: "gemini-2.5-flash"})
	if err == nil {
		t.Fatal("Dial succeeded without setupComplete")
	}
	if !strings.Contains(err.Error(), "unexpected first live frame") {
		t.Errorf("error = %v", err)
	}
}

func TestSession_DecodesServerEvents(t *testing.T) {
	pcm := bytes.Repeat([]byte{0xAA, 0x55}, 480)

	dialer := newLiveServer(t, func(conn *websocket.Conn, r *http.Request) {
		ackSetup(t, conn)

		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{
			"modelTurn": map[string]any{
				"parts": []map[string]any{{
					"inlineData": map[string]any{
						"mimeType": "audio/pcm;rate=24000",
						"data":     base64.StdEncoding.EncodeToString(pcm),
					},
				}},
			},
		}})
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"interrupted": true}})
		_ = conn.WriteJSON(map[string]any{"serverContent": map[string]any{"turnComplete": true}})
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	})

	stream, err := dialer.Dial(context.Background(), voice.SessionConfig{Model: "gemini-2.5-flash"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer stream.Close()

	var got []voice.StreamEvent
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				t.Fatalf("events closed after %d events", len(got))
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out after %d events", len(got))
		}
	}

	audio, ok := got[0].(voice.AudioChunkEvent)
	if !ok {
		t.Fatalf("event 0 = %T, want AudioChunkEvent", got[0])
	}
	if !bytes.Equal(audio.PCM, pcm) {
		t.Error("audio chunk does not round-trip")
	}
	if _, ok := got[1].(voice.InterruptedEvent); !ok {
		t.Errorf("event 1 = %T, want InterruptedEvent", got[1])
	}
	if _, ok := got[2].(voice.TurnCompleteEvent); !ok {
		t.Errorf("event 2 = %T, want TurnCompleteEvent", got[2])
	}

	if err := stream.Err(); err != nil {
		t.Errorf("session error after normal close: %v", err)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	dialer := newLiveServer(t, func(conn *websocket.Conn, r *http.Request) {
		ackSetup(t, conn)
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	stream, err := dialer.Dial(context.Background(), voice.SessionConfig{Model: "gemini-2.5-flash"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := stream.SendAudio([]byte{0, 0}); err == nil {
		t.Error("SendAudio succeeded on closed session")
	}
}

func TestSession_EmitWarnsWhenBufferFull(t *testing.T) {
	var logBuf bytes.Buffer
	s := &Session{
		events: make(chan voice.StreamEvent, 1),
		logger: slog.New(slog.NewTextHandler(&logBuf, nil)),
	}

	s.emit(voice.AudioChunkEvent{PCM: []byte{1, 2}})
	if logBuf.Len() != 0 {
		t.Fatalf("buffered emit logged: %s", logBuf.String())
	}

	s.emit(voice.AudioChunkEvent{PCM: []byte{3, 4}})
	if !strings.Contains(logBuf.String(), "dropping stream event") {
		t.Errorf("dropped chunk not logged, got %q", logBuf.String())
	}
	if !strings.Contains(logBuf.String(), "AudioChunkEvent") {
		t.Errorf("dropped event type missing from log, got %q", logBuf.String())
	}

	if got := len(s.events); got != 1 {
		t.Errorf("buffered events = %d, want 1", got)
	}
}
