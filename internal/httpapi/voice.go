package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/athompson0066/Roofing-Estimator/internal/store"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
	"github.com/athompson0066/Roofing-Estimator/pkg/voice"
)

const voiceWriteTimeout = 5 * time.Second

// handleVoice relays duplex audio between a browser websocket and the
// live model session: inbound binary frames are 16kHz PCM16 microphone
// audio, outbound binary frames are 24kHz PCM16 model speech, and
// control events arrive as JSON text frames.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var p *profile.BusinessProfile
	if id := r.URL.Query().Get("profileId"); id != "" {
		rec, err := s.store.GetProfile(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "unknown profile")
				return
			}
			writeError(w, http.StatusInternalServerError, "load profile")
			return
		}
		p = rec.Profile
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkWSOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("voice upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	stream, err := s.dialer.Dial(r.Context(), voice.SessionConfig{
		Model:  s.cfg.LiveModel,
		Voice:  s.cfg.LiveVoice,
		System: voiceSystemInstruction(p),
	})
	if err != nil {
		s.logger.Error("voice session dial failed", "error", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "upstream unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(voiceWriteTimeout))
		return
	}
	defer stream.Close()

	var writeMu sync.Mutex
	writeBinary := func(data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(voiceWriteTimeout))
		return conn.WriteMessage(websocket.BinaryMessage, data)
	}
	writeControl := func(kind string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(voiceWriteTimeout))
		return conn.WriteJSON(map[string]string{"type": kind})
	}

	go func() {
		for event := range stream.Events() {
			var err error
			switch e := event.(type) {
			case voice.AudioChunkEvent:
				err = writeBinary(e.PCM)
			case voice.InterruptedEvent:
				err = writeControl("interrupted")
			case voice.TurnCompleteEvent:
				err = writeControl("turnComplete")
			}
			if err != nil {
				break
			}
		}
		// Upstream is gone; force the client read loop to unwind.
		_ = conn.Close()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("voice client disconnected", "error", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if err := stream.SendAudio(data); err != nil {
			s.logger.Warn("forward client audio", "error", err)
			return
		}
	}
}

func (s *Server) checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.CORSAllowedOrigins) == 0 {
		return true
	}
	for _, o := range s.cfg.CORSAllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func voiceSystemInstruction(p *profile.BusinessProfile) string {
	if p == nil {
		return "You are a friendly voice assistant helping a customer describe a home-service job so they can get a cost estimate."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the voice assistant for %s, a %s business.", p.Name, p.Industry)
	if p.AgentInstructions != "" {
		sb.WriteString("\n")
		sb.WriteString(p.AgentInstructions)
	}
	if p.KnowledgeBase != "" {
		sb.WriteString("\nBusiness knowledge:\n")
		sb.WriteString(p.KnowledgeBase)
	}
	return sb.String()
}
