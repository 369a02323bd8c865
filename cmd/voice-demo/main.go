// Package main is a terminal demo for a duplex voice session: speak into
// the microphone and the model answers through the speakers.
//
// Usage:
//
//	go run ./cmd/voice-demo
//
// Environment variables:
//
//	GEMINI_API_KEY - required
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"
	"github.com/joho/godotenv"

	"github.com/athompson0066/Roofing-Estimator/pkg/voice"
	"github.com/athompson0066/Roofing-Estimator/pkg/voice/liveapi"
)

func main() {
	_ = godotenv.Load()

	model := flag.String("model", "gemini-2.5-flash-native-audio-preview-09-2025", "live model")
	voiceName := flag.String("voice", "Puck", "prebuilt voice name")
	system := flag.String("system", "You are a friendly assistant for a home-services business. Keep answers short and conversational.", "system instruction")
	flag.Parse()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime
	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		log.Fatalf("init audio context: %v", err)
	}
	defer malgoCtx.Uninit()

	playbackCfg := voice.PlaybackConfig()
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   playbackCfg.SampleRate,
		ChannelCount: playbackCfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   playbackCfg.BytesForDurationMs(100),
	})
	if err != nil {
		log.Fatalf("init speaker: %v", err)
	}
	<-ready

	mic := newMicSource(malgoCtx.Context, voice.CaptureConfig())
	speaker := newSpeakerSink(otoCtx, playbackCfg)
	defer speaker.Close()

	dialer := liveapi.NewDialer(apiKey, logger)
	controller := voice.NewController(dialer, mic, speaker, voice.SessionConfig{
		Model:  *model,
		System: *system,
		Voice:  *voiceName,
	}, logger, voice.WithStateListener(func(s voice.State) {
		fmt.Printf("session: %s\n", s)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := controller.Start(ctx); err != nil {
		if errors.Is(err, voice.ErrPermissionDenied) {
			log.Fatal("microphone access denied")
		}
		log.Fatalf("start session: %v", err)
	}

	fmt.Println("Speak into the microphone. Ctrl-C to quit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nshutting down")
	case <-controller.Done():
		fmt.Println("session ended")
	}
	controller.Stop()
}
