// nomad: the voice travel concierge agent.
// Hosts the conversation room, plans tool calls against the catalog
// service, and pushes map, itinerary, and payment events to observers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-nomad/internal/config"
	"github.com/teslashibe/go-nomad/internal/log"
	"github.com/teslashibe/go-nomad/pkg/agent"
	"github.com/teslashibe/go-nomad/pkg/catalog"
	"github.com/teslashibe/go-nomad/pkg/hub"
	"github.com/teslashibe/go-nomad/pkg/oracle"
	"github.com/teslashibe/go-nomad/pkg/pricefeed"
	"github.com/teslashibe/go-nomad/pkg/room"
	"github.com/teslashibe/go-nomad/pkg/tts"
)

var (
	port     = flag.Int("port", config.DefaultAgentPort, "HTTP server port")
	roomName = flag.String("room", room.DefaultRoomName, "room name")
	model    = flag.String("model", "", "chat model override")
	voiceID  = flag.String("voice", "", "ElevenLabs voice ID override")
	logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	if envPort := os.Getenv("PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", port)
	}

	o := buildOracle()
	defer o.Close()

	synth := buildSynthesizer()
	defer synth.Close()

	gateway := catalog.NewHTTPGateway(config.ToolServerURL())
	feed := pricefeed.NewCoinGecko()

	h := hub.New(*roomName)
	go h.Run()

	controller := agent.NewController(o, gateway, feed, synth, agent.NewBroadcaster(h))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go controller.Run(ctx)

	server := room.NewServer(controller, h, room.WithRoomName(*roomName))

	go func() {
		addr := fmt.Sprintf(":%d", *port)
		log.Info("agent starting",
			"addr", addr, "room", *roomName,
			"tool_server", config.ToolServerURL())
		if err := server.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()
	if err := server.Shutdown(5 * time.Second); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func buildOracle() oracle.Oracle {
	opts := []oracle.Option{
		oracle.WithAPIKey(config.EnvRequired("OPENAI_API_KEY")),
	}
	if *model != "" {
		opts = append(opts, oracle.WithModel(*model))
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		opts = append(opts, oracle.WithBaseURL(base))
	}

	client, err := oracle.NewClient(opts...)
	if err != nil {
		log.Error("oracle setup failed", "error", err)
		os.Exit(1)
	}
	return client
}

func buildSynthesizer() tts.Synthesizer {
	key := config.ElevenLabsKey()
	if key == "" {
		log.Warn("ELEVENLABS_API_KEY not set, replies will be text-only")
		return tts.Disabled{}
	}

	opts := []tts.Option{tts.WithAPIKey(key)}
	if *voiceID != "" {
		opts = append(opts, tts.WithVoice(*voiceID))
	}

	synth, err := tts.NewElevenLabs(opts...)
	if err != nil {
		log.Error("synthesizer setup failed", "error", err)
		os.Exit(1)
	}
	return synth
}
