// Package room hosts the conversation session over websockets. A
// participant joins /ws/join, streams finalized utterances in, and hears
// the agent's replies; map and wallet frontends attach to /ws/observe
// and receive the side-channel broadcasts read-only.
package room

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-nomad/internal/log"
	"github.com/teslashibe/go-nomad/pkg/agent"
	"github.com/teslashibe/go-nomad/pkg/hub"
	"github.com/teslashibe/go-nomad/pkg/protocol"
)

// DefaultRoomName is used when no room name is configured.
const DefaultRoomName = "nomad"

// Server exposes the room over HTTP and websockets.
type Server struct {
	app   *fiber.App
	hub   *hub.Hub
	agent *agent.Controller
	name  string

	sessions   atomic.Int64
	utterances atomic.Int64
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRoomName sets the room name reported on the status surface.
func WithRoomName(name string) ServerOption {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

// NewServer wires the agent controller and broadcast hub to the room's
// HTTP surface. The caller owns running the controller loop and the hub.
func NewServer(controller *agent.Controller, h *hub.Hub, opts ...ServerOption) *Server {
	s := &Server{
		hub:   h,
		agent: controller,
		name:  DefaultRoomName,
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Nomad Room",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)
	app.Get("/status", s.handleStatus)
	app.Get("/itinerary", s.handleItinerary)
	app.Get("/metrics", s.handleMetrics)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/join", websocket.New(s.handleParticipant))
	app.Get("/ws/observe", websocket.New(s.handleObserver))

	s.app = app
	return s
}

// Listen starts the server on the given address and blocks.
func (s *Server) Listen(addr string) error {
	log.Info("room server listening", "addr", addr, "room", s.name)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "room": s.name})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"room":            s.name,
		"observers":       s.hub.ClientCount(),
		"payment_status":  s.agent.Machine().Status(),
		"itinerary_items": len(s.agent.Itinerary()),
	})
}

func (s *Server) handleItinerary(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": s.agent.Itinerary()})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.SendString(fmt.Sprintf(`# HELP nomad_room_observers Connected side-channel observer count
# TYPE nomad_room_observers gauge
nomad_room_observers %d

# HELP nomad_room_sessions_total Total sessions started
# TYPE nomad_room_sessions_total counter
nomad_room_sessions_total %d

# HELP nomad_room_utterances_total Total finalized utterances accepted
# TYPE nomad_room_utterances_total counter
nomad_room_utterances_total %d
`, s.hub.ClientCount(), s.sessions.Load(), s.utterances.Load()))
}

// handleObserver attaches a read-only side-channel connection.
func (s *Server) handleObserver(conn *websocket.Conn) {
	client := hub.NewClient(s.hub, conn)
	client.Run()
}

// handleParticipant attaches the conversational connection. The
// participant receives every broadcast like an observer, and its inbound
// messages drive the agent. The session lives exactly as long as the
// connection.
func (s *Server) handleParticipant(conn *websocket.Conn) {
	speaker := conn.Query("speaker", "traveler")

	client := hub.NewClient(s.hub, conn)
	client.Handler = func(data []byte) {
		s.onParticipantMessage(client, speaker, data)
	}

	if err := s.agent.SubmitSession(protocol.SessionStart); err != nil {
		log.Warn("session start not queued", "error", err)
	}
	s.sessions.Add(1)
	log.Info("participant joined", "room", s.name, "speaker", speaker)

	client.Run()

	if err := s.agent.SubmitSession(protocol.SessionEnd); err != nil {
		log.Warn("session end not queued", "error", err)
	}
	log.Info("participant left", "room", s.name, "speaker", speaker)
}

func (s *Server) onParticipantMessage(client *hub.Client, speaker string, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Warn("unparseable participant message", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeUtterance:
		u, err := msg.GetUtteranceData()
		if err != nil {
			log.Warn("bad utterance payload", "error", err)
			return
		}
		if !u.Final {
			// Interim transcripts are display-only.
			return
		}
		if u.Speaker == "" {
			u.Speaker = speaker
		}
		if err := s.agent.Submit(*u); err != nil {
			log.Warn("utterance not queued", "speaker", u.Speaker, "error", err)
			return
		}
		s.utterances.Add(1)

	case protocol.TypeSession:
		d, err := msg.GetSessionData()
		if err != nil {
			log.Warn("bad session payload", "error", err)
			return
		}
		switch d.Event {
		case protocol.SessionStart, protocol.SessionEnd:
			if err := s.agent.SubmitSession(d.Event); err != nil {
				log.Warn("session event not queued", "event", d.Event, "error", err)
			}
		default:
			log.Warn("unknown session event", "event", d.Event)
		}

	case protocol.TypePing:
		p, err := msg.GetPingData()
		if err != nil {
			return
		}
		pong, err := protocol.NewPongMessage(p.ID, p.Timestamp, time.Now().UnixMilli())
		if err != nil {
			return
		}
		b, err := pong.Bytes()
		if err != nil {
			return
		}
		client.Send(b)

	default:
		log.Debug("ignored participant message", "type", msg.Type)
	}
}
