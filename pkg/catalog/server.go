package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-nomad/internal/log"
)

// Server hosts the catalog service: the fixed tool set behind an HTTP
// API, backed by mock travel data. Each tool is exposed at
// POST /tools/:name with a JSON argument object.
type Server struct {
	app          *fiber.App
	vendorWallet string

	invocations atomic.Int64
	failures    atomic.Int64
}

// NewServer creates the catalog service.
// vendorWallet is the Solana public key payment quotes are addressed to.
func NewServer(vendorWallet string) *Server {
	s := &Server{vendorWallet: vendorWallet}

	app := fiber.New(fiber.Config{
		AppName:               "Nomad Tool Server",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)
	app.Get("/tools", s.handleListTools)
	app.Post("/tools/:name", s.handleInvoke)
	app.Get("/wallet", s.handleWallet)
	app.Get("/metrics", s.handleMetrics)

	s.app = app
	return s
}

// Listen starts the server on the given address and blocks.
func (s *Server) Listen(addr string) error {
	log.Info("catalog server listening", "addr", addr)
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
	return c.JSON(fiber.Map{
		"status": "healthy",
		"tools":  len(Names()),
	})
}

func (s *Server) handleListTools(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tools": Definitions()})
}

func (s *Server) handleWallet(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"wallet": s.vendorWallet})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.SendString(fmt.Sprintf(`# HELP nomad_catalog_tools Registered tool count
# TYPE nomad_catalog_tools gauge
nomad_catalog_tools %d

# HELP nomad_catalog_invocations_total Total tool invocations
# TYPE nomad_catalog_invocations_total counter
nomad_catalog_invocations_total %d

# HELP nomad_catalog_failures_total Total failed tool invocations
# TYPE nomad_catalog_failures_total counter
nomad_catalog_failures_total %d
`, len(Names()), s.invocations.Load(), s.failures.Load()))
}

func (s *Server) handleInvoke(c *fiber.Ctx) error {
	name := ToolName(c.Params("name"))
	if _, ok := lookupDefinition(name); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("unknown tool: %s", name),
		})
	}

	args := map[string]any{}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &args); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid argument body: %v", err),
			})
		}
	}

	if err := ValidateArgs(name, args); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.invocations.Add(1)
	payload, err := s.execute(name, args)
	if err != nil {
		s.failures.Add(1)
		log.Error("tool execution failed", "tool", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Debug("tool executed", "tool", name)
	return c.JSON(payload)
}

// execute dispatches one validated tool call to the mock data layer.
func (s *Server) execute(name ToolName, args map[string]any) (any, error) {
	switch name {
	case ToolSearchRestaurants:
		location := stringArg(args, "location")
		foodType := stringArg(args, "food_type")
		center, _ := Geocode(location)
		places := mockRestaurants(location, foodType)
		return SearchResult{
			Location: location,
			Center:   center,
			Places:   places,
			Count:    len(places),
		}, nil

	case ToolGetActivities:
		location := stringArg(args, "location")
		center, _ := Geocode(location)
		places := mockActivities(location)
		return SearchResult{
			Location: location,
			Center:   center,
			Places:   places,
			Count:    len(places),
		}, nil

	case ToolSearchHotels:
		location := stringArg(args, "location")
		budget := floatArg(args, "budget_usd")
		center, _ := Geocode(location)
		places := mockHotels(location, budget)
		return SearchResult{
			Location: location,
			Center:   center,
			Places:   places,
			Count:    len(places),
		}, nil

	case ToolUpdateMap:
		return s.computeRoute(args)

	case ToolProposePayment:
		amount := floatArg(args, "amount_usd")
		description := stringArg(args, "description")
		return PaymentQuote{
			AmountUSD:   amount,
			Recipient:   s.vendorWallet,
			Description: description,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

func (s *Server) computeRoute(args map[string]any) (any, error) {
	routeType := stringArg(args, "route_type")
	if routeType == "" {
		routeType = "driving"
	}

	raw, _ := args["waypoints"].([]any)
	var waypoints []RouteWaypoint
	var path [][2]float64
	var unknown []string
	for _, w := range raw {
		name, _ := w.(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		coords, known := Geocode(name)
		if !known {
			unknown = append(unknown, name)
		}
		waypoints = append(waypoints, RouteWaypoint{Location: name, Coordinates: coords})
		path = append(path, coords)
	}

	result := RouteResult{
		RouteType: routeType,
		Waypoints: waypoints,
		Path:      path,
		Bounds:    computeBounds(path),
	}
	if len(unknown) > 0 {
		result.Message = fmt.Sprintf("approximate coordinates used for: %s", strings.Join(unknown, ", "))
	}
	return result, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
