// Package catalog provides the tool gateway for the concierge agent.
//
// The gateway exposes a fixed set of named, schema-validated travel
// operations (restaurant search, activity lookup, hotel search, route
// computation, payment quote) over a synchronous request/response
// interface. Search operations are stateless and idempotent; repeating an
// identical request yields a semantically equivalent result.
//
// Arguments are validated against each tool's declared JSON schema before
// any network call. Malformed input is rejected locally. Transport
// failures and timeouts are folded into the Result, never raised to the
// caller.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
)

// Common errors returned by the catalog package.
var (
	ErrUnknownTool = errors.New("catalog: unknown tool")
)

// ToolName identifies one of the fixed gateway operations.
type ToolName string

const (
	// ToolSearchRestaurants searches for restaurants in a location.
	ToolSearchRestaurants ToolName = "search_restaurants"

	// ToolGetActivities looks up top-rated activities and attractions.
	ToolGetActivities ToolName = "get_activities"

	// ToolSearchHotels searches for hotels and accommodations.
	ToolSearchHotels ToolName = "search_hotels"

	// ToolUpdateMap computes a route through an ordered waypoint sequence.
	ToolUpdateMap ToolName = "update_map"

	// ToolProposePayment quotes a booking payment against the vendor wallet.
	ToolProposePayment ToolName = "propose_payment"
)

// Names returns the fixed tool set in a stable order.
func Names() []ToolName {
	return []ToolName{
		ToolSearchRestaurants,
		ToolGetActivities,
		ToolSearchHotels,
		ToolUpdateMap,
		ToolProposePayment,
	}
}

// Known reports whether name is in the fixed tool set.
func Known(name string) bool {
	_, ok := lookupDefinition(ToolName(name))
	return ok
}

// Request is one validated tool invocation.
type Request struct {
	// ID uniquely identifies this call for logging and result matching.
	ID string `json:"id"`

	// Tool is the operation to invoke. Must be in the fixed set.
	Tool ToolName `json:"tool"`

	// Args are the parsed arguments, keyed by parameter name.
	Args map[string]any `json:"args"`
}

// Result is the outcome of one tool invocation.
// OK is false on validation failure, transport failure, or timeout;
// Error carries the detail. Payload is the tool-specific response body.
type Result struct {
	ID      string          `json:"id"`
	Tool    ToolName        `json:"tool"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Failure creates a failed Result for a request.
func Failure(req Request, detail string) Result {
	return Result{ID: req.ID, Tool: req.Tool, OK: false, Error: detail}
}

// Success creates a successful Result carrying a payload.
func Success(req Request, payload json.RawMessage) Result {
	return Result{ID: req.ID, Tool: req.Tool, OK: true, Payload: payload}
}

// Decode unmarshals the result payload into the provided struct.
func (r Result) Decode(v interface{}) error {
	return json.Unmarshal(r.Payload, v)
}

// Gateway dispatches validated tool requests to the catalog service.
// Implementations never return a Go error: every failure mode is expressed
// in the Result so a tool failure cannot abort a conversation turn.
type Gateway interface {
	Invoke(ctx context.Context, req Request) Result
}

// =============================================================================
// Tool result payloads
// =============================================================================

// Place is one restaurant, hotel, or activity result.
type Place struct {
	Name        string     `json:"name"`
	Rating      float64    `json:"rating"`
	PriceTier   string     `json:"price,omitempty"` // $, $$, $$$, $$$$
	Address     string     `json:"address"`
	Coordinates [2]float64 `json:"coordinates"`
	URL         string     `json:"url,omitempty"`

	// Cost estimates populated by the catalog service
	EstimatedCost  int    `json:"estimated_cost,omitempty"` // USD per person or per night
	EstimatedTotal int    `json:"estimated_total,omitempty"`
	CostLabel      string `json:"cost_label,omitempty"` // e.g. "$55/person", "$180/night"

	// Hotel-specific
	Amenities []string `json:"amenities,omitempty"`

	// Activity-specific
	Kind string `json:"kind,omitempty"` // Attraction, Museum, Viewpoint
}

// SearchResult is the payload for restaurant, activity, and hotel searches.
type SearchResult struct {
	Location string     `json:"location"`
	Center   [2]float64 `json:"coordinates"` // Map center for the location
	Places   []Place    `json:"places"`
	Count    int        `json:"count"`
}

// RouteWaypoint is a resolved waypoint on a computed route.
type RouteWaypoint struct {
	Location    string     `json:"location"`
	Coordinates [2]float64 `json:"coordinates"`
}

// RouteResult is the payload for update_map.
type RouteResult struct {
	RouteType string          `json:"route_type"`
	Waypoints []RouteWaypoint `json:"waypoints"`
	Path      [][2]float64    `json:"path"`
	Bounds    *RouteBounds    `json:"bounds,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// RouteBounds is the bounding box of a route.
type RouteBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// PaymentQuote is the payload for propose_payment: the amount and vendor
// recipient for a booking. The quote carries no settlement-currency
// conversion; the payment state machine captures the exchange rate when
// the offer is proposed.
type PaymentQuote struct {
	AmountUSD   float64 `json:"amount_usd"`
	Recipient   string  `json:"recipient"` // Vendor Solana public key
	Description string  `json:"description,omitempty"`
}
