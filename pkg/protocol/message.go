// Package protocol defines the data-channel message types exchanged between
// the concierge agent, room participants, and map/wallet observers.
// This package is shared between the agent service and frontend clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of data-channel message
type MessageType string

const (
	// Participant → Agent messages
	TypeUtterance MessageType = "utterance" // Finalized user speech
	TypeSession   MessageType = "session"   // Session lifecycle

	// Agent → Observer messages
	TypeMapUpdate    MessageType = "map_update"    // Search results with coordinates
	TypeRouteUpdate  MessageType = "route_update"  // Route path and waypoints
	TypePaymentOffer MessageType = "payment_offer" // Unsigned transaction handoff
	TypeItinerary    MessageType = "itinerary"     // Itinerary add/remove/clear
	TypeAgentState   MessageType = "agent_state"   // Listening/thinking/speaking
	TypeSpeak        MessageType = "speak"         // Spoken reply text + audio

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all data-channel messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Participant → Agent Message Types
// =============================================================================

// UtteranceData contains one finalized unit of recognized speech
type UtteranceData struct {
	Speaker string `json:"speaker"`      // Participant identity
	Text    string `json:"text"`         // Finalized transcript
	Final   bool   `json:"final"`        // True once end-of-speech detected
	ID      string `json:"id,omitempty"` // Unique utterance ID
}

// SessionData contains session lifecycle notifications
type SessionData struct {
	Event string `json:"event"`          // "start" or "end"
	Room  string `json:"room,omitempty"` // Room name
}

// Session lifecycle events.
const (
	SessionStart = "start"
	SessionEnd   = "end"
)

// =============================================================================
// Agent → Observer Message Types
// =============================================================================

// Coordinates is a [lat, lng] pair
type Coordinates [2]float64

// Lat returns the latitude component.
func (c Coordinates) Lat() float64 { return c[0] }

// Lng returns the longitude component.
func (c Coordinates) Lng() float64 { return c[1] }

// MapUpdateData contains search results to pin on the map
type MapUpdateData struct {
	Center  Coordinates     `json:"coordinates"`    // Map center
	Payload json.RawMessage `json:"data,omitempty"` // Tool-specific result payload
	Tool    string          `json:"tool,omitempty"` // Tool that produced the update
}

// Waypoint is a named location on a route
type Waypoint struct {
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
}

// Bounds is the bounding box for a map view
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// RouteUpdateData contains a computed route for the map
type RouteUpdateData struct {
	RouteType string        `json:"route_type"` // driving, walking, transit
	Waypoints []Waypoint    `json:"waypoints"`
	Path      []Coordinates `json:"path"` // Ordered [lat, lng] pairs
	Bounds    *Bounds       `json:"bounds,omitempty"`
}

// PaymentOfferData carries the unsigned transaction handoff.
// The artifact is opaque to observers until the wallet signs it.
type PaymentOfferData struct {
	OfferID     string          `json:"offer_id"`
	AmountUSD   float64         `json:"amount_usd"` // Display amount
	AmountSOL   float64         `json:"amount_sol"` // Settlement amount at captured rate
	Recipient   string          `json:"recipient"`  // Vendor public key
	Description string          `json:"description,omitempty"`
	Transaction json.RawMessage `json:"transaction"` // Unsigned artifact for client signing
}

// Itinerary operations.
const (
	ItineraryAdd    = "add"
	ItineraryRemove = "remove"
	ItineraryClear  = "clear"
)

// ItineraryItem is one entry in the trip itinerary
type ItineraryItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"` // restaurant, hotel, activity
	EstimatedCost float64 `json:"estimated_cost"`
	CostLabel     string  `json:"cost_label,omitempty"`
	Location      string  `json:"location,omitempty"`
}

// ItineraryData contains an itinerary mutation
type ItineraryData struct {
	Op   string         `json:"op"` // add, remove, clear
	Item *ItineraryItem `json:"item,omitempty"`
	Name string         `json:"name,omitempty"` // For remove by name
}

// Agent states.
const (
	StateListening = "listening"
	StateThinking  = "thinking"
	StateSpeaking  = "speaking"
)

// AgentStateData reports what the agent is doing, for frontend display
type AgentStateData struct {
	State    string `json:"state"`
	Detail   string `json:"detail,omitempty"`    // e.g. "Searching restaurants in Oakland..."
	ToolName string `json:"tool_name,omitempty"` // Set while a tool call is in flight
}

// SpeakData contains the agent's spoken reply
type SpeakData struct {
	Text       string `json:"text"`
	Format     string `json:"format,omitempty"`      // "pcm16", "mp3"
	SampleRate int    `json:"sample_rate,omitempty"` // e.g. 24000
	Audio      string `json:"audio,omitempty"`       // base64 encoded, empty if synthesis failed
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
