package protocol

import (
	"encoding/base64"
	"encoding/json"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewUtteranceMessage creates an utterance message
func NewUtteranceMessage(id, speaker, text string, final bool) (*Message, error) {
	return NewMessage(TypeUtterance, UtteranceData{
		ID:      id,
		Speaker: speaker,
		Text:    text,
		Final:   final,
	})
}

// NewSessionMessage creates a session lifecycle message
func NewSessionMessage(event, room string) (*Message, error) {
	return NewMessage(TypeSession, SessionData{
		Event: event,
		Room:  room,
	})
}

// NewMapUpdateMessage creates a map update message from a tool result payload
func NewMapUpdateMessage(tool string, center Coordinates, payload interface{}) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return NewMessage(TypeMapUpdate, MapUpdateData{
		Center:  center,
		Payload: raw,
		Tool:    tool,
	})
}

// NewRouteUpdateMessage creates a route update message
func NewRouteUpdateMessage(routeType string, waypoints []Waypoint, path []Coordinates, bounds *Bounds) (*Message, error) {
	return NewMessage(TypeRouteUpdate, RouteUpdateData{
		RouteType: routeType,
		Waypoints: waypoints,
		Path:      path,
		Bounds:    bounds,
	})
}

// NewItineraryAddMessage creates an itinerary add message
func NewItineraryAddMessage(item ItineraryItem) (*Message, error) {
	return NewMessage(TypeItinerary, ItineraryData{
		Op:   ItineraryAdd,
		Item: &item,
	})
}

// NewItineraryRemoveMessage creates an itinerary remove message
func NewItineraryRemoveMessage(name string) (*Message, error) {
	return NewMessage(TypeItinerary, ItineraryData{
		Op:   ItineraryRemove,
		Name: name,
	})
}

// NewItineraryClearMessage creates an itinerary clear message
func NewItineraryClearMessage() (*Message, error) {
	return NewMessage(TypeItinerary, ItineraryData{
		Op: ItineraryClear,
	})
}

// NewAgentStateMessage creates an agent state message
func NewAgentStateMessage(state, detail, toolName string) (*Message, error) {
	return NewMessage(TypeAgentState, AgentStateData{
		State:    state,
		Detail:   detail,
		ToolName: toolName,
	})
}

// NewSpeakMessage creates a speak message with optional audio data
func NewSpeakMessage(text string, audio []byte, format string, sampleRate int) (*Message, error) {
	data := SpeakData{Text: text}
	if len(audio) > 0 {
		data.Audio = base64.StdEncoding.EncodeToString(audio)
		data.Format = format
		data.SampleRate = sampleRate
	}
	return NewMessage(TypeSpeak, data)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetUtteranceData extracts utterance data from a message
func (m *Message) GetUtteranceData() (*UtteranceData, error) {
	var data UtteranceData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSessionData extracts session data from a message
func (m *Message) GetSessionData() (*SessionData, error) {
	var data SessionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMapUpdateData extracts map update data from a message
func (m *Message) GetMapUpdateData() (*MapUpdateData, error) {
	var data MapUpdateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetRouteUpdateData extracts route update data from a message
func (m *Message) GetRouteUpdateData() (*RouteUpdateData, error) {
	var data RouteUpdateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPaymentOfferData extracts payment offer data from a message
func (m *Message) GetPaymentOfferData() (*PaymentOfferData, error) {
	var data PaymentOfferData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetItineraryData extracts itinerary data from a message
func (m *Message) GetItineraryData() (*ItineraryData, error) {
	var data ItineraryData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAgentStateData extracts agent state data from a message
func (m *Message) GetAgentStateData() (*AgentStateData, error) {
	var data AgentStateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSpeakData extracts speak data from a message
func (m *Message) GetSpeakData() (*SpeakData, error) {
	var data SpeakData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodeAudio decodes the base64 audio data
func (s *SpeakData) DecodeAudio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(s.Audio)
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
