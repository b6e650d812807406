package agent

import (
	"encoding/json"

	"github.com/teslashibe/go-nomad/internal/log"
	"github.com/teslashibe/go-nomad/pkg/catalog"
	"github.com/teslashibe/go-nomad/pkg/payment"
	"github.com/teslashibe/go-nomad/pkg/protocol"
	"github.com/teslashibe/go-nomad/pkg/tts"
)

// Publisher delivers an encoded message to room observers.
// *hub.Hub satisfies this.
type Publisher interface {
	Broadcast(data []byte)
}

// Broadcaster publishes side-channel events to room observers. Delivery
// is best-effort and at-most-once; a room with zero observers is fine.
// All methods are called from the controller's turn goroutine, so events
// reach the hub in generation order.
//
// PublishPayment takes a payment.Settlement, which only the state
// machine's Settle transition can produce. An unconfirmed payment
// broadcast is therefore unrepresentable, not merely checked.
type Broadcaster struct {
	hub Publisher
}

// NewBroadcaster creates a broadcaster over the observer hub.
func NewBroadcaster(h Publisher) *Broadcaster {
	return &Broadcaster{hub: h}
}

// PublishMapUpdate pushes search results with their map center.
func (b *Broadcaster) PublishMapUpdate(tool string, result catalog.SearchResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Error("marshal map update", "error", err)
		return
	}
	msg, err := protocol.NewMapUpdateMessage(tool, protocol.Coordinates(result.Center), json.RawMessage(payload))
	if err != nil {
		log.Error("build map update", "error", err)
		return
	}
	b.send(msg)
}

// PublishRoute pushes a computed route.
func (b *Broadcaster) PublishRoute(route catalog.RouteResult) {
	waypoints := make([]protocol.Waypoint, len(route.Waypoints))
	for i, w := range route.Waypoints {
		waypoints[i] = protocol.Waypoint{
			Location:    w.Location,
			Coordinates: protocol.Coordinates(w.Coordinates),
		}
	}
	path := make([]protocol.Coordinates, len(route.Path))
	for i, p := range route.Path {
		path[i] = protocol.Coordinates(p)
	}
	var bounds *protocol.Bounds
	if route.Bounds != nil {
		bounds = &protocol.Bounds{
			North: route.Bounds.North,
			South: route.Bounds.South,
			East:  route.Bounds.East,
			West:  route.Bounds.West,
		}
	}

	msg, err := protocol.NewRouteUpdateMessage(route.RouteType, waypoints, path, bounds)
	if err != nil {
		log.Error("build route update", "error", err)
		return
	}
	b.send(msg)
}

// PublishPayment pushes the unsigned transaction handoff for a settled
// offer. The settlement proof is the only accepted input.
func (b *Broadcaster) PublishPayment(s payment.Settlement) {
	offer := s.Offer()
	tx, err := json.Marshal(payment.BuildTransaction(s))
	if err != nil {
		log.Error("marshal payment transaction", "error", err)
		return
	}

	msg, err := protocol.NewMessage(protocol.TypePaymentOffer, protocol.PaymentOfferData{
		OfferID:     offer.ID,
		AmountUSD:   offer.AmountUSD,
		AmountSOL:   offer.AmountSOL,
		Recipient:   offer.Recipient,
		Description: offer.Description,
		Transaction: tx,
	})
	if err != nil {
		log.Error("build payment offer", "error", err)
		return
	}
	b.send(msg)
}

// PublishItineraryAdd pushes one itinerary addition.
func (b *Broadcaster) PublishItineraryAdd(item protocol.ItineraryItem) {
	msg, err := protocol.NewItineraryAddMessage(item)
	if err != nil {
		log.Error("build itinerary add", "error", err)
		return
	}
	b.send(msg)
}

// PublishItineraryRemove pushes one itinerary removal by name.
func (b *Broadcaster) PublishItineraryRemove(name string) {
	msg, err := protocol.NewItineraryRemoveMessage(name)
	if err != nil {
		log.Error("build itinerary remove", "error", err)
		return
	}
	b.send(msg)
}

// PublishItineraryClear pushes an itinerary clear.
func (b *Broadcaster) PublishItineraryClear() {
	msg, err := protocol.NewItineraryClearMessage()
	if err != nil {
		log.Error("build itinerary clear", "error", err)
		return
	}
	b.send(msg)
}

// PublishAgentState reports what the agent is doing.
func (b *Broadcaster) PublishAgentState(state, detail, toolName string) {
	msg, err := protocol.NewAgentStateMessage(state, detail, toolName)
	if err != nil {
		log.Error("build agent state", "error", err)
		return
	}
	b.send(msg)
}

// PublishSpeak pushes the spoken reply, with audio when synthesis
// succeeded and text-only otherwise.
func (b *Broadcaster) PublishSpeak(text string, audio *tts.Audio) {
	var (
		data       []byte
		format     string
		sampleRate int
	)
	if audio != nil {
		data = audio.Data
		format = string(audio.Format.Encoding)
		sampleRate = audio.Format.SampleRate
	}
	msg, err := protocol.NewSpeakMessage(text, data, format, sampleRate)
	if err != nil {
		log.Error("build speak message", "error", err)
		return
	}
	b.send(msg)
}

func (b *Broadcaster) send(msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		log.Error("encode broadcast", "type", msg.Type, "error", err)
		return
	}
	b.hub.Broadcast(data)
}
