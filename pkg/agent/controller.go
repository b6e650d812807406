package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-nomad/internal/log"
	"github.com/teslashibe/go-nomad/pkg/catalog"
	"github.com/teslashibe/go-nomad/pkg/oracle"
	"github.com/teslashibe/go-nomad/pkg/payment"
	"github.com/teslashibe/go-nomad/pkg/pricefeed"
	"github.com/teslashibe/go-nomad/pkg/protocol"
	"github.com/teslashibe/go-nomad/pkg/tts"
)

// DefaultQueueSize bounds the utterance backlog per session.
const DefaultQueueSize = 16

// Canned replies for turns the oracle cannot help with.
const (
	Greeting = "Hey! I'm Nomad, your travel concierge. Where are we headed?"

	fallbackReply       = "Okay."
	apologyReply        = "Sorry, I'm having trouble thinking right now. Could you say that again?"
	confirmReply        = "Great, please approve the transaction in your wallet."
	cancelReply         = "No problem, I've cancelled that payment."
	nothingPendingReply = "There's no payment waiting on you right now."
	feedDownReply       = "I couldn't fetch the current exchange rate, so I haven't set up that payment. Want me to try again?"
)

// ErrQueueFull is returned by Submit when the utterance backlog is full.
var ErrQueueFull = errors.New("agent: utterance queue full")

// Controller runs the conversation for one room session.
//
// Utterances are processed strictly one at a time on a single goroutine:
// an utterance finalized mid-turn queues behind the current turn rather
// than cancelling it. All state transitions happen on that goroutine;
// other goroutines only read, via Machine and Itinerary.
type Controller struct {
	planner   *Planner
	gateway   catalog.Gateway
	feed      pricefeed.Feed
	synth     tts.Synthesizer
	broadcast *Broadcaster

	convo   *Context
	machine *payment.Machine

	// itinerary is mutated only by the turn loop; the mutex lets the
	// transport's status surface read it from other goroutines.
	itinMu    sync.RWMutex
	itinerary []protocol.ItineraryItem

	queue chan event
}

// event is one unit of work for the turn loop. Session lifecycle rides
// the same queue as utterances so state mutation stays on one goroutine.
type event struct {
	session   string // SessionStart or SessionEnd, empty for utterances
	utterance protocol.UtteranceData
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithQueueSize sets the utterance backlog bound.
func WithQueueSize(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.queue = make(chan event, n)
		}
	}
}

// WithSystemPrompt overrides the default persona.
func WithSystemPrompt(prompt string) ControllerOption {
	return func(c *Controller) { c.convo = NewContext(prompt) }
}

// NewController wires the turn loop to its collaborators.
func NewController(o oracle.Oracle, gateway catalog.Gateway, feed pricefeed.Feed, synth tts.Synthesizer, broadcast *Broadcaster, opts ...ControllerOption) *Controller {
	c := &Controller{
		planner:   NewPlanner(o),
		gateway:   gateway,
		feed:      feed,
		synth:     synth,
		broadcast: broadcast,
		convo:     NewContext(SystemPrompt),
		machine:   payment.NewMachine(),
		queue:     make(chan event, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit queues one finalized utterance for processing. It never blocks;
// when the backlog is full the utterance is dropped with ErrQueueFull so
// the transport can surface the overload.
func (c *Controller) Submit(u protocol.UtteranceData) error {
	select {
	case c.queue <- event{utterance: u}:
		return nil
	default:
		log.Warn("utterance dropped, queue full", "speaker", u.Speaker)
		return ErrQueueFull
	}
}

// SubmitSession queues a session lifecycle event (SessionStart or
// SessionEnd from the protocol package) behind any pending utterances.
func (c *Controller) SubmitSession(evt string) error {
	select {
	case c.queue <- event{session: evt}:
		return nil
	default:
		log.Warn("session event dropped, queue full", "event", evt)
		return ErrQueueFull
	}
}

// Run processes queued events until ctx is cancelled. It must be the
// only goroutine calling HandleUtterance, StartSession, or EndSession
// once started.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.queue:
			switch ev.session {
			case protocol.SessionStart:
				c.StartSession(ctx)
			case protocol.SessionEnd:
				c.EndSession()
			default:
				c.HandleUtterance(ctx, ev.utterance)
			}
		}
	}
}

// StartSession resets conversation state and greets the room.
func (c *Controller) StartSession(ctx context.Context) {
	c.convo.Reset()
	c.machine.Reset()
	c.setItinerary(nil)
	c.speak(ctx, Greeting)
}

// EndSession clears conversation state. A proposed but unconfirmed
// payment dies with the session.
func (c *Controller) EndSession() {
	c.convo.Reset()
	c.machine.Reset()
	c.setItinerary(nil)
	log.Info("session ended", "context_entries", c.convo.Len())
}

// Machine exposes the payment state for the transport's status surface.
func (c *Controller) Machine() *payment.Machine {
	return c.machine
}

// HandleUtterance runs one complete turn: plan, dispatch, broadcast,
// reply. Exactly one spoken reply is emitted per non-empty utterance.
// All failures end the turn with a spoken explanation; nothing
// propagates to the caller.
func (c *Controller) HandleUtterance(ctx context.Context, u protocol.UtteranceData) {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		log.Debug("dropped empty utterance", "speaker", u.Speaker)
		return
	}

	c.broadcast.PublishAgentState(protocol.StateThinking, "", "")
	c.convo.AddUtterance(u.Speaker, text)

	// While an offer awaits confirmation, a plain yes/no settles the
	// matter without a round trip to the oracle.
	if c.machine.Status() == payment.StatusProposed {
		switch DetectPaymentIntent(text) {
		case IntentConfirm:
			c.speak(ctx, c.confirmPayment())
			return
		case IntentCancel:
			c.speak(ctx, c.cancelPayment())
			return
		}
	}

	plan, err := c.planner.Plan(ctx, c.convo)
	if err != nil {
		log.Error("turn planning failed", "error", err)
		c.speak(ctx, apologyReply)
		return
	}

	reply := c.executePlan(ctx, plan)
	if reply == "" {
		reply = fallbackReply
	}
	c.speak(ctx, reply)
}

// executePlan dispatches the validated calls, folds results into the
// conversation, drives the payment machine, and returns the reply text.
func (c *Controller) executePlan(ctx context.Context, plan *Plan) string {
	if len(plan.Calls) == 0 && len(plan.Intents) == 0 {
		return plan.Reply
	}

	c.convo.AddToolCalls(plan.Raw)

	// Independent catalog calls within one turn run concurrently; the
	// turn still waits for all of them before anything is spoken.
	results := make([]catalog.Result, len(plan.Calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range plan.Calls {
		i, call := i, call
		c.broadcast.PublishAgentState(protocol.StateThinking, "", string(call.Request.Tool))
		g.Go(func() error {
			results[i] = c.gateway.Invoke(gctx, call.Request)
			return nil
		})
	}
	_ = g.Wait()

	// Fold results in proposal order so broadcasts track generation order.
	var directReply string
	for i, result := range results {
		c.handleResult(ctx, plan.Calls[i], result, &directReply)
	}
	for _, intent := range plan.Intents {
		c.handleIntent(intent, &directReply)
	}
	if directReply != "" {
		return directReply
	}

	// With tool results in context, ask the oracle to put the outcome
	// into words.
	composed, err := c.planner.Compose(ctx, c.convo)
	if err != nil {
		log.Warn("reply composition failed", "error", err)
		return plan.Reply
	}
	if composed == "" {
		return plan.Reply
	}
	return composed
}

// handleResult records one gateway result and emits its side effects.
func (c *Controller) handleResult(ctx context.Context, call PlannedCall, result catalog.Result, directReply *string) {
	if !result.OK {
		log.Warn("tool call failed", "tool", result.Tool, "error", result.Error)
		c.convo.AddToolResult(call.CallID, string(result.Tool), "ERROR: "+result.Error)
		return
	}

	switch result.Tool {
	case catalog.ToolSearchRestaurants, catalog.ToolGetActivities, catalog.ToolSearchHotels:
		var search catalog.SearchResult
		if err := result.Decode(&search); err != nil {
			c.convo.AddToolResult(call.CallID, string(result.Tool), "ERROR: malformed result")
			return
		}
		c.broadcast.PublishMapUpdate(string(result.Tool), search)
		c.convo.AddToolResult(call.CallID, string(result.Tool), string(result.Payload))

	case catalog.ToolUpdateMap:
		var route catalog.RouteResult
		if err := result.Decode(&route); err != nil {
			c.convo.AddToolResult(call.CallID, string(result.Tool), "ERROR: malformed result")
			return
		}
		c.broadcast.PublishRoute(route)
		c.convo.AddToolResult(call.CallID, string(result.Tool), string(result.Payload))

	case catalog.ToolProposePayment:
		c.proposePayment(ctx, call, result, directReply)

	default:
		c.convo.AddToolResult(call.CallID, string(result.Tool), string(result.Payload))
	}
}

// proposePayment converts the quote at the current rate and arms the
// confirmation machine. Nothing is broadcast here; the payment event
// exists only after a spoken confirmation settles the offer.
func (c *Controller) proposePayment(ctx context.Context, call PlannedCall, result catalog.Result, directReply *string) {
	var quote catalog.PaymentQuote
	if err := result.Decode(&quote); err != nil {
		c.convo.AddToolResult(call.CallID, string(result.Tool), "ERROR: malformed quote")
		return
	}

	rate, err := c.feed.Rate(ctx, "SOL", "USD")
	if err != nil {
		log.Error("price feed failed, payment not proposed", "error", err)
		c.convo.AddToolResult(call.CallID, string(result.Tool),
			"ERROR: exchange rate unavailable, payment not proposed")
		*directReply = feedDownReply
		return
	}

	offer, err := c.machine.Propose(quote.AmountUSD, rate, quote.Recipient, quote.Description)
	if err != nil {
		c.convo.AddToolResult(call.CallID, string(result.Tool), "ERROR: "+err.Error())
		return
	}

	c.convo.AddToolResult(call.CallID, string(result.Tool), fmt.Sprintf(
		`{"status":"pending_confirmation","amount_usd":%.2f,"amount_sol":%.4f,"recipient":%q}`,
		offer.AmountUSD, offer.AmountSOL, offer.Recipient))
}

// handleIntent executes one local intent.
func (c *Controller) handleIntent(intent PlannedIntent, directReply *string) {
	switch intent.Name {
	case IntentConfirmPayment:
		reply := c.confirmPayment()
		c.convo.AddToolResult(intent.CallID, intent.Name, reply)
		*directReply = reply

	case IntentCancelPayment:
		reply := c.cancelPayment()
		c.convo.AddToolResult(intent.CallID, intent.Name, reply)
		*directReply = reply

	case IntentAddToItinerary:
		item := protocol.ItineraryItem{
			ID:   uuid.NewString(),
			Name: stringArg(intent.Args, "item_name"),
			Kind: stringArg(intent.Args, "item_type"),
		}
		if cost, ok := intent.Args["estimated_cost"].(float64); ok {
			item.EstimatedCost = cost
			item.CostLabel = fmt.Sprintf("$%.0f", cost)
		}
		if loc, ok := intent.Args["location"].(string); ok {
			item.Location = loc
		}
		c.setItinerary(append(c.Itinerary(), item))
		c.broadcast.PublishItineraryAdd(item)
		c.convo.AddToolResult(intent.CallID, intent.Name, "added "+item.Name)

	case IntentRemoveFromItinerary:
		name := stringArg(intent.Args, "item_name")
		var kept []protocol.ItineraryItem
		for _, item := range c.Itinerary() {
			if !strings.EqualFold(item.Name, name) {
				kept = append(kept, item)
			}
		}
		c.setItinerary(kept)
		c.broadcast.PublishItineraryRemove(name)
		c.convo.AddToolResult(intent.CallID, intent.Name, "removed "+name)

	case IntentClearItinerary:
		c.setItinerary(nil)
		c.broadcast.PublishItineraryClear()
		c.convo.AddToolResult(intent.CallID, intent.Name, "itinerary cleared")
	}
}

// confirmPayment drives Proposed → Confirmed → Settled and hands the
// unsigned transaction to the room.
func (c *Controller) confirmPayment() string {
	if _, err := c.machine.Confirm(); err != nil {
		log.Warn("stale payment confirmation", "error", err)
		return nothingPendingReply
	}
	settlement, err := c.machine.Settle()
	if err != nil {
		log.Error("settle after confirm failed", "error", err)
		return nothingPendingReply
	}
	c.broadcast.PublishPayment(settlement)
	return confirmReply
}

func (c *Controller) cancelPayment() string {
	if _, err := c.machine.Reject(); err != nil {
		log.Warn("stale payment cancellation", "error", err)
		return nothingPendingReply
	}
	return cancelReply
}

// speak synthesizes and publishes exactly one reply, then records it.
// A synthesis failure degrades to a text-only speak event.
func (c *Controller) speak(ctx context.Context, text string) {
	c.broadcast.PublishAgentState(protocol.StateSpeaking, text, "")

	audio, err := c.synth.Speak(ctx, text)
	if err != nil {
		log.Warn("synthesis failed, sending text only", "error", err)
		audio = nil
	}
	c.broadcast.PublishSpeak(text, audio)
	c.convo.AddReply(text)

	c.broadcast.PublishAgentState(protocol.StateListening, "", "")
}

// Itinerary returns a copy of the current trip items.
func (c *Controller) Itinerary() []protocol.ItineraryItem {
	c.itinMu.RLock()
	defer c.itinMu.RUnlock()
	out := make([]protocol.ItineraryItem, len(c.itinerary))
	copy(out, c.itinerary)
	return out
}

func (c *Controller) setItinerary(items []protocol.ItineraryItem) {
	c.itinMu.Lock()
	c.itinerary = items
	c.itinMu.Unlock()
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
