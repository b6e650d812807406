package room

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/teslashibe/go-nomad/pkg/agent"
	"github.com/teslashibe/go-nomad/pkg/catalog"
	"github.com/teslashibe/go-nomad/pkg/hub"
	"github.com/teslashibe/go-nomad/pkg/oracle"
	"github.com/teslashibe/go-nomad/pkg/pricefeed"
	"github.com/teslashibe/go-nomad/pkg/protocol"
	"github.com/teslashibe/go-nomad/pkg/tts"
)

const messageWait = 5 * time.Second

type roomTest struct {
	server  *Server
	oracle  *oracle.Mock
	gateway *catalog.Spy
	baseURL string
}

func newRoomTest(t *testing.T) *roomTest {
	t.Helper()

	rt := &roomTest{
		oracle:  oracle.NewMock(),
		gateway: catalog.NewSpy(),
	}

	h := hub.New("test-room")
	go h.Run()

	feed := pricefeed.NewStatic(map[string]float64{"SOL/USD": 100.0})
	controller := agent.NewController(rt.oracle, rt.gateway, feed, tts.NewMock(), agent.NewBroadcaster(h))

	ctx, cancel := context.WithCancel(context.Background())
	go controller.Run(ctx)

	rt.server = NewServer(controller, h, WithRoomName("test-room"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		_ = rt.server.App().Listener(ln)
	}()
	rt.baseURL = "ws://" + ln.Addr().String()

	t.Cleanup(func() {
		cancel()
		_ = rt.server.Shutdown(time.Second)
	})
	return rt
}

// waitFor drains the client's stream until a message of the wanted type
// arrives, skipping agent state and other chatter.
func waitFor(t *testing.T, c *Client, want protocol.MessageType) *protocol.Message {
	t.Helper()
	deadline := time.After(messageWait)
	for {
		select {
		case msg, ok := <-c.Messages():
			if !ok {
				t.Fatalf("connection closed while waiting for %s", want)
			}
			if msg.Type == want {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestHealthAndStatus(t *testing.T) {
	rt := newRoomTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := rt.server.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, "/status", nil)
	resp, err = rt.server.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var status struct {
		Room          string `json:"room"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Room != "test-room" {
		t.Errorf("room = %q", status.Room)
	}
	if status.PaymentStatus != "none" {
		t.Errorf("payment_status = %q", status.PaymentStatus)
	}
}

func TestWebsocketUpgradeRequired(t *testing.T) {
	rt := newRoomTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/ws/join", nil)
	resp, err := rt.server.App().Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("plain GET on /ws/join = %d, want %d", resp.StatusCode, http.StatusUpgradeRequired)
	}
}

func TestParticipantHearsGreeting(t *testing.T) {
	rt := newRoomTest(t)

	c, err := Join(context.Background(), rt.baseURL, "alex")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	msg := waitFor(t, c, protocol.TypeSpeak)
	data, err := msg.GetSpeakData()
	if err != nil {
		t.Fatal(err)
	}
	if data.Text != agent.Greeting {
		t.Errorf("greeting = %q", data.Text)
	}
}

func TestUtteranceRoundTrip(t *testing.T) {
	rt := newRoomTest(t)
	rt.oracle.Enqueue(&oracle.Decision{Reply: "Nice to meet you, Alex."})

	c, err := Join(context.Background(), rt.baseURL, "alex")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	waitFor(t, c, protocol.TypeSpeak) // greeting

	if err := c.Say("Hi, I'm Alex"); err != nil {
		t.Fatal(err)
	}

	msg := waitFor(t, c, protocol.TypeSpeak)
	data, err := msg.GetSpeakData()
	if err != nil {
		t.Fatal(err)
	}
	if data.Text != "Nice to meet you, Alex." {
		t.Errorf("reply = %q", data.Text)
	}
}

func TestObserverReceivesSideChannel(t *testing.T) {
	rt := newRoomTest(t)

	payload, _ := json.Marshal(catalog.SearchResult{
		Location: "Lisbon",
		Center:   [2]float64{38.7223, -9.1393},
		Count:    0,
	})
	rt.gateway.Script(catalog.ToolGetActivities, catalog.Result{OK: true, Payload: payload})
	rt.oracle.Enqueue(
		&oracle.Decision{ToolCalls: []oracle.ToolCall{{
			ID: "a1", Name: "get_activities", Arguments: `{"location":"Lisbon"}`,
		}}},
		&oracle.Decision{Reply: "Here's what Lisbon has going on."},
	)

	obs, err := Observe(context.Background(), rt.baseURL)
	if err != nil {
		t.Fatal(err)
	}
	defer obs.Close()

	c, err := Join(context.Background(), rt.baseURL, "alex")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	waitFor(t, c, protocol.TypeSpeak) // greeting

	if err := c.Say("what's happening in Lisbon"); err != nil {
		t.Fatal(err)
	}

	msg := waitFor(t, obs, protocol.TypeMapUpdate)
	data, err := msg.GetMapUpdateData()
	if err != nil {
		t.Fatal(err)
	}
	if data.Center.Lat() != 38.7223 {
		t.Errorf("map center = %v", data.Center)
	}
}

func TestInterimUtteranceIgnored(t *testing.T) {
	rt := newRoomTest(t)
	rt.oracle.Enqueue(&oracle.Decision{Reply: "Got it."})

	c, err := Join(context.Background(), rt.baseURL, "alex")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	waitFor(t, c, protocol.TypeSpeak) // greeting

	interim, err := protocol.NewUtteranceMessage("u1", "alex", "find rest", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.send(interim); err != nil {
		t.Fatal(err)
	}
	if err := c.Say("find restaurants"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, c, protocol.TypeSpeak)

	reqs := rt.oracle.Requests()
	if len(reqs) != 1 {
		t.Fatalf("oracle requests = %d, want 1 (interim must not plan)", len(reqs))
	}
	last := reqs[0].Messages[len(reqs[0].Messages)-1]
	if last.Content != "[alex] find restaurants" {
		t.Errorf("planned utterance = %q", last.Content)
	}
}

func TestPingPong(t *testing.T) {
	rt := newRoomTest(t)

	c, err := Join(context.Background(), rt.baseURL, "alex")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Ping(); err != nil {
		t.Fatal(err)
	}

	msg := waitFor(t, c, protocol.TypePong)
	data, err := msg.GetPongData()
	if err != nil {
		t.Fatal(err)
	}
	if data.ID == "" {
		t.Error("pong missing ping ID")
	}
}

func TestSessionEndViaMessage(t *testing.T) {
	rt := newRoomTest(t)

	c, err := Join(context.Background(), rt.baseURL, "alex")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	waitFor(t, c, protocol.TypeSpeak) // greeting

	if err := c.SendSession(protocol.SessionEnd); err != nil {
		t.Fatal(err)
	}
	// A restart greets again, proving the end was processed in order.
	if err := c.SendSession(protocol.SessionStart); err != nil {
		t.Fatal(err)
	}

	msg := waitFor(t, c, protocol.TypeSpeak)
	data, err := msg.GetSpeakData()
	if err != nil {
		t.Fatal(err)
	}
	if data.Text != agent.Greeting {
		t.Errorf("second greeting = %q", data.Text)
	}
}
