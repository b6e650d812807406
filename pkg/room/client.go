package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-nomad/pkg/protocol"
)

// Client is a Go-side room connection for tooling and tests. Join gives
// a speaking participant; Observe gives a read-only side-channel feed.
type Client struct {
	conn    *websocket.Conn
	speaker string

	writeMu sync.Mutex

	messages chan *protocol.Message
	done     chan struct{}

	closeOnce sync.Once
}

// Join connects as the room's participant. baseURL is the ws:// address
// of the room server, e.g. "ws://localhost:8080".
func Join(ctx context.Context, baseURL, speaker string) (*Client, error) {
	url := fmt.Sprintf("%s/ws/join?speaker=%s", baseURL, speaker)
	return dial(ctx, url, speaker)
}

// Observe connects read-only to the side channel.
func Observe(ctx context.Context, baseURL string) (*Client, error) {
	return dial(ctx, baseURL+"/ws/observe", "")
}

func dial(ctx context.Context, url, speaker string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("room dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("room dial %s: %w", url, err)
	}

	c := &Client{
		conn:     conn,
		speaker:  speaker,
		messages: make(chan *protocol.Message, 64),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Messages returns the inbound message stream. The channel closes when
// the connection drops or Close is called.
func (c *Client) Messages() <-chan *protocol.Message {
	return c.messages
}

// Say sends one finalized utterance to the agent.
func (c *Client) Say(text string) error {
	msg, err := protocol.NewUtteranceMessage(uuid.NewString(), c.speaker, text, true)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// SendSession sends a session lifecycle event.
func (c *Client) SendSession(event string) error {
	msg, err := protocol.NewSessionMessage(event, "")
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Ping sends a ping; the matching pong arrives on Messages.
func (c *Client) Ping() error {
	msg, err := protocol.NewPingMessage(uuid.NewString())
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Close tears down the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop() {
	defer func() {
		close(c.messages)
		close(c.done)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}
		select {
		case c.messages <- msg:
		default:
			// Reader fell behind; favor liveness over completeness.
		}
	}
}
