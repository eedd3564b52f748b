// Package rosbridge speaks the rosbridge v2 JSON protocol over a
// websocket: advertise/publish/subscribe ops carrying std_msgs/String
// messages. It is a one-way, best-effort channel: no retry, no queue,
// no delivery acknowledgement.
package rosbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// StringMessageType is the ROS message type carried on every topic this
// system uses.
const StringMessageType = "std_msgs/String"

// ErrNotConnected is returned when a publish is attempted without a live
// connection; nothing is queued.
var ErrNotConnected = errors.New("로봇과 연결되지 않았습니다! (Rosbridge 확인 필요)")

// frame is a rosbridge protocol frame.
type frame struct {
	Op    string          `json:"op"`
	Topic string          `json:"topic,omitempty"`
	Type  string          `json:"type,omitempty"`
	Msg   json.RawMessage `json:"msg,omitempty"`
}

// stringMsg is the wire shape of std_msgs/String.
type stringMsg struct {
	Data string `json:"data"`
}

// Client is a single rosbridge connection. Its lifetime mirrors the
// owning component: dialed on construction, closed on teardown. The
// connected flag follows the open/error/close events of the socket.
type Client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	connected atomic.Bool

	mu       sync.Mutex
	handlers map[string]func(data string)

	closeOnce sync.Once
}

// Dial opens a rosbridge connection to url (e.g. ws://localhost:9090)
// and starts the read loop.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial rosbridge %s: %w", url, err)
	}
	c := &Client{
		conn:     conn,
		handlers: map[string]func(string){},
	}
	c.connected.Store(true)
	go c.readLoop()
	log.Printf("rosbridge: connected to %s", url)
	return c, nil
}

// Connected reports whether the socket is live.
func (c *Client) Connected() bool { return c.connected.Load() }

// Advertise announces a topic before publishing on it.
func (c *Client) Advertise(topic string) error {
	return c.write(frame{Op: "advertise", Topic: topic, Type: StringMessageType})
}

// Publish sends a std_msgs/String whose data field is the given payload.
// Refused outright when not connected.
func (c *Client) Publish(topic, data string) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	msg, err := json.Marshal(stringMsg{Data: data})
	if err != nil {
		return err
	}
	return c.write(frame{Op: "publish", Topic: topic, Msg: msg})
}

// PublishJSON marshals payload and publishes it as the string data of a
// std_msgs/String, the encoding every consumer in this system expects.
func (c *Client) PublishJSON(topic string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return c.Publish(topic, string(b))
}

// Subscribe registers a handler for incoming std_msgs/String publishes
// on a topic and sends the subscribe op.
func (c *Client) Subscribe(topic string, fn func(data string)) error {
	c.mu.Lock()
	c.handlers[topic] = fn
	c.mu.Unlock()
	return c.write(frame{Op: "subscribe", Topic: topic, Type: StringMessageType})
}

// Close tears the connection down; the connected flag drops immediately.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connected.Store(false)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) write(f frame) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		c.connected.Store(false)
		return fmt.Errorf("rosbridge write: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer c.connected.Store(false)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("rosbridge: connection lost: %v", err)
			}
			return
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			log.Printf("rosbridge: bad frame: %v", err)
			continue
		}
		if f.Op != "publish" {
			continue
		}
		c.mu.Lock()
		fn := c.handlers[f.Topic]
		c.mu.Unlock()
		if fn == nil {
			continue
		}
		var msg stringMsg
		if err := json.Unmarshal(f.Msg, &msg); err != nil {
			log.Printf("rosbridge: bad %s message: %v", f.Topic, err)
			continue
		}
		fn(msg.Data)
	}
}
