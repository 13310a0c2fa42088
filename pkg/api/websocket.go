package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// wsPingInterval is how often an idle connection is pinged.
	wsPingInterval = 30 * time.Second
	// wsWriteWait bounds a single write to the peer.
	wsWriteWait = 10 * time.Second
)

// wsSearchWait bounds how long a search waits for a slow slot.
var wsSearchWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "best", "analyze", "legal", "apply", "evaluate", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
	Code    string      `json:"code,omitempty"`    // Error code if any
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
}

// WebSocket handles WebSocket connections for interactive play and search.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &WSClient{conn: conn, handlers: h, sendChan: make(chan WSResponse, 256)}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(wsWriteWait))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "best":
		c.handleBest(msg)
	case "analyze":
		c.handleAnalyze(msg)
	case "review":
		c.handleReview(msg)
	case "legal":
		c.handleLegal(msg)
	case "apply":
		c.handleApply(msg)
	case "evaluate":
		c.handleEvaluate(msg)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type", Code: "UNKNOWN_TYPE"}
	}
}

// reply sends either the result or the error of an operation.
func (c *WSClient) reply(msg WSMessage, payload interface{}, aerr *apiError) {
	if aerr != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: aerr.msg, Code: aerr.code}
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: payload}
}

func (c *WSClient) decode(msg WSMessage, v interface{}) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload", Code: "INVALID_JSON"}
		return false
	}
	return true
}

func (c *WSClient) handleLegal(msg WSMessage) {
	var req PositionRequest
	if !c.decode(msg, &req) {
		return
	}
	resp, aerr := c.handlers.legal(req)
	c.reply(msg, resp, aerr)
}

func (c *WSClient) handleApply(msg WSMessage) {
	var req ApplyRequest
	if !c.decode(msg, &req) {
		return
	}
	resp, aerr := c.handlers.apply(req)
	c.reply(msg, resp, aerr)
}

func (c *WSClient) handleEvaluate(msg WSMessage) {
	var req PositionRequest
	if !c.decode(msg, &req) {
		return
	}
	resp, aerr := c.handlers.evaluate(req)
	c.reply(msg, resp, aerr)
}

func (c *WSClient) handleBest(msg WSMessage) {
	var req SearchRequest
	if !c.decode(msg, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsSearchWait)
	defer cancel()
	release, aerr := c.handlers.acquireSlow(ctx)
	if aerr != nil {
		c.reply(msg, nil, aerr)
		return
	}
	defer release()

	// The timeout bounds the wait for a slot, not the search or its save
	resp, aerr := c.handlers.best(context.Background(), req)
	c.reply(msg, resp, aerr)
}

func (c *WSClient) handleAnalyze(msg WSMessage) {
	var req SearchRequest
	if !c.decode(msg, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsSearchWait)
	defer cancel()
	release, aerr := c.handlers.acquireSlow(ctx)
	if aerr != nil {
		c.reply(msg, nil, aerr)
		return
	}
	defer release()

	resp, aerr := c.handlers.analyze(req, nil)
	c.reply(msg, resp, aerr)
}

func (c *WSClient) handleReview(msg WSMessage) {
	var req ReviewRequest
	if !c.decode(msg, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsSearchWait)
	defer cancel()
	release, aerr := c.handlers.acquireSlow(ctx)
	if aerr != nil {
		c.reply(msg, nil, aerr)
		return
	}
	defer release()

	resp, aerr := c.handlers.review(req)
	c.reply(msg, resp, aerr)
}
