// Package travelserver exposes a running World over a websocket: route
// queries against the road graph and the ticking game clock.
package travelserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"worldforge/internal/travel"
	"worldforge/pkg/worldgen"
)

// Server serves shortestPath queries and time-tick broadcasts for a
// single in-memory World over websocket connections.
type Server struct {
	world    *worldgen.World
	hub      *Hub
	upgrader websocket.Upgrader
	addr     string
	server   *http.Server
}

// Config holds server configuration.
type Config struct {
	Addr  string
	World *worldgen.World
}

// New creates a new travel server bound to world.
func New(cfg Config) (*Server, error) {
	if cfg.World == nil {
		return nil, fmt.Errorf("travelserver: world must not be nil")
	}

	s := &Server{
		world: cfg.World,
		addr:  cfg.Addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.hub = NewHub(s)

	return s, nil
}

// Start runs the HTTP/websocket server and the clock loop. It blocks
// until the server stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	log.Printf("Worldgen travel server")
	log.Printf("  Address: http://localhost%s", s.addr)
	log.Printf("  WebSocket: ws://localhost%s/ws", s.addr)
	log.Printf("  World: seed=%d size=%dx%d", s.world.Seed, s.world.Width, s.world.Height)

	go s.hub.Run()
	go s.runClock()

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// runClock drives the world's time service from the host's wall clock
// and broadcasts the derived date whenever it changes. The core clock
// itself never reads the wall clock; only this network-facing loop
// does, translating real elapsed time into Tick calls.
func (s *Server) runClock() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	lastDay := s.world.CurrentDate()
	for range ticker.C {
		s.world.Tick(time.Now().UnixMilli())

		date := s.world.CurrentDate()
		if date != lastDay {
			lastDay = date
			s.hub.broadcastDate(date)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s.hub, conn)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// Hub maintains the set of connected clients and routes their messages.
type Hub struct {
	server *Server

	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *ClientMessage

	mu sync.RWMutex
}

// ClientMessage wraps an inbound message with its source client.
type ClientMessage struct {
	Client  *Client
	Message *travel.Message
}

// NewHub creates a new Hub bound to server.
func NewHub(server *Server) *Hub {
	return &Hub{
		server:     server,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *ClientMessage, 256),
	}
}

// Run starts the hub's main event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendWelcome(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			go h.handleMessage(msg)
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) { h.register <- client }

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// Broadcast queues an inbound message from client for handling.
func (h *Hub) Broadcast(client *Client, msg *travel.Message) {
	h.broadcast <- &ClientMessage{Client: client, Message: msg}
}

func (h *Hub) sendWelcome(client *Client) {
	w := h.server.world
	msg, err := travel.NewMessage(travel.TypeWelcome, travel.WelcomePayload{
		ServerVersion: "0.1.0",
		Seed:          w.Seed,
		Width:         w.Width,
		Height:        w.Height,
	})
	if err != nil {
		return
	}
	client.Send(msg)
}

func (h *Hub) broadcastDate(date worldgen.Date) {
	msg, err := travel.NewMessage(travel.TypeCurrentDate, travel.CurrentDatePayload{
		Year: date.Year, Month: date.Month, Day: date.Day,
		Weekday: date.Weekday, SpecialDay: int(date.SpecialDay),
		TotalDays: h.server.world.Time.TotalDays,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.Send(msg)
	}
}

func (h *Hub) handleMessage(cm *ClientMessage) {
	w := h.server.world

	switch cm.Message.Type {
	case travel.TypeShortestPathRequest:
		var req travel.ShortestPathRequestPayload
		if err := cm.Message.ParsePayload(&req); err != nil {
			h.replyError(cm.Client, travel.ErrCodeInvalidSettlement, "malformed request")
			return
		}

		result := w.ShortestPath(req.From, req.To)
		if result == nil {
			h.replyError(cm.Client, travel.ErrCodeUnreachable, "no path between settlements")
			return
		}

		msg, err := travel.NewMessage(travel.TypeShortestPathResult, travel.ShortestPathResultPayload{
			Nodes: result.Nodes, Polyline: result.Polyline, Distance: result.Distance,
		})
		if err != nil {
			return
		}
		cm.Client.Send(msg)

	case travel.TypeSetTimeSpeed:
		var req travel.SetTimeSpeedPayload
		if err := cm.Message.ParsePayload(&req); err != nil {
			h.replyError(cm.Client, travel.ErrCodeInvalidSpeed, "malformed request")
			return
		}
		if err := w.SetTimeSpeed(req.Speed); err != nil {
			h.replyError(cm.Client, travel.ErrCodeInvalidSpeed, err.Error())
			return
		}
		msg, err := travel.NewMessage(travel.TypeTimeSpeedSet, req)
		if err != nil {
			return
		}
		cm.Client.Send(msg)

	case travel.TypeRequestDate:
		date := w.CurrentDate()
		msg, err := travel.NewMessage(travel.TypeCurrentDate, travel.CurrentDatePayload{
			Year: date.Year, Month: date.Month, Day: date.Day,
			Weekday: date.Weekday, SpecialDay: int(date.SpecialDay),
			TotalDays: w.Time.TotalDays,
		})
		if err != nil {
			return
		}
		cm.Client.Send(msg)

	default:
		h.replyError(cm.Client, travel.ErrCodeInternalError, fmt.Sprintf("unhandled message type %q", cm.Message.Type))
	}
}

func (h *Hub) replyError(client *Client, code travel.ErrorCode, message string) {
	msg, err := travel.NewMessage(travel.TypeError, travel.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	client.Send(msg)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
)

// Client represents a connected websocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan *travel.Message
}

// NewClient creates a Client bound to hub and conn.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan *travel.Message, 256)}
}

// Send queues msg for delivery, disconnecting the client if it is too
// slow to keep its send buffer drained.
func (c *Client) Send(msg *travel.Message) {
	select {
	case c.send <- msg:
	default:
		c.hub.Unregister(c)
	}
}

// ReadPump pumps inbound messages from the websocket to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg travel.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid message: %v", err)
			continue
		}

		c.hub.Broadcast(c, &msg)
	}
}

// WritePump pumps outbound messages from the hub to the websocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Failed to marshal message: %v", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
