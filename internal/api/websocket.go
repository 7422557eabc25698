package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gas-arena/internal/game"
	"gas-arena/internal/metrics"
	"gas-arena/internal/protocol"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// MaxWSConnectionsPerIP is the maximum websocket connections per IP
	MaxWSConnectionsPerIP = 10
)

var (
	// ErrMatchFull is returned when the hub is at its player limit.
	ErrMatchFull = errors.New("match full")
	// ErrHubClosed is returned for connections arriving during shutdown.
	ErrHubClosed = errors.New("hub closed")
	// ErrTooManyConnections is returned when an IP is at its connection cap.
	ErrTooManyConnections = errors.New("too many connections from address")
)

// CommandSink accepts client commands for the simulation. Enqueue must be
// safe for concurrent use.
type CommandSink interface {
	Enqueue(cmd game.Command) bool
}

// HubConfig bounds the websocket layer.
type HubConfig struct {
	MaxPlayers     int
	MaxPerIP       int
	SendBuffer     int     // outbound frames buffered per session
	MessageRate    float64 // inbound messages per second per session
	MessageBurst   int
	AllowedOrigins []string
}

// Hub upgrades /play requests and bridges each connection to the
// simulation: inbound frames become commands, and the session itself is
// the player's game.Transport.
type Hub struct {
	sink     CommandSink
	cfg      HubConfig
	upgrader websocket.Upgrader
	perIP    *ConnectionLimiter

	mu       sync.Mutex
	sessions map[string]*session
	reserved int
	closed   bool

	pumps sync.WaitGroup
}

func NewHub(sink CommandSink, cfg HubConfig) *Hub {
	if cfg.MaxPerIP <= 0 {
		cfg.MaxPerIP = MaxWSConnectionsPerIP
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	return &Hub{
		sink: sink,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		perIP:    NewConnectionLimiter(cfg.MaxPerIP),
		sessions: make(map[string]*session),
	}
}

// admit reserves a connection slot for ip.
func (h *Hub) admit(ip string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if h.cfg.MaxPlayers > 0 && h.reserved >= h.cfg.MaxPlayers {
		return ErrMatchFull
	}
	if !h.perIP.Acquire(ip) {
		return ErrTooManyConnections
	}
	h.reserved++
	return nil
}

func (h *Hub) release(ip string) {
	h.mu.Lock()
	h.reserved--
	h.mu.Unlock()
	h.perIP.Release(ip)
}

// ServeHTTP handles the websocket upgrade. The player name comes from the
// "name" query parameter; the client then sends a join message.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if err := h.admit(ip); err != nil {
		log.Printf("⚠️ WebSocket connection from %s rejected: %v", ip, err)
		switch {
		case errors.Is(err, ErrMatchFull):
			metrics.RecordConnectionRejected("full")
			http.Error(w, "Match full", http.StatusServiceUnavailable)
		case errors.Is(err, ErrTooManyConnections):
			metrics.RecordConnectionRejected("rate_limit")
			http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		default:
			metrics.RecordConnectionRejected("closed")
			http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.release(ip)
		return
	}

	s := &session{
		id:      uuid.NewString(),
		ip:      ip,
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, h.cfg.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.MessageRate), h.cfg.MessageBurst),
	}
	if h.cfg.MessageRate <= 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	h.register(s)

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if !h.sink.Enqueue(game.Command{Kind: game.CommandConnect, Session: s.id, Name: name, Transport: s}) {
		metrics.RecordConnectionRejected("full")
		s.Close()
	}

	h.pumps.Add(2)
	go s.writePump()
	go s.readPump()
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	count := len(h.sessions)
	h.mu.Unlock()

	log.Printf("📱 Client %s connected from %s (%d total)", s.id, s.ip, count)
	metrics.UpdateWSConnections(count)
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.id)
	count := len(h.sessions)
	h.mu.Unlock()

	h.release(s.ip)
	log.Printf("📱 Client %s disconnected (%d remaining)", s.id, count)
	metrics.UpdateWSConnections(count)
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown refuses new connections, closes every session and waits for
// their goroutines or ctx.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	done := make(chan struct{})
	go func() {
		h.pumps.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// session is one websocket client. It implements game.Transport:
// SendPacket never blocks the tick thread.
type session struct {
	id      string
	ip      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
}

var _ game.Transport = (*session)(nil)

// SendPacket encodes p and queues it for the writer goroutine.
func (s *session) SendPacket(p game.Packet) error {
	select {
	case <-s.done:
		return game.ErrTransportClosed
	default:
	}

	data, err := protocol.EncodePacket(p)
	if err != nil {
		return err
	}

	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return game.ErrTransportClosed
	default:
		return game.ErrSlowClient
	}
}

// Close stops the session. Frames already queued are still flushed.
func (s *session) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.hub.pumps.Done()
	}()

	for {
		select {
		case data := <-s.send:
			if err := s.write(websocket.BinaryMessage, data); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			s.flush()
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever is still queued, such as a final game over packet.
func (s *session) flush() {
	for {
		select {
		case data := <-s.send:
			if err := s.write(websocket.BinaryMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *session) write(messageType int, data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return err
	}
	if messageType == websocket.BinaryMessage {
		metrics.IncrementWSMessages("out")
	}
	return nil
}

func (s *session) readPump() {
	defer func() {
		s.Close()
		s.hub.unregister(s)
		s.hub.sink.Enqueue(game.Command{Kind: game.CommandLeave, Session: s.id})
		s.hub.pumps.Done()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ WebSocket read error from %s: %v", s.id, err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		metrics.IncrementWSMessages("in")

		if !s.limiter.Allow() {
			metrics.RecordInputDropped()
			continue
		}
		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			log.Printf("⚠️ Bad message from %s: %v", s.id, err)
			continue
		}
		s.hub.sink.Enqueue(msg.Command(s.id))
	}
}
