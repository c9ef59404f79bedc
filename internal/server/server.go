// Package server is the operator console: a JSON and websocket surface over the
// monitor, the alert machine and the log views.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/alert"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/monitor"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/retention"
)

const dispatchTimeout = 15 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Console is everything the server exposes. Health and Logs entries may be nil.
type Console struct {
	Monitor *monitor.Monitor
	Health  *monitor.HealthSampler
	Alerts  *alert.Machine
	Logs    map[domain.Granularity]*retention.View
}

// Message is one websocket push.
type Message struct {
	Type        string             `json:"type"`
	Granularity domain.Granularity `json:"granularity,omitempty"`
	Data        any                `json:"data"`
}

// ViewResponse is the body of GET /api/view.
type ViewResponse struct {
	monitor.View
	Health domain.HealthSummary `json:"health"`
}

type Server struct {
	mux     *http.ServeMux
	console Console

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan Message
	closeOnce sync.Once
	done      chan struct{}
}

func New(c Console) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		console:   c,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 256),
		done:      make(chan struct{}),
	}

	c.Monitor.Subscribe(func(v monitor.View) { s.publish(Message{Type: "view", Data: v}) })
	if c.Health != nil {
		c.Health.Subscribe(func(h domain.HealthSummary) { s.publish(Message{Type: "health", Data: h}) })
	}
	c.Alerts.Subscribe(func(a alert.Session) { s.publish(Message{Type: "session", Data: a}) })
	for g, v := range c.Logs {
		v.Subscribe(func(entries []domain.LogEntry) {
			s.publish(Message{Type: "logs", Granularity: g, Data: retention.Rows(entries)})
		})
	}

	s.routes()
	go s.handleBroadcast()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /api/view", s.handleView)

	s.mux.HandleFunc("GET /alerts/session", s.handleSession)
	s.mux.HandleFunc("POST /alerts/confirm", s.handleConfirm)
	s.mux.HandleFunc("POST /alerts/cancel", s.handleCancel)
	s.mux.HandleFunc("POST /alerts/acknowledge", s.handleAcknowledge)
	s.mux.HandleFunc("POST /alerts/{kind}", s.handleRequestAlert)

	s.mux.HandleFunc("GET /logs/{granularity}", s.handleLogs)
	s.mux.HandleFunc("POST /logs/{granularity}/delete", s.handleRequestDelete)
	s.mux.HandleFunc("POST /logs/{granularity}/delete/confirm", s.handleConfirmDelete)
	s.mux.HandleFunc("POST /logs/{granularity}/delete/cancel", s.handleCancelDelete)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops the broadcaster and drops every websocket client.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.clientsMu.Lock()
		for conn := range s.clients {
			conn.Close()
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	})
}

// publish never blocks a sampler; when the queue is full the update is dropped
// and the next one carries the current state anyway.
func (s *Server) publish(m Message) {
	select {
	case s.broadcast <- m:
	default:
		log.Warn().Str("type", m.Type).Msg("console broadcast queue full; update dropped")
	}
}

func (s *Server) handleBroadcast() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.broadcast:
			s.clientsMu.Lock()
			for conn := range s.clients {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					conn.Close()
					delete(s.clients, conn)
				}
			}
			s.clientsMu.Unlock()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	err = conn.WriteJSON(Message{Type: "init", Data: s.viewResponse()})
	s.clientsMu.Unlock()
	if err != nil {
		s.drop(conn)
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.drop(conn)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.clientsMu.Lock()
	delete(s.clients, conn)
	s.clientsMu.Unlock()
	conn.Close()
}

func (s *Server) viewResponse() ViewResponse {
	resp := ViewResponse{View: s.console.Monitor.View(), Health: domain.InitialHealth()}
	if s.console.Health != nil {
		resp.Health = s.console.Health.Summary()
	}
	return resp
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewResponse())
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.console.Alerts.Session())
}

func (s *Server) handleRequestAlert(w http.ResponseWriter, r *http.Request) {
	kind := domain.AlertKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeError(w, http.StatusNotFound, "unknown alert type")
		return
	}
	if !s.console.Alerts.RequestAction(kind) {
		writeJSON(w, http.StatusConflict, s.console.Alerts.Session())
		return
	}
	writeJSON(w, http.StatusOK, s.console.Alerts.Session())
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
	defer cancel()

	ack, err := s.console.Alerts.Confirm(ctx)
	switch {
	case errors.Is(err, alert.ErrNotPending):
		writeJSON(w, http.StatusConflict, s.console.Alerts.Session())
	case err != nil:
		writeJSON(w, http.StatusBadGateway, s.console.Alerts.Session())
	default:
		writeJSON(w, http.StatusOK, ack)
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, s.console.Alerts.Cancel())
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.sessionTransition(w, s.console.Alerts.Acknowledge())
}

func (s *Server) sessionTransition(w http.ResponseWriter, ok bool) {
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, s.console.Alerts.Session())
}

func (s *Server) logView(w http.ResponseWriter, r *http.Request) (*retention.View, bool) {
	v, ok := s.console.Logs[domain.Granularity(r.PathValue("granularity"))]
	if !ok || v == nil {
		writeError(w, http.StatusNotFound, "unknown log granularity")
		return nil, false
	}
	return v, true
}

// LogsResponse is the body of GET /logs/{granularity}.
type LogsResponse struct {
	Rows    []retention.Row   `json:"rows"`
	Pending *retention.Target `json:"pending,omitempty"`
}

func (s *Server) logsResponse(v *retention.View) LogsResponse {
	resp := LogsResponse{Rows: v.Rows()}
	if p, ok := v.Pending(); ok {
		resp.Pending = &p
	}
	return resp
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	v, ok := s.logView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.logsResponse(v))
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	v, ok := s.logView(w, r)
	if !ok {
		return
	}
	var t retention.Target
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := v.RequestDelete(t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.logsResponse(v))
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	v, ok := s.logView(w, r)
	if !ok {
		return
	}
	err := v.ConfirmDelete(r.Context())
	switch {
	case errors.Is(err, retention.ErrNothingPending):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		// the list was refreshed either way
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "rows": v.Rows()})
	default:
		writeJSON(w, http.StatusOK, s.logsResponse(v))
	}
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	v, ok := s.logView(w, r)
	if !ok {
		return
	}
	if !v.CancelDelete() {
		writeError(w, http.StatusConflict, retention.ErrNothingPending.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.logsResponse(v))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
