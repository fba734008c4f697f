// Package server exposes the answering core over HTTP and WebSocket for the
// UI collaborator. Session identity travels in the X-Session-ID header; an
// authenticated user id, when the auth collaborator provides one, arrives in
// X-User-ID and takes precedence.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/engine"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/session"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

// Message is the WebSocket envelope, both directions.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

type Server struct {
	engine *engine.Engine
	logger *slog.Logger
}

func New(e *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: e,
		logger: logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/feedback", s.handleFeedback)
	mux.HandleFunc("/session/reset", s.handleSessionReset)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// sessionContext resolves the request identity. A missing session header
// gets a fresh token, echoed back so the client can persist it.
func (s *Server) sessionContext(w http.ResponseWriter, r *http.Request) session.Context {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = session.NewToken()
	}
	w.Header().Set("X-Session-ID", sessionID)

	return session.Context{
		UserID:    r.Header.Get("X-User-ID"),
		SessionID: sessionID,
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	sess := s.sessionContext(w, r)

	result, err := s.engine.Ask(r.Context(), sess, req.Question)
	if err != nil {
		s.writeAskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	sess := s.sessionContext(w, r)

	history, err := s.engine.History(r.Context(), sess, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "ইতিহাস আনা গেল না"})
		return
	}
	if history == nil {
		history = []models.Interaction{}
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		InteractionID string `json:"interaction_id"`
		Rating        int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	err := s.engine.SubmitFeedback(r.Context(), req.InteractionID, req.Rating)
	switch {
	case errors.Is(err, engine.ErrInvalidRating):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "rating must be between 1 and 5"})
	case errors.Is(err, store.ErrInteractionNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: "interaction not found"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "মতামত সংরক্ষণ করা গেল না"})
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := session.NewToken()
	w.Header().Set("X-Session-ID", token)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": token})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionContext(w, r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendMessage(conn, Message{Type: "error", Content: "invalid message"})
			continue
		}

		switch msg.Type {
		case "ask":
			result, err := s.engine.Ask(r.Context(), sess, msg.Content)
			if err != nil {
				s.sendMessage(conn, askErrorMessage(err))
				continue
			}
			s.sendMessage(conn, Message{Type: "response", Content: result.Answer, Data: result})
		case "reset":
			sess = session.Context{UserID: sess.UserID, SessionID: session.NewToken()}
			s.sendMessage(conn, Message{Type: "session", Content: sess.SessionID})
		default:
			s.sendMessage(conn, Message{Type: "error", Content: "unknown message type"})
		}
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Error("failed to send websocket message", "error", err)
	}
}

func (s *Server) writeAskError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrEmptyQuestion) {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "প্রশ্ন লিখুন"})
		return
	}

	var userErr *engine.UserError
	if errors.As(err, &userErr) {
		status := http.StatusBadGateway
		if userErr.Type == "rate_limit" {
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, errorPayload{Error: userErr.Message, Type: userErr.Type})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
}

func askErrorMessage(err error) Message {
	if errors.Is(err, engine.ErrEmptyQuestion) {
		return Message{Type: "error", Content: "প্রশ্ন লিখুন"}
	}

	var userErr *engine.UserError
	if errors.As(err, &userErr) {
		return Message{Type: "error", Content: userErr.Message, Data: errorPayload{Error: userErr.Message, Type: userErr.Type}}
	}

	return Message{Type: "error", Content: "internal error"}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}
