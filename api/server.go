package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/stonescissorspaper/game/board"
	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/selector"
	"github.com/wricardo/stonescissorspaper/game/service"
	"github.com/wricardo/stonescissorspaper/transport/websocket"
)

// Board is the board behavior the server exposes
type Board interface {
	Snapshot() board.Snapshot
	IsLoading() bool
	StartNewGame(ctx context.Context) (*service.GameResponse, error)
	OnMoveSelected(ctx context.Context, move engine.Move) (*service.GameResponse, error)
	LoadSessionInfo(ctx context.Context) error
	ClearSession() error
	Selector(onSelect func(engine.Move)) *selector.Selector
}

var _ Board = (*board.Board)(nil)

// Server represents the local board server
type Server struct {
	board     Board
	hub       *websocket.Hub
	router    *mux.Router
	staticDir string
	logger    *zap.Logger
}

// NewServer creates a new board server. hub may be nil to disable /ws and
// staticDir may be empty to serve the API only.
func NewServer(b Board, hub *websocket.Hub, staticDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		board:     b,
		hub:       hub,
		router:    mux.NewRouter(),
		staticDir: staticDir,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Board
	api.HandleFunc("/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/board/move", s.handleMove).Methods("POST")
	api.HandleFunc("/board/new-game", s.handleNewGame).Methods("POST")
	api.HandleFunc("/board/refresh", s.handleRefresh).Methods("POST")
	api.HandleFunc("/board/session", s.handleClearSession).Methods("DELETE")
	api.HandleFunc("/moves", s.handleListMoves).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}

	// Static files
	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondUpstreamError reports a failed game API call. The user has already
// been alerted by the request pipeline.
func (s *Server) respondUpstreamError(w http.ResponseWriter, err error) {
	s.logger.Debug("game API call failed", zap.Error(err))
	respondError(w, http.StatusBadGateway, err.Error())
}

// Board Handlers

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Move string `json:"move"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	move, err := engine.ParseMove(req.Move)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var playErr error
	sel := s.board.Selector(func(m engine.Move) {
		_, playErr = s.board.OnMoveSelected(r.Context(), m)
	})
	if !sel.Select(move) {
		respondError(w, http.StatusConflict, "A request is already in progress")
		return
	}
	if playErr != nil {
		if errors.Is(playErr, board.ErrBusy) {
			respondError(w, http.StatusConflict, playErr.Error())
			return
		}
		if errors.Is(playErr, engine.ErrInvalidMove) {
			respondError(w, http.StatusBadRequest, playErr.Error())
			return
		}
		s.respondUpstreamError(w, playErr)
		return
	}

	respondJSON(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	if s.board.IsLoading() {
		respondError(w, http.StatusConflict, "A request is already in progress")
		return
	}

	if _, err := s.board.StartNewGame(r.Context()); err != nil {
		if errors.Is(err, board.ErrBusy) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.respondUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, s.board.Snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.board.LoadSessionInfo(r.Context()); err != nil {
		s.respondUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.board.ClearSession(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMoves(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.board.Snapshot().Moves)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	snap := s.board.Snapshot()
	s.hub.ServeWS(w, r, &websocket.Message{Event: websocket.EventBoardUpdate, Board: &snap})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
