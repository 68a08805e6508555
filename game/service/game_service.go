package service

import (
	"context"
	"errors"

	"github.com/wricardo/stonescissorspaper/game/engine"
)

var (
	// ErrSessionNotFound matches API errors reporting an unknown session
	// (HTTP 404 with a "Session not found" message)
	ErrSessionNotFound = errors.New("session not found")

	// ErrMissingSessionID is returned when the game API hands back a
	// session without an identifier
	ErrMissingSessionID = errors.New("game API returned no session ID")
)

// GameService defines the client-side game session operations
type GameService interface {
	// Session Management
	StartNewGame(ctx context.Context) (*GameResponse, error)
	GetSessionInfo(ctx context.Context, sessionID string) (*GameResponse, error)
	LoadSessionFromStorage(ctx context.Context) error
	ClearSession() error

	// Game Operations
	PlayMove(ctx context.Context, move engine.Move) (*GameResponse, error)

	// Session State
	CurrentSessionID() string
	SubscribeSession(fn func(sessionID string)) (cancel func())
}

// GameAPI defines the remote game API calls the service issues
type GameAPI interface {
	StartGame(ctx context.Context) (*GameResponse, error)
	Play(ctx context.Context, req PlayRequest) (*GameResponse, error)
	GetSession(ctx context.Context, sessionID string) (*GameResponse, error)
}
