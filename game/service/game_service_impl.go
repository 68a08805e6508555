package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/session"
	"github.com/wricardo/stonescissorspaper/game/signal"
)

// playAttempt is the recovery state of a single PlayMove call.
// A call starts in attemptFirst and may move to attemptRetried once, after
// a new session replaced one the server no longer knows. attemptRetried is
// terminal: any failure there is returned to the caller.
type playAttempt int

const (
	attemptFirst playAttempt = iota
	attemptRetried
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	api     GameAPI
	store   session.Store
	logger  *zap.Logger
	current *signal.Signal[string]
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the logger used by the service
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewGameService creates a new game service instance. The stored session is
// not read here; call LoadSessionFromStorage to restore it.
func NewGameService(api GameAPI, store session.Store, opts ...Option) GameService {
	s := &gameServiceImpl{
		api:     api,
		store:   store,
		logger:  zap.NewNop(),
		current: signal.New(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentSessionID returns the held session ID, or "" when there is none
func (s *gameServiceImpl) CurrentSessionID() string {
	return s.current.Get()
}

// SubscribeSession registers fn to be called on every session ID change
func (s *gameServiceImpl) SubscribeSession(fn func(sessionID string)) (cancel func()) {
	return s.current.Subscribe(fn)
}

// StartNewGame asks the API for a new session and adopts it
func (s *gameServiceImpl) StartNewGame(ctx context.Context) (*GameResponse, error) {
	resp, err := s.api.StartGame(ctx)
	if err != nil {
		return nil, err
	}

	if resp == nil || resp.SessionInfo == nil || resp.SessionInfo.SessionID == "" {
		return nil, ErrMissingSessionID
	}

	s.setSession(resp.SessionInfo.SessionID)
	s.logger.Info("started new game", zap.String("session_id", resp.SessionInfo.SessionID))

	return resp, nil
}

// PlayMove plays move in the current session, starting one first if none is
// held. When the server no longer knows the session, a new one is started
// and the same move is retried exactly once.
func (s *gameServiceImpl) PlayMove(ctx context.Context, move engine.Move) (*GameResponse, error) {
	move, err := engine.ParseMove(string(move))
	if err != nil {
		return nil, err
	}

	if s.CurrentSessionID() == "" {
		if _, err := s.StartNewGame(ctx); err != nil {
			return nil, err
		}
	}

	attempt := attemptFirst
	for {
		sessionID := s.CurrentSessionID()
		resp, err := s.play(ctx, move, sessionID)
		if err == nil {
			return resp, nil
		}

		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}

		// The server dropped the session: ACTIVE -> NO_SESSION
		s.logger.Warn("session rejected by server",
			zap.String("session_id", sessionID),
			zap.Bool("retried", attempt == attemptRetried),
			zap.Error(err))
		s.clear()

		if attempt == attemptRetried {
			return nil, err
		}

		if _, err := s.StartNewGame(ctx); err != nil {
			return nil, err
		}
		attempt = attemptRetried
	}
}

// play issues a single play request and refreshes the held session ID from
// the response
func (s *gameServiceImpl) play(ctx context.Context, move engine.Move, sessionID string) (*GameResponse, error) {
	resp, err := s.api.Play(ctx, PlayRequest{PlayerMove: move, SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	if resp != nil && resp.SessionInfo != nil {
		if id := resp.SessionInfo.SessionID; id != "" && id != s.CurrentSessionID() {
			s.setSession(id)
		}
	}

	s.logger.Debug("move played", zap.String("session_id", sessionID), zap.String("move", string(move)))
	return resp, nil
}

// GetSessionInfo fetches a session. An unknown session clears the held one
// before the error is returned.
func (s *gameServiceImpl) GetSessionInfo(ctx context.Context, sessionID string) (*GameResponse, error) {
	resp, err := s.api.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			s.logger.Info("stored session is no longer valid", zap.String("session_id", sessionID))
			s.clear()
		}
		return nil, err
	}
	return resp, nil
}

// LoadSessionFromStorage restores the stored session ID and validates it
// against the API. Without a stored ID it does nothing.
func (s *gameServiceImpl) LoadSessionFromStorage(ctx context.Context) error {
	stored, ok, err := s.store.Get(session.CurrentSessionIDKey)
	if err != nil {
		return fmt.Errorf("failed to read stored session: %w", err)
	}
	if !ok || stored == "" {
		return nil
	}

	s.current.Set(stored)

	if _, err := s.GetSessionInfo(ctx, stored); err != nil {
		return fmt.Errorf("failed to validate stored session %s: %w", stored, err)
	}
	return nil
}

// ClearSession forgets the held session in memory and storage
func (s *gameServiceImpl) ClearSession() error {
	s.current.Set("")
	if err := s.store.Remove(session.CurrentSessionIDKey); err != nil {
		return fmt.Errorf("failed to remove stored session: %w", err)
	}
	return nil
}

// setSession holds id and mirrors it into storage. A storage failure is
// logged and does not fail the surrounding operation.
func (s *gameServiceImpl) setSession(id string) {
	s.current.Set(id)
	if err := s.store.Set(session.CurrentSessionIDKey, id); err != nil {
		s.logger.Warn("failed to persist session", zap.String("session_id", id), zap.Error(err))
	}
}

func (s *gameServiceImpl) clear() {
	if err := s.ClearSession(); err != nil {
		s.logger.Warn("failed to clear session", zap.Error(err))
	}
}
