package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/session"
)

// MockGameAPI implements GameAPI for testing and records every call in order
type MockGameAPI struct {
	StartGameFunc  func(ctx context.Context) (*GameResponse, error)
	PlayFunc       func(ctx context.Context, req PlayRequest) (*GameResponse, error)
	GetSessionFunc func(ctx context.Context, sessionID string) (*GameResponse, error)

	Calls    []string
	Requests []PlayRequest
}

func (m *MockGameAPI) StartGame(ctx context.Context) (*GameResponse, error) {
	m.Calls = append(m.Calls, "start")
	if m.StartGameFunc != nil {
		return m.StartGameFunc(ctx)
	}
	return sessionResponse("default-session"), nil
}

func (m *MockGameAPI) Play(ctx context.Context, req PlayRequest) (*GameResponse, error) {
	m.Calls = append(m.Calls, "play")
	m.Requests = append(m.Requests, req)
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, req)
	}
	return &GameResponse{Success: true, GameResult: &GameResult{Result: engine.Win}}, nil
}

func (m *MockGameAPI) GetSession(ctx context.Context, sessionID string) (*GameResponse, error) {
	m.Calls = append(m.Calls, "get:"+sessionID)
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return sessionResponse(sessionID), nil
}

func sessionResponse(id string) *GameResponse {
	return &GameResponse{Success: true, SessionInfo: &SessionInfo{SessionID: id}}
}

var errNotFound = fmt.Errorf("404 Not Found: %w", ErrSessionNotFound)

// startSequence returns a StartGameFunc handing out the given IDs in order
func startSequence(ids ...string) func(context.Context) (*GameResponse, error) {
	i := 0
	return func(context.Context) (*GameResponse, error) {
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return sessionResponse(id), nil
	}
}

func newTestService(api GameAPI) (*gameServiceImpl, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return NewGameService(api, store).(*gameServiceImpl), store
}

func storedID(t *testing.T, store session.Store) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(session.CurrentSessionIDKey)
	require.NoError(t, err)
	return v, ok
}

func TestNewGameService_DoesNotReadStorage(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(session.CurrentSessionIDKey, "stored"))

	api := &MockGameAPI{}
	svc := NewGameService(api, store)

	assert.Equal(t, "", svc.CurrentSessionID())
	assert.Empty(t, api.Calls)
}

func TestStartNewGame(t *testing.T) {
	t.Run("stores session ID in memory and storage", func(t *testing.T) {
		api := &MockGameAPI{StartGameFunc: startSequence("sess-123")}
		svc, store := newTestService(api)

		resp, err := svc.StartNewGame(context.Background())
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "sess-123", svc.CurrentSessionID())
		v, ok := storedID(t, store)
		assert.True(t, ok)
		assert.Equal(t, "sess-123", v)
	})

	t.Run("replaces previous session", func(t *testing.T) {
		api := &MockGameAPI{StartGameFunc: startSequence("first", "second")}
		svc, store := newTestService(api)

		_, err := svc.StartNewGame(context.Background())
		require.NoError(t, err)
		_, err = svc.StartNewGame(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "second", svc.CurrentSessionID())
		v, _ := storedID(t, store)
		assert.Equal(t, "second", v)
	})

	t.Run("propagates errors and keeps state", func(t *testing.T) {
		boom := errors.New("connection refused")
		api := &MockGameAPI{StartGameFunc: func(context.Context) (*GameResponse, error) {
			return nil, boom
		}}
		svc, store := newTestService(api)
		svc.setSession("kept")

		_, err := svc.StartNewGame(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "kept", svc.CurrentSessionID())
		v, _ := storedID(t, store)
		assert.Equal(t, "kept", v)
	})

	t.Run("rejects responses without a session ID", func(t *testing.T) {
		api := &MockGameAPI{StartGameFunc: func(context.Context) (*GameResponse, error) {
			return &GameResponse{Success: true}, nil
		}}
		svc, _ := newTestService(api)

		_, err := svc.StartNewGame(context.Background())
		assert.ErrorIs(t, err, ErrMissingSessionID)
		assert.Equal(t, "", svc.CurrentSessionID())
	})
}

func TestPlayMove_UsesExistingSession(t *testing.T) {
	api := &MockGameAPI{}
	svc, _ := newTestService(api)
	svc.setSession("existing-session")

	resp, err := svc.PlayMove(context.Background(), engine.Stone)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"play"}, api.Calls)
	assert.Equal(t, PlayRequest{PlayerMove: engine.Stone, SessionID: "existing-session"}, api.Requests[0])
}

func TestPlayMove_StartsGameWhenNoSession(t *testing.T) {
	api := &MockGameAPI{StartGameFunc: startSequence("new-1")}
	svc, _ := newTestService(api)

	_, err := svc.PlayMove(context.Background(), engine.Paper)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "play"}, api.Calls)
	assert.Equal(t, PlayRequest{PlayerMove: engine.Paper, SessionID: "new-1"}, api.Requests[0])
}

func TestPlayMove_StartFailureSkipsPlay(t *testing.T) {
	boom := errors.New("server down")
	api := &MockGameAPI{StartGameFunc: func(context.Context) (*GameResponse, error) {
		return nil, boom
	}}
	svc, _ := newTestService(api)

	_, err := svc.PlayMove(context.Background(), engine.Paper)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start"}, api.Calls)
}

func TestPlayMove_RecoversFromUnknownSession(t *testing.T) {
	plays := 0
	api := &MockGameAPI{
		StartGameFunc: startSequence("recovered-1"),
		PlayFunc: func(_ context.Context, req PlayRequest) (*GameResponse, error) {
			plays++
			if plays == 1 {
				return nil, errNotFound
			}
			return &GameResponse{
				Success:     true,
				GameResult:  &GameResult{Result: engine.Lose},
				SessionInfo: &SessionInfo{SessionID: req.SessionID, GamesPlayed: 1},
			}, nil
		},
	}
	svc, store := newTestService(api)
	svc.setSession("invalid-session")

	resp, err := svc.PlayMove(context.Background(), engine.Scissors)
	require.NoError(t, err)

	assert.Equal(t, engine.Lose, resp.GameResult.Result)
	assert.Equal(t, []string{"play", "start", "play"}, api.Calls)
	assert.Equal(t, PlayRequest{PlayerMove: engine.Scissors, SessionID: "invalid-session"}, api.Requests[0])
	assert.Equal(t, PlayRequest{PlayerMove: engine.Scissors, SessionID: "recovered-1"}, api.Requests[1])

	assert.Equal(t, "recovered-1", svc.CurrentSessionID())
	v, _ := storedID(t, store)
	assert.Equal(t, "recovered-1", v)
}

func TestPlayMove_RetriesOnlyOnce(t *testing.T) {
	api := &MockGameAPI{
		StartGameFunc: startSequence("recovered-1", "recovered-2"),
		PlayFunc: func(context.Context, PlayRequest) (*GameResponse, error) {
			return nil, errNotFound
		},
	}
	svc, store := newTestService(api)
	svc.setSession("invalid-session")

	_, err := svc.PlayMove(context.Background(), engine.Stone)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, []string{"play", "start", "play"}, api.Calls)
	assert.Equal(t, "", svc.CurrentSessionID())
	_, ok := storedID(t, store)
	assert.False(t, ok)
}

func TestPlayMove_RecoveryStartFailure(t *testing.T) {
	boom := errors.New("start failed")
	api := &MockGameAPI{
		StartGameFunc: func(context.Context) (*GameResponse, error) {
			return nil, boom
		},
		PlayFunc: func(context.Context, PlayRequest) (*GameResponse, error) {
			return nil, errNotFound
		},
	}
	svc, _ := newTestService(api)
	svc.setSession("invalid-session")

	_, err := svc.PlayMove(context.Background(), engine.Stone)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"play", "start"}, api.Calls)
	assert.Equal(t, "", svc.CurrentSessionID())
}

func TestPlayMove_OtherErrorsPropagateUnchanged(t *testing.T) {
	serverErr := errors.New("500 Internal Server Error")
	api := &MockGameAPI{
		PlayFunc: func(context.Context, PlayRequest) (*GameResponse, error) {
			return nil, serverErr
		},
	}
	svc, store := newTestService(api)
	svc.setSession("active")

	_, err := svc.PlayMove(context.Background(), engine.Paper)
	assert.Same(t, serverErr, err)
	assert.Equal(t, []string{"play"}, api.Calls)
	assert.Equal(t, "active", svc.CurrentSessionID())
	v, _ := storedID(t, store)
	assert.Equal(t, "active", v)
}

func TestPlayMove_RefreshesSessionFromResponse(t *testing.T) {
	api := &MockGameAPI{
		PlayFunc: func(context.Context, PlayRequest) (*GameResponse, error) {
			return &GameResponse{Success: true, SessionInfo: &SessionInfo{SessionID: "rotated"}}, nil
		},
	}
	svc, store := newTestService(api)
	svc.setSession("original")

	_, err := svc.PlayMove(context.Background(), engine.Paper)
	require.NoError(t, err)

	assert.Equal(t, "rotated", svc.CurrentSessionID())
	v, _ := storedID(t, store)
	assert.Equal(t, "rotated", v)
}

func TestPlayMove_InvalidMove(t *testing.T) {
	api := &MockGameAPI{}
	svc, _ := newTestService(api)

	_, err := svc.PlayMove(context.Background(), engine.Move("LIZARD"))
	assert.ErrorIs(t, err, engine.ErrInvalidMove)
	assert.Empty(t, api.Calls)
}

func TestGetSessionInfo(t *testing.T) {
	t.Run("returns session", func(t *testing.T) {
		api := &MockGameAPI{}
		svc, _ := newTestService(api)

		resp, err := svc.GetSessionInfo(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", resp.SessionInfo.SessionID)
	})

	t.Run("clears session on not found", func(t *testing.T) {
		api := &MockGameAPI{GetSessionFunc: func(context.Context, string) (*GameResponse, error) {
			return nil, errNotFound
		}}
		svc, store := newTestService(api)
		svc.setSession("to-clear")

		_, err := svc.GetSessionInfo(context.Background(), "to-clear")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, "", svc.CurrentSessionID())
		_, ok := storedID(t, store)
		assert.False(t, ok)
	})

	t.Run("keeps session on other errors", func(t *testing.T) {
		boom := errors.New("timeout")
		api := &MockGameAPI{GetSessionFunc: func(context.Context, string) (*GameResponse, error) {
			return nil, boom
		}}
		svc, _ := newTestService(api)
		svc.setSession("kept")

		_, err := svc.GetSessionInfo(context.Background(), "kept")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "kept", svc.CurrentSessionID())
	})
}

func TestLoadSessionFromStorage(t *testing.T) {
	t.Run("keeps valid session", func(t *testing.T) {
		api := &MockGameAPI{}
		svc, store := newTestService(api)
		require.NoError(t, store.Set(session.CurrentSessionIDKey, "stored-1"))

		require.NoError(t, svc.LoadSessionFromStorage(context.Background()))
		assert.Equal(t, "stored-1", svc.CurrentSessionID())
		assert.Equal(t, []string{"get:stored-1"}, api.Calls)
	})

	t.Run("clears invalid session", func(t *testing.T) {
		api := &MockGameAPI{GetSessionFunc: func(context.Context, string) (*GameResponse, error) {
			return nil, errNotFound
		}}
		svc, store := newTestService(api)
		require.NoError(t, store.Set(session.CurrentSessionIDKey, "stale"))

		err := svc.LoadSessionFromStorage(context.Background())
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, "", svc.CurrentSessionID())
		_, ok := storedID(t, store)
		assert.False(t, ok)
	})

	t.Run("no stored session is a no-op", func(t *testing.T) {
		api := &MockGameAPI{}
		svc, _ := newTestService(api)

		require.NoError(t, svc.LoadSessionFromStorage(context.Background()))
		assert.Equal(t, "", svc.CurrentSessionID())
		assert.Empty(t, api.Calls)
	})
}

func TestClearSession(t *testing.T) {
	api := &MockGameAPI{}
	svc, store := newTestService(api)
	svc.setSession("x-1")

	require.NoError(t, svc.ClearSession())
	assert.Equal(t, "", svc.CurrentSessionID())
	_, ok := storedID(t, store)
	assert.False(t, ok)

	// Idempotent
	require.NoError(t, svc.ClearSession())
	assert.Equal(t, "", svc.CurrentSessionID())
}

func TestSubscribeSession(t *testing.T) {
	api := &MockGameAPI{StartGameFunc: startSequence("s1")}
	svc, _ := newTestService(api)

	var seen []string
	cancel := svc.SubscribeSession(func(id string) {
		seen = append(seen, id)
	})
	defer cancel()

	_, err := svc.StartNewGame(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.ClearSession())

	assert.Equal(t, []string{"s1", ""}, seen)
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var info SessionInfo
	data := []byte(`{"sessionId":"a","createdAt":"2025-01-02T03:04:05Z","lastActivity":1735787045.5}`)
	require.NoError(t, json.Unmarshal(data, &info))

	require.NotNil(t, info.CreatedAt)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), info.CreatedAt.Time.UTC())
	require.NotNil(t, info.LastActivity)
	assert.Equal(t, int64(1735787045), info.LastActivity.Unix())
	assert.Equal(t, 500*time.Millisecond, time.Duration(info.LastActivity.Nanosecond()))
}
