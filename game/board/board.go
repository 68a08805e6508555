package board

import (
	"context"
	"errors"
	"sync"

	"github.com/tevino/abool"
	"go.uber.org/zap"

	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/selector"
	"github.com/wricardo/stonescissorspaper/game/service"
	"github.com/wricardo/stonescissorspaper/game/signal"
)

// ErrBusy is returned when a start or play is requested while another one
// is still in flight
var ErrBusy = errors.New("a request is already in progress")

// Snapshot is everything a front end renders for the board
type Snapshot struct {
	Loading     bool                 `json:"loading"`
	SessionID   string               `json:"sessionId,omitempty"`
	SessionInfo *service.SessionInfo `json:"sessionInfo,omitempty"`
	LastResult  *service.GameResult  `json:"lastResult,omitempty"`
	Moves       []selector.Option    `json:"moves"`
}

// Board orchestrates the game service for a front end. It owns the loading
// flag and the displayed session and result, and publishes a Snapshot on
// every change.
type Board struct {
	svc    service.GameService
	logger *zap.Logger

	loading *abool.AtomicBool

	mu          sync.RWMutex
	sessionInfo *service.SessionInfo
	lastResult  *service.GameResult

	snapshot *signal.Signal[Snapshot]
}

// Option configures a Board
type Option func(*Board)

// WithLogger sets the board logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a board driving svc. Call Init before rendering.
func New(svc service.GameService, opts ...Option) *Board {
	b := &Board{
		svc:     svc,
		logger:  zap.NewNop(),
		loading: abool.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.snapshot = signal.New(b.build())
	return b
}

// IsLoading reports whether a start or play request is in flight
func (b *Board) IsLoading() bool {
	return b.loading.IsSet()
}

// Snapshot returns the current board state
func (b *Board) Snapshot() Snapshot {
	return b.snapshot.Get()
}

// Subscribe registers fn for every published snapshot
func (b *Board) Subscribe(fn func(Snapshot)) (cancel func()) {
	return b.snapshot.Subscribe(fn)
}

// Selector returns a move selector bound to the board's loading flag.
// Chosen moves are handed to onSelect.
func (b *Board) Selector(onSelect func(engine.Move)) *selector.Selector {
	return &selector.Selector{
		IsLoading: b.IsLoading,
		OnSelect:  onSelect,
	}
}

// Init restores any stored session, then starts a new game if none is
// held or refreshes the held session's info otherwise
func (b *Board) Init(ctx context.Context) error {
	// The outcome is not consumed here: an invalid stored session has
	// already been cleared and is replaced by a new game below.
	if err := b.svc.LoadSessionFromStorage(ctx); err != nil {
		b.logger.Debug("stored session not restored", zap.Error(err))
	}

	if b.svc.CurrentSessionID() == "" {
		_, err := b.StartNewGame(ctx)
		return err
	}
	return b.LoadSessionInfo(ctx)
}

// StartNewGame starts a session and displays it, clearing the last result.
// On error the displayed state is left untouched. It fails with ErrBusy
// while another request is in flight.
func (b *Board) StartNewGame(ctx context.Context) (*service.GameResponse, error) {
	if !b.tryBegin() {
		return nil, ErrBusy
	}
	defer b.end()

	resp, err := b.svc.StartNewGame(ctx)
	if err != nil {
		b.logger.Debug("start new game failed", zap.Error(err))
		return nil, err
	}

	b.mu.Lock()
	b.sessionInfo = resp.SessionInfo
	b.lastResult = nil
	b.mu.Unlock()

	return resp, nil
}

// OnMoveSelected plays move and displays the outcome. On error the
// previous result and session info stay displayed; the failure has already
// been reported to the user by the request pipeline. It fails with ErrBusy
// while another request is in flight.
func (b *Board) OnMoveSelected(ctx context.Context, move engine.Move) (*service.GameResponse, error) {
	if !b.tryBegin() {
		return nil, ErrBusy
	}
	defer b.end()

	resp, err := b.svc.PlayMove(ctx, move)
	if err != nil {
		b.logger.Debug("play move failed", zap.String("move", string(move)), zap.Error(err))
		return nil, err
	}

	b.mu.Lock()
	b.lastResult = resp.GameResult
	if resp.SessionInfo != nil {
		b.sessionInfo = resp.SessionInfo
	}
	b.mu.Unlock()

	return resp, nil
}

// LoadSessionInfo refreshes the displayed info of the held session. It does
// nothing when no session is held.
func (b *Board) LoadSessionInfo(ctx context.Context) error {
	id := b.svc.CurrentSessionID()
	if id == "" {
		return nil
	}

	resp, err := b.svc.GetSessionInfo(ctx, id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if resp.SessionInfo != nil {
		b.sessionInfo = resp.SessionInfo
	}
	b.mu.Unlock()

	b.publish()
	return nil
}

// ClearSession forgets the held session and empties the board
func (b *Board) ClearSession() error {
	err := b.svc.ClearSession()

	b.mu.Lock()
	b.sessionInfo = nil
	b.lastResult = nil
	b.mu.Unlock()

	b.publish()
	return err
}

// tryBegin claims the loading flag. Only the caller that flips it from
// false may issue a request.
func (b *Board) tryBegin() bool {
	if !b.loading.SetToIf(false, true) {
		return false
	}
	b.publish()
	return true
}

// end releases the flag claimed by tryBegin
func (b *Board) end() {
	b.loading.UnSet()
	b.publish()
}

func (b *Board) publish() {
	b.snapshot.Set(b.build())
}

func (b *Board) build() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot{
		Loading:     b.loading.IsSet(),
		SessionID:   b.svc.CurrentSessionID(),
		SessionInfo: b.sessionInfo,
		LastResult:  b.lastResult,
		Moves:       b.Selector(nil).Options(),
	}
}
