package mcp

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/stonescissorspaper/game/board"
	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/service"
)

// MockBoard implements Board for testing
type MockBoard struct {
	Snap board.Snapshot

	StartNewGameFunc    func(ctx context.Context) (*service.GameResponse, error)
	OnMoveSelectedFunc  func(ctx context.Context, move engine.Move) (*service.GameResponse, error)
	LoadSessionInfoFunc func(ctx context.Context) error
}

func (m *MockBoard) Snapshot() board.Snapshot {
	return m.Snap
}

func (m *MockBoard) StartNewGame(ctx context.Context) (*service.GameResponse, error) {
	if m.StartNewGameFunc != nil {
		return m.StartNewGameFunc(ctx)
	}
	m.Snap.SessionInfo = &service.SessionInfo{SessionID: "sess-new"}
	return &service.GameResponse{Success: true, SessionInfo: m.Snap.SessionInfo}, nil
}

func (m *MockBoard) OnMoveSelected(ctx context.Context, move engine.Move) (*service.GameResponse, error) {
	if m.OnMoveSelectedFunc != nil {
		return m.OnMoveSelectedFunc(ctx, move)
	}
	m.Snap.SessionInfo = &service.SessionInfo{SessionID: "sess-1", GamesPlayed: 1, PlayerWins: 1, PlayerWinPercentage: 100}
	return &service.GameResponse{
		Success:     true,
		SessionInfo: m.Snap.SessionInfo,
		GameResult: &service.GameResult{
			PlayerMove:   move,
			ComputerMove: engine.Scissors,
			Result:       engine.Win,
			Message:      "Stone crushes Scissors",
		},
	}, nil
}

func (m *MockBoard) LoadSessionInfo(ctx context.Context) error {
	if m.LoadSessionInfoFunc != nil {
		return m.LoadSessionInfoFunc(ctx)
	}
	return nil
}

func (m *MockBoard) ClearSession() error {
	m.Snap = board.Snapshot{}
	return nil
}

// MockCatalog implements Catalog for testing
type MockCatalog struct {
	Err error
}

func (m *MockCatalog) Moves(ctx context.Context) ([]engine.Move, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return engine.Moves(), nil
}

func (m *MockCatalog) Rules(ctx context.Context) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "Stone beats Scissors, Scissors beats Paper, Paper beats Stone.", nil
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewServer(t *testing.T) {
	s := NewServer(&MockBoard{}, &MockCatalog{}, nil)

	if s.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}
	if s.alerts == nil {
		t.Error("Expected default alert buffer")
	}
	if s.GetMCPServer() != s.mcpServer {
		t.Error("GetMCPServer should return the underlying server")
	}
}

func TestHandleStartNewGame(t *testing.T) {
	s := NewServer(&MockBoard{}, &MockCatalog{}, nil)

	result, err := s.handleStartNewGame(context.Background(), callTool("start_new_game", nil))
	if err != nil {
		t.Fatalf("handleStartNewGame failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "New game started!") || !strings.Contains(text, "Session: sess-new") {
		t.Errorf("Unexpected result: %s", text)
	}
}

func TestHandlePlayMove(t *testing.T) {
	s := NewServer(&MockBoard{}, &MockCatalog{}, nil)

	result, err := s.handlePlayMove(context.Background(), callTool("play_move", map[string]interface{}{"move": "stone"}))
	if err != nil {
		t.Fatalf("handlePlayMove failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	expected := []string{
		"You: ✊ Stone  vs  Computer: ✌️ Scissors",
		"🎉 You win!",
		"Stone crushes Scissors",
		"Games: 1 | Wins: 1 | Losses: 0 | Draws: 0 | Win rate: 100.0%",
	}
	for _, e := range expected {
		if !strings.Contains(text, e) {
			t.Errorf("Expected %q in result, got: %s", e, text)
		}
	}
}

func TestHandlePlayMove_InvalidMove(t *testing.T) {
	mockBoard := &MockBoard{}
	mockBoard.OnMoveSelectedFunc = func(ctx context.Context, move engine.Move) (*service.GameResponse, error) {
		t.Error("Board should not be called for an invalid move")
		return nil, nil
	}
	s := NewServer(mockBoard, &MockCatalog{}, nil)

	for _, args := range []map[string]interface{}{{"move": "lizard"}, {}, nil} {
		result, err := s.handlePlayMove(context.Background(), callTool("play_move", args))
		if err != nil {
			t.Fatalf("handlePlayMove failed: %v", err)
		}
		if !result.IsError {
			t.Errorf("Expected tool error for args %v", args)
		}
	}
}

func TestHandlePlayMove_AlertsPrepended(t *testing.T) {
	alerts := &Alerts{}
	mockBoard := &MockBoard{}
	mockBoard.OnMoveSelectedFunc = func(ctx context.Context, move engine.Move) (*service.GameResponse, error) {
		// The recovered attempt reported one failure
		alerts.Notify(ctx, "Session not found")
		return &service.GameResponse{
			Success:     true,
			SessionInfo: &service.SessionInfo{SessionID: "sess-2"},
			GameResult:  &service.GameResult{PlayerMove: move, ComputerMove: move, Result: engine.Draw},
		}, nil
	}
	s := NewServer(mockBoard, &MockCatalog{}, alerts)

	result, err := s.handlePlayMove(context.Background(), callTool("play_move", map[string]interface{}{"move": "PAPER"}))
	if err != nil {
		t.Fatalf("handlePlayMove failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.HasPrefix(text, "⚠️  Session not found\n") {
		t.Errorf("Expected alert first, got: %s", text)
	}
	if strings.Count(text, "Session not found") != 1 {
		t.Errorf("Expected exactly one alert, got: %s", text)
	}
	if len(alerts.Drain()) != 0 {
		t.Error("Alerts should be drained after the call")
	}
}

func TestHandlePlayMove_Failure(t *testing.T) {
	alerts := &Alerts{}
	mockBoard := &MockBoard{}
	mockBoard.OnMoveSelectedFunc = func(ctx context.Context, move engine.Move) (*service.GameResponse, error) {
		alerts.Notify(ctx, "Error Code: 500\nMessage: Internal Server Error")
		return nil, fmt.Errorf("API error: 500 Internal Server Error")
	}
	s := NewServer(mockBoard, &MockCatalog{}, alerts)

	result, _ := s.handlePlayMove(context.Background(), callTool("play_move", map[string]interface{}{"move": "PAPER"}))
	if !result.IsError {
		t.Fatal("Expected tool error")
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Error Code: 500") || !strings.Contains(text, "API error") {
		t.Errorf("Unexpected error text: %s", text)
	}
}

func TestHandleSessionInfo(t *testing.T) {
	created := &service.Timestamp{Time: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)}
	mockBoard := &MockBoard{Snap: board.Snapshot{SessionInfo: &service.SessionInfo{
		SessionID:   "sess-9",
		GamesPlayed: 4,
		Draws:       2,
		CreatedAt:   created,
	}}}
	s := NewServer(mockBoard, &MockCatalog{}, nil)

	result, err := s.handleSessionInfo(context.Background(), callTool("session_info", nil))
	if err != nil {
		t.Fatalf("handleSessionInfo failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Session: sess-9") || !strings.Contains(text, "Started: 2024-05-01 10:30:00") {
		t.Errorf("Unexpected session info: %s", text)
	}

	mockBoard.Snap = board.Snapshot{}
	result, _ = s.handleSessionInfo(context.Background(), callTool("session_info", nil))
	if !strings.Contains(resultText(t, result), "No active session") {
		t.Errorf("Expected no-session text, got: %s", resultText(t, result))
	}

	mockBoard.LoadSessionInfoFunc = func(ctx context.Context) error {
		return fmt.Errorf("validate: %w", service.ErrSessionNotFound)
	}
	result, _ = s.handleSessionInfo(context.Background(), callTool("session_info", nil))
	if result.IsError || !strings.Contains(resultText(t, result), "expired") {
		t.Errorf("Expected expired session text, got: %s", resultText(t, result))
	}
}

func TestHandleClearSession(t *testing.T) {
	mockBoard := &MockBoard{Snap: board.Snapshot{SessionID: "sess-1"}}
	s := NewServer(mockBoard, &MockCatalog{}, nil)

	result, _ := s.handleClearSession(context.Background(), callTool("clear_session", nil))
	if resultText(t, result) != "Session cleared." {
		t.Errorf("Unexpected result: %s", resultText(t, result))
	}
	if mockBoard.Snap.SessionID != "" {
		t.Error("Expected board session to be cleared")
	}
}

func TestHandleCatalogTools(t *testing.T) {
	s := NewServer(&MockBoard{}, &MockCatalog{}, nil)

	result, _ := s.handleAvailableMoves(context.Background(), callTool("available_moves", nil))
	text := resultText(t, result)
	for _, e := range []string{"✊ STONE", "✌️ SCISSORS", "✋ PAPER"} {
		if !strings.Contains(text, e) {
			t.Errorf("Expected %q in moves, got: %s", e, text)
		}
	}

	result, _ = s.handleGameRules(context.Background(), callTool("game_rules", nil))
	if !strings.Contains(resultText(t, result), "Paper beats Stone") {
		t.Errorf("Unexpected rules: %s", resultText(t, result))
	}

	s = NewServer(&MockBoard{}, &MockCatalog{Err: fmt.Errorf("connection refused")}, nil)
	result, _ = s.handleGameRules(context.Background(), callTool("game_rules", nil))
	if !result.IsError {
		t.Error("Expected tool error when the catalog fails")
	}
}

func TestAlerts(t *testing.T) {
	alerts := &Alerts{}
	alerts.Notify(context.Background(), "one")
	alerts.Notify(context.Background(), "two")

	got := alerts.Drain()
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Unexpected alerts %v", got)
	}
	if len(alerts.Drain()) != 0 {
		t.Error("Expected empty buffer after drain")
	}
}

func TestAlerts_Bounded(t *testing.T) {
	alerts := &Alerts{}
	for i := 0; i < MaxAlerts+5; i++ {
		alerts.Notify(context.Background(), fmt.Sprintf("Error Code: %d", 500+i))
	}

	got := alerts.Drain()
	if len(got) != MaxAlerts {
		t.Fatalf("Expected %d alerts, got %d", MaxAlerts, len(got))
	}
	if got[0] != "Error Code: 505" {
		t.Errorf("Expected the oldest alerts to be dropped, first is %q", got[0])
	}
	if got[MaxAlerts-1] != fmt.Sprintf("Error Code: %d", 500+MaxAlerts+4) {
		t.Errorf("Expected the newest alert last, got %q", got[MaxAlerts-1])
	}
}

func TestHandleStartNewGame_DropsAlertsRaisedElsewhere(t *testing.T) {
	alerts := &Alerts{}
	alerts.Notify(context.Background(), "Session not found")

	s := NewServer(&MockBoard{}, &MockCatalog{}, alerts)
	result, err := s.handleStartNewGame(context.Background(), callTool("start_new_game", nil))
	if err != nil {
		t.Fatal(err)
	}

	text := resultText(t, result)
	if strings.Contains(text, "Session not found") {
		t.Errorf("Expected alerts from before the call to be dropped, got %q", text)
	}
}
