package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/stonescissorspaper/game/board"
	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/service"
)

// Board is the board behavior the tools drive
type Board interface {
	Snapshot() board.Snapshot
	StartNewGame(ctx context.Context) (*service.GameResponse, error)
	OnMoveSelected(ctx context.Context, move engine.Move) (*service.GameResponse, error)
	LoadSessionInfo(ctx context.Context) error
	ClearSession() error
}

// Catalog serves the static game information
type Catalog interface {
	Moves(ctx context.Context) ([]engine.Move, error)
	Rules(ctx context.Context) (string, error)
}

// MaxAlerts bounds the Alerts buffer. Older messages are dropped first.
const MaxAlerts = 16

// Alerts collects request failure notifications raised while a tool runs so
// they can be shown with the tool result. Tools drain it before they start,
// so failures of other front ends sharing the client are not attached to
// their results.
type Alerts struct {
	mu       sync.Mutex
	messages []string
}

// Notify records message
func (a *Alerts) Notify(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) >= MaxAlerts {
		a.messages = append(a.messages[:0], a.messages[len(a.messages)-MaxAlerts+1:]...)
	}
	a.messages = append(a.messages, message)
}

// Drain returns and forgets the recorded messages
func (a *Alerts) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.messages
	a.messages = nil
	return out
}

// Server exposes the game board as MCP tools
type Server struct {
	board     Board
	catalog   Catalog
	alerts    *Alerts
	mcpServer *server.MCPServer
}

// NewServer creates the MCP tool server. alerts must be the notifier the
// API client reports to.
func NewServer(b Board, catalog Catalog, alerts *Alerts) *Server {
	if alerts == nil {
		alerts = &Alerts{}
	}

	s := &Server{
		board:   b,
		catalog: catalog,
		alerts:  alerts,
	}

	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Stone Scissors Paper",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Stone Scissors Paper - MCP Interface

Play Stone Scissors Paper against the computer. A session keeps the running
score and is remembered between runs.

AVAILABLE TOOLS:
- start_new_game: Start a fresh session (score resets)
- play_move: Play STONE, SCISSORS or PAPER
- session_info: Show the current session's statistics
- clear_session: Forget the current session
- available_moves: List the moves the server accepts
- game_rules: Show the rules

play_move starts a session automatically when none is active, and recovers
once if the server has forgotten the session.`),
	)

	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "start_new_game",
		Description: "Start a new game session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleStartNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "play_move",
		Description: "Play one round against the computer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"move": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"STONE", "SCISSORS", "PAPER"},
					"description": "Your move",
				},
			},
			Required: []string{"move"},
		},
	}, s.handlePlayMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "session_info",
		Description: "Get the statistics of the current session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleSessionInfo)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_session",
		Description: "Forget the current session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleClearSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "available_moves",
		Description: "List the moves accepted by the game server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleAvailableMoves)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until the input closes
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Tool handlers

func (s *Server) handleStartNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.alerts.Drain()

	if _, err := s.board.StartNewGame(ctx); err != nil {
		return s.toolError(err), nil
	}

	return s.toolText("New game started!\n\n" + formatSnapshot(s.board.Snapshot())), nil
}

func (s *Server) handlePlayMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.alerts.Drain()

	args, _ := request.Params.Arguments.(map[string]interface{})
	raw, _ := args["move"].(string)

	move, err := engine.ParseMove(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.board.OnMoveSelected(ctx, move)
	if err != nil {
		return s.toolError(err), nil
	}

	var result strings.Builder
	if resp.GameResult != nil {
		result.WriteString(formatGameResult(resp.GameResult))
		result.WriteString("\n")
	}
	result.WriteString(formatSnapshot(s.board.Snapshot()))

	return s.toolText(result.String()), nil
}

func (s *Server) handleSessionInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.alerts.Drain()

	if err := s.board.LoadSessionInfo(ctx); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return s.toolText("The session has expired. Use start_new_game to begin a new one."), nil
		}
		return s.toolError(err), nil
	}

	return s.toolText(formatSnapshot(s.board.Snapshot())), nil
}

func (s *Server) handleClearSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.alerts.Drain()

	if err := s.board.ClearSession(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Session cleared."), nil
}

func (s *Server) handleAvailableMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.alerts.Drain()

	moves, err := s.catalog.Moves(ctx)
	if err != nil {
		return s.toolError(err), nil
	}

	var result strings.Builder
	result.WriteString("Available moves:\n")
	for _, m := range moves {
		result.WriteString(fmt.Sprintf("- %s %s\n", m.Emoji(), m))
	}
	return s.toolText(result.String()), nil
}

func (s *Server) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.alerts.Drain()

	rules, err := s.catalog.Rules(ctx)
	if err != nil {
		return s.toolError(err), nil
	}
	return s.toolText(rules), nil
}

// toolText prefixes text with the alerts raised during the call
func (s *Server) toolText(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(withAlerts(s.alerts.Drain(), text))
}

// toolError reports err, preceded by the alerts raised during the call.
// The alert already carries the server's explanation when there is one.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(withAlerts(s.alerts.Drain(), err.Error()))
}

func withAlerts(alerts []string, text string) string {
	if len(alerts) == 0 {
		return text
	}

	var b strings.Builder
	for _, a := range alerts {
		b.WriteString("⚠️  ")
		b.WriteString(a)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(text)
	return b.String()
}
