// Package mcp provides a Model Context Protocol server for playing Stone
// Scissors Paper from AI agents.
//
// MCP Tools:
//   - start_new_game: Start a new session
//   - play_move: Play STONE, SCISSORS or PAPER
//   - session_info: Current session statistics
//   - clear_session: Forget the current session
//   - available_moves: Moves accepted by the game server
//   - game_rules: Rules text from the game server
//
// The tools drive the same board as the terminal and browser front ends, so
// a play against an expired session is recovered the same way.
//
// Alerts:
//
// Agents cannot see a dialog, so the API client reports failed requests to
// an Alerts buffer. Alerts raised while a tool runs are prepended to that
// tool's result.
//
// Usage:
//
//	alerts := &mcp.Alerts{}
//	client := httpapi.NewClient(apiURL, alerts)
//	...
//	srv := mcp.NewServer(board, client, alerts)
//	if err := srv.ServeStdio(); err != nil {
//		return err
//	}
package mcp
