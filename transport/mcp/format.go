package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/stonescissorspaper/game/board"
	"github.com/wricardo/stonescissorspaper/game/service"
)

// Formatting helpers

func formatGameResult(r *service.GameResult) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("You: %s %s  vs  Computer: %s %s\n",
		r.PlayerMove.Emoji(), r.PlayerMove.Label(),
		r.ComputerMove.Emoji(), r.ComputerMove.Label()))
	result.WriteString(r.Result.Headline())
	result.WriteString("\n")
	if r.Message != "" {
		result.WriteString(r.Message)
		result.WriteString("\n")
	}
	return result.String()
}

func formatSessionInfo(info *service.SessionInfo) string {
	if info == nil {
		return "No active session. Use start_new_game to begin."
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Session: %s\n", info.SessionID))
	result.WriteString(fmt.Sprintf("Games: %d | Wins: %d | Losses: %d | Draws: %d | Win rate: %.1f%%\n",
		info.GamesPlayed, info.PlayerWins, info.ComputerWins, info.Draws, info.PlayerWinPercentage))
	if info.CreatedAt != nil {
		result.WriteString(fmt.Sprintf("Started: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	if info.LastActivity != nil {
		result.WriteString(fmt.Sprintf("Last activity: %s\n", info.LastActivity.Format("2006-01-02 15:04:05")))
	}
	return result.String()
}

func formatSnapshot(snap board.Snapshot) string {
	return formatSessionInfo(snap.SessionInfo)
}
