package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/wricardo/stonescissorspaper/game/engine"
)

// SessionInfo describes a server-side game session and its running score
type SessionInfo struct {
	SessionID           string     `json:"sessionId"`
	GamesPlayed         int        `json:"gamesPlayed"`
	PlayerWins          int        `json:"playerWins"`
	ComputerWins        int        `json:"computerWins"`
	Draws               int        `json:"draws"`
	PlayerWinPercentage float64    `json:"playerWinPercentage"`
	CreatedAt           *Timestamp `json:"createdAt,omitempty"`
	LastActivity        *Timestamp `json:"lastActivity,omitempty"`
}

// GameResult describes the outcome of a single round
type GameResult struct {
	PlayerMove   engine.Move   `json:"playerMove"`
	ComputerMove engine.Move   `json:"computerMove"`
	Result       engine.Result `json:"result"`
	Message      string        `json:"message,omitempty"`
	Timestamp    *Timestamp    `json:"timestamp,omitempty"`
}

// GameResponse is the envelope returned by every game API call
type GameResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	SessionInfo *SessionInfo `json:"sessionInfo,omitempty"`
	GameResult  *GameResult  `json:"gameResult,omitempty"`
}

// PlayRequest is the body of a play call
type PlayRequest struct {
	PlayerMove engine.Move `json:"playerMove"`
	SessionID  string      `json:"sessionId"`
}

// Timestamp decodes instants the game API sends either as RFC 3339 strings
// or as numeric epoch seconds (with optional fractional part)
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	whole, frac := math.Modf(seconds)
	t.Time = time.Unix(int64(whole), int64(frac*1e9)).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
