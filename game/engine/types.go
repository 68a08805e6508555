package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidMove   = errors.New("invalid move")
	ErrInvalidResult = errors.New("invalid result")
)

// Move represents one of the player choices
type Move string

const (
	Stone    Move = "STONE"
	Scissors Move = "SCISSORS"
	Paper    Move = "PAPER"
)

// Result represents the outcome of a single round from the player's side
type Result string

const (
	Win  Result = "WIN"
	Lose Result = "LOSE"
	Draw Result = "DRAW"
)

// Moves returns every move in display order
func Moves() []Move {
	return []Move{Stone, Scissors, Paper}
}

// ParseMove converts user input into a Move. Matching is case-insensitive
// and ignores surrounding blanks.
func ParseMove(s string) (Move, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fmt.Errorf("%w: move is required", ErrInvalidMove)
	}

	candidate := Move(strings.ToUpper(trimmed))
	for _, m := range Moves() {
		if m == candidate {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q (valid moves: STONE, SCISSORS, PAPER)", ErrInvalidMove, s)
}

// IsValidMove reports whether s names a move
func IsValidMove(s string) bool {
	_, err := ParseMove(s)
	return err == nil
}

// Emoji returns the hand sign shown for the move
func (m Move) Emoji() string {
	switch m {
	case Stone:
		return "✊"
	case Scissors:
		return "✌️"
	case Paper:
		return "✋"
	default:
		return "❔"
	}
}

// Label returns the move name in title case
func (m Move) Label() string {
	if m == "" {
		return ""
	}
	s := strings.ToLower(string(m))
	return strings.ToUpper(s[:1]) + s[1:]
}

// UnmarshalJSON accepts move names in any case
func (m *Move) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*m = ""
		return nil
	}
	parsed, err := ParseMove(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseResult converts an API result value into a Result
func ParseResult(s string) (Result, error) {
	switch Result(strings.ToUpper(strings.TrimSpace(s))) {
	case Win:
		return Win, nil
	case Lose:
		return Lose, nil
	case Draw:
		return Draw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidResult, s)
}

// UnmarshalJSON accepts results in any case; the game API emits them lower-case
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*r = ""
		return nil
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Headline returns the short banner shown for a result
func (r Result) Headline() string {
	switch r {
	case Win:
		return "🎉 You win!"
	case Lose:
		return "💀 You lose!"
	case Draw:
		return "🤝 It's a draw!"
	default:
		return ""
	}
}

// Counter returns the move that beats m
func (m Move) Counter() Move {
	switch m {
	case Stone:
		return Paper
	case Scissors:
		return Stone
	case Paper:
		return Scissors
	default:
		return ""
	}
}

// Beats reports whether m wins against other
func (m Move) Beats(other Move) bool {
	return other != "" && other.Counter() == m
}
