package selector

import "github.com/wricardo/stonescissorspaper/game/engine"

// Option is one selectable move as a front end renders it
type Option struct {
	Move     engine.Move `json:"move"`
	Label    string      `json:"label"`
	Emoji    string      `json:"emoji"`
	Disabled bool        `json:"disabled"`
}

// Selector offers the moves to the player and forwards a choice unless a
// request is in flight
type Selector struct {
	IsLoading func() bool
	OnSelect  func(engine.Move)
}

// Select emits move to OnSelect unless loading. It reports whether the
// move was emitted.
func (s *Selector) Select(move engine.Move) bool {
	if s.loading() || s.OnSelect == nil {
		return false
	}
	s.OnSelect(move)
	return true
}

// Options lists every move, disabled while loading
func (s *Selector) Options() []Option {
	disabled := s.loading()
	moves := engine.Moves()
	options := make([]Option, 0, len(moves))
	for _, m := range moves {
		options = append(options, Option{
			Move:     m,
			Label:    m.Label(),
			Emoji:    m.Emoji(),
			Disabled: disabled,
		})
	}
	return options
}

func (s *Selector) loading() bool {
	return s.IsLoading != nil && s.IsLoading()
}
