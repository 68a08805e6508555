package strategy

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/service"
)

// ErrUnknownStrategy is returned by New for an unregistered name
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy picks the next move from the rounds played so far
type Strategy interface {
	Name() string
	NextMove(history []service.GameResult) engine.Move
}

// Names lists the registered strategies in alphabetical order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var registry = map[string]func(seed uint64) Strategy{
	"cycle":     func(uint64) Strategy { return Cycle{} },
	"counter":   func(uint64) Strategy { return Counter{} },
	"frequency": func(uint64) Strategy { return Frequency{} },
	"random":    func(seed uint64) Strategy { return NewRandom(seed) },
}

// New builds the strategy registered under name
func New(name string, seed uint64) (Strategy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	return build(seed), nil
}

// Cycle plays stone, scissors, paper in turn
type Cycle struct{}

func (Cycle) Name() string { return "cycle" }

func (Cycle) NextMove(history []service.GameResult) engine.Move {
	moves := engine.Moves()
	return moves[len(history)%len(moves)]
}

// Counter plays whatever beats the computer's previous move
type Counter struct{}

func (Counter) Name() string { return "counter" }

func (Counter) NextMove(history []service.GameResult) engine.Move {
	if len(history) == 0 {
		return engine.Stone
	}
	if m := history[len(history)-1].ComputerMove.Counter(); m != "" {
		return m
	}
	return engine.Stone
}

// Frequency counters the computer's most common move. Ties go to the
// earlier move in display order.
type Frequency struct{}

func (Frequency) Name() string { return "frequency" }

func (Frequency) NextMove(history []service.GameResult) engine.Move {
	counts := make(map[engine.Move]int)
	for _, r := range history {
		counts[r.ComputerMove]++
	}

	var best engine.Move
	for _, m := range engine.Moves() {
		if counts[m] > counts[best] {
			best = m
		}
	}
	if best == "" {
		return engine.Stone
	}
	return best.Counter()
}

// Random picks uniformly from the moves
type Random struct {
	rng *rand.Rand
}

// NewRandom seeds a Random strategy so runs can be replayed
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) Name() string { return "random" }

func (r *Random) NextMove([]service.GameResult) engine.Move {
	moves := engine.Moves()
	return moves[r.rng.IntN(len(moves))]
}
