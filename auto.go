package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/service"
	"github.com/wricardo/stonescissorspaper/game/strategy"
)

func (a *app) autoCommand() *cli.Command {
	return &cli.Command{
		Name:  "auto",
		Usage: "play unattended rounds with a strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "strategy",
				Value: "counter",
				Usage: "move strategy: " + strings.Join(strategy.Names(), ", "),
			},
			&cli.IntFlag{
				Name:  "rounds",
				Value: 10,
				Usage: "number of rounds to play",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed for the random strategy (default: current time)",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "pause between rounds",
			},
			&cli.BoolFlag{
				Name:  "new",
				Usage: "start a new session instead of continuing the stored one",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "print every round",
			},
		},
		Action: a.runAuto,
	}
}

// autoTally counts the outcomes of an unattended run
type autoTally struct {
	wins, losses, draws int
}

func (t *autoTally) add(r engine.Result) {
	switch r {
	case engine.Win:
		t.wins++
	case engine.Lose:
		t.losses++
	case engine.Draw:
		t.draws++
	}
}

func (a *app) runAuto(ctx context.Context, cmd *cli.Command) error {
	rounds := int(cmd.Int("rounds"))
	if rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", rounds)
	}

	seed := cmd.Uint64("seed")
	if !cmd.IsSet("seed") {
		seed = uint64(time.Now().UnixNano())
	}
	picker, err := strategy.New(cmd.String("strategy"), seed)
	if err != nil {
		return err
	}

	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	if cmd.Bool("new") {
		if _, err := g.board.StartNewGame(ctx); err != nil {
			return err
		}
	} else if err := a.restore(ctx, g); err != nil {
		return err
	}

	verbose := cmd.Bool("verbose")
	delay := cmd.Duration("delay")

	var history []service.GameResult
	var tally autoTally
	for i := 1; i <= rounds; i++ {
		move := picker.NextMove(history)
		resp, err := g.board.OnMoveSelected(ctx, move)
		if err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
		if resp.GameResult == nil {
			a.logger.Warn("round returned no result", zap.Int("round", i))
			continue
		}

		r := *resp.GameResult
		history = append(history, r)
		tally.add(r.Result)

		if verbose {
			fmt.Fprintf(a.out, "Round %d: %s %s vs %s %s  %s\n", i,
				r.PlayerMove.Emoji(), r.PlayerMove.Label(),
				r.ComputerMove.Emoji(), r.ComputerMove.Label(),
				r.Result.Headline())
		}

		if delay > 0 && i < rounds {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	fmt.Fprintf(a.out, "Strategy %s: %d rounds | Wins: %d | Losses: %d | Draws: %d\n",
		picker.Name(), len(history), tally.wins, tally.losses, tally.draws)
	renderBoard(a.out, g.board.Snapshot())
	return nil
}
