package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/stonescissorspaper/game/board"
	"github.com/wricardo/stonescissorspaper/game/engine"
	"github.com/wricardo/stonescissorspaper/game/service"
	"github.com/wricardo/stonescissorspaper/transport/httpapi"
)

// openTerminalGame opens a game whose failures are printed to the error
// output without waiting for acknowledgement
func (a *app) openTerminalGame() (*game, error) {
	a.quiet()
	return a.openGame(httpapi.NewWriterNotifier(a.errOut, nil))
}

// restore loads the stored session, ignoring one the server has forgotten
func (a *app) restore(ctx context.Context, g *game) error {
	err := g.svc.LoadSessionFromStorage(ctx)
	if err != nil && !errors.Is(err, service.ErrSessionNotFound) {
		return err
	}
	return nil
}

func (a *app) runStart(ctx context.Context, cmd *cli.Command) error {
	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	if _, err := g.board.StartNewGame(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "New game started!")
	renderBoard(a.out, g.board.Snapshot())
	return nil
}

func (a *app) runMove(ctx context.Context, cmd *cli.Command) error {
	move, err := engine.ParseMove(cmd.Args().First())
	if err != nil {
		return err
	}

	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	if err := a.restore(ctx, g); err != nil {
		return err
	}

	if _, err := g.board.OnMoveSelected(ctx, move); err != nil {
		return err
	}

	renderBoard(a.out, g.board.Snapshot())
	return nil
}

func (a *app) runSession(ctx context.Context, cmd *cli.Command) error {
	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.svc.LoadSessionFromStorage(ctx); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			fmt.Fprintln(a.out, "The stored session has expired and was cleared.")
			return nil
		}
		return err
	}

	if g.svc.CurrentSessionID() == "" {
		fmt.Fprintln(a.out, "No active session. Run 'ssp start' to begin.")
		return nil
	}

	if err := g.board.LoadSessionInfo(ctx); err != nil {
		return err
	}
	renderBoard(a.out, g.board.Snapshot())
	return nil
}

func (a *app) runClear(ctx context.Context, cmd *cli.Command) error {
	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.board.ClearSession(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Session cleared.")
	return nil
}

func (a *app) runMoves(ctx context.Context, cmd *cli.Command) error {
	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	moves, err := g.client.Moves(ctx)
	if err != nil {
		return err
	}

	for _, m := range moves {
		fmt.Fprintf(a.out, "%s %s\n", m.Emoji(), m)
	}
	return nil
}

func (a *app) runRules(ctx context.Context, cmd *cli.Command) error {
	g, err := a.openTerminalGame()
	if err != nil {
		return err
	}
	defer g.Close()

	rules, err := g.client.Rules(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, strings.TrimSpace(rules))
	return nil
}

// runPlay runs the interactive terminal board until the user quits or the
// input ends
func (a *app) runPlay(ctx context.Context, cmd *cli.Command) error {
	a.quiet()

	// Failures block until acknowledged, like a dialog
	g, err := a.openGame(httpapi.NewWriterNotifier(a.out, a.in))
	if err != nil {
		return err
	}
	defer g.Close()

	fmt.Fprintf(a.out, "%s v%s\n", AppName, Version)
	if err := g.board.Init(ctx); err != nil {
		a.logger.Debug("board init failed", zap.Error(err))
	}

	var playErr error
	sel := g.board.Selector(func(m engine.Move) {
		_, playErr = g.board.OnMoveSelected(ctx, m)
	})

	for {
		renderBoard(a.out, g.board.Snapshot())
		fmt.Fprint(a.out, "\n[1] ✊ Stone  [2] ✌️ Scissors  [3] ✋ Paper  [n]ew game  [c]lear session  [q]uit\n> ")

		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return nil
			}
			return err
		}

		choice := strings.ToLower(strings.TrimSpace(line))
		switch choice {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintln(a.out, "Bye!")
			return nil
		case "n", "new":
			// Failures were already shown by the notifier
			g.board.StartNewGame(ctx)
			continue
		case "c", "clear":
			if err := g.board.ClearSession(); err != nil {
				fmt.Fprintf(a.out, "Failed to clear session: %v\n", err)
			}
			continue
		}

		move, err := parseChoice(choice)
		if err != nil {
			fmt.Fprintf(a.out, "%v\n", err)
			continue
		}

		playErr = nil
		if !sel.Select(move) {
			fmt.Fprintln(a.out, "Please wait for the current round to finish.")
			continue
		}
		if playErr != nil {
			a.logger.Debug("move failed", zap.Error(playErr))
		}
	}
}

// parseChoice accepts a menu number or a move name
func parseChoice(choice string) (engine.Move, error) {
	moves := engine.Moves()
	switch choice {
	case "1", "2", "3":
		return moves[choice[0]-'1'], nil
	}
	return engine.ParseMove(choice)
}

// renderBoard prints a snapshot for the terminal
func renderBoard(w io.Writer, snap board.Snapshot) {
	fmt.Fprintln(w)
	if r := snap.LastResult; r != nil {
		fmt.Fprintf(w, "You: %s %s  vs  Computer: %s %s\n",
			r.PlayerMove.Emoji(), r.PlayerMove.Label(),
			r.ComputerMove.Emoji(), r.ComputerMove.Label())
		fmt.Fprintln(w, r.Result.Headline())
		if r.Message != "" {
			fmt.Fprintln(w, r.Message)
		}
		fmt.Fprintln(w)
	}

	info := snap.SessionInfo
	if info == nil {
		fmt.Fprintln(w, "No active session.")
		return
	}

	fmt.Fprintf(w, "Session: %s\n", info.SessionID)
	fmt.Fprintf(w, "Games: %d | Wins: %d | Losses: %d | Draws: %d | Win rate: %.1f%%\n",
		info.GamesPlayed, info.PlayerWins, info.ComputerWins, info.Draws, info.PlayerWinPercentage)
}
