// Command ssp plays Stone Scissors Paper against a remote game API.
//
// It has three front ends over the same game board:
//  1. "play" – an interactive terminal board
//  2. "serve" – a local HTTP server with the browser board, a WebSocket feed,
//     an /mcp HTTP endpoint and optional ngrok tunneling
//  3. "mcp" – an MCP stdio server for AI agents
//
// One-shot commands (start, move, session, clear, moves, rules) run a single
// operation against the stored session and exit. "auto" plays unattended
// rounds with a strategy and "config" prints the effective configuration.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wricardo/stonescissorspaper/game/board"
	"github.com/wricardo/stonescissorspaper/game/config"
	"github.com/wricardo/stonescissorspaper/game/service"
	"github.com/wricardo/stonescissorspaper/game/session"
	"github.com/wricardo/stonescissorspaper/transport/httpapi"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Stone Scissors Paper"
)

// app carries what every command needs once flags are parsed
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	level  zap.AtomicLevel

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		logger: zap.NewNop(),
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
}

// game is one wiring of storage, API client, session service and board
type game struct {
	board  *board.Board
	svc    service.GameService
	client *httpapi.Client
	closer io.Closer
}

func (g *game) Close() error {
	return g.closer.Close()
}

// main builds the command tree and runs it.
func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.logger.Sync()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "ssp",
		Usage:     "play Stone Scissors Paper against the game API",
		Version:   Version,
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("SSP_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "game API base URL (e.g. http://localhost:8080/api)",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "session storage backend: file, bolt or memory",
			},
			&cli.StringFlag{
				Name:  "storage-path",
				Usage: "session storage location",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "play in the terminal",
				Action: a.runPlay,
			},
			{
				Name:   "start",
				Usage:  "start a new game session",
				Action: a.runStart,
			},
			{
				Name:      "move",
				Usage:     "play one round",
				ArgsUsage: "<stone|scissors|paper>",
				Action:    a.runMove,
			},
			{
				Name:   "session",
				Usage:  "show the stored session's statistics",
				Action: a.runSession,
			},
			{
				Name:   "clear",
				Usage:  "forget the stored session",
				Action: a.runClear,
			},
			{
				Name:   "moves",
				Usage:  "list the moves the server accepts",
				Action: a.runMoves,
			},
			{
				Name:   "rules",
				Usage:  "show the game rules",
				Action: a.runRules,
			},
			a.autoCommand(),
			{
				Name:   "config",
				Usage:  "validate and print the effective configuration",
				Action: a.runConfig,
			},
			a.serveCommand(),
			{
				Name:   "mcp",
				Usage:  "run an MCP stdio server",
				Action: a.runMCP,
			},
		},
		Action: a.runPlay,
	}
}

// before loads .env and the configuration, applies global flags and sets
// up logging
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(a.errOut, "Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("api-url") {
		cfg.APIBaseURL = cmd.String("api-url")
	}
	if cmd.IsSet("storage") {
		cfg.Storage = cmd.String("storage")
	}
	if cmd.IsSet("storage-path") {
		cfg.StoragePath = cmd.String("storage-path")
	}

	if err := cfg.Validate(); err != nil {
		return ctx, err
	}
	a.cfg = cfg

	a.logger, a.level = newLogger(cfg.Debug, a.errOut)

	return ctx, nil
}

// newLogger builds a development console logger when debug is set and a
// production JSON logger otherwise. Both write to w.
func newLogger(debug bool, w io.Writer) (*zap.Logger, zap.AtomicLevel) {
	if debug {
		level := zap.NewAtomicLevelAt(zap.DebugLevel)
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(w)),
			level)
		return zap.New(core, zap.Development(), zap.AddCaller()), level
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	level := cfg.Level
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg.EncoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		level)
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(w))), level
}

// quiet keeps terminal output to notifications and results unless debugging
func (a *app) quiet() {
	if !a.cfg.Debug {
		a.level.SetLevel(zap.ErrorLevel)
	}
}

// openGame wires storage, the API client, the session service and a board.
// Request failures are reported to notifier.
func (a *app) openGame(notifier httpapi.Notifier) (*game, error) {
	store, closer, err := session.Open(a.cfg.Storage, a.cfg.ResolvedStoragePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	client := httpapi.NewClient(a.cfg.APIBaseURL, notifier,
		httpapi.WithTimeout(a.cfg.RequestTimeout),
		httpapi.WithLogger(a.logger))
	svc := service.NewGameService(client, store, service.WithLogger(a.logger))

	return &game{
		board:  board.New(svc, board.WithLogger(a.logger)),
		svc:    svc,
		client: client,
		closer: closer,
	}, nil
}
