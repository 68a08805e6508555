package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/stonescissorspaper/api"
	"github.com/wricardo/stonescissorspaper/transport/httpapi"
	"github.com/wricardo/stonescissorspaper/transport/mcp"
	"github.com/wricardo/stonescissorspaper/transport/websocket"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the browser board, WebSocket feed and /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "HTTP server host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port",
			},
			&cli.StringFlag{
				Name:  "static-dir",
				Usage: "directory with the board page",
			},
			&cli.BoolFlag{
				Name:  "ngrok",
				Usage: "expose the board through an ngrok tunnel",
			},
			&cli.StringFlag{
				Name:  "ngrok-domain",
				Usage: "custom ngrok domain (optional)",
			},
		},
		Action: a.runServe,
	}
}

// applyServeFlags overrides the configuration with serve flags
func (a *app) applyServeFlags(cmd *cli.Command) error {
	if cmd.IsSet("host") {
		a.cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		a.cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("static-dir") {
		a.cfg.StaticDir = cmd.String("static-dir")
	}
	if cmd.IsSet("ngrok") {
		a.cfg.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		a.cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}
	return a.cfg.Validate()
}

// runServe starts the board server with the WebSocket hub and, if enabled,
// an ngrok tunnel. It stops on SIGINT or SIGTERM.
func (a *app) runServe(ctx context.Context, cmd *cli.Command) error {
	if err := a.applyServeFlags(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(a.logger)
	alerts := &mcp.Alerts{}

	// Browsers get alerts over the WebSocket, /mcp callers with their result
	g, err := a.openGame(httpapi.Notifiers(hub, alerts))
	if err != nil {
		return err
	}
	defer g.Close()

	cancel := g.board.Subscribe(hub.BroadcastBoard)
	defer cancel()

	if err := g.board.Init(ctx); err != nil {
		a.logger.Warn("board init failed; the page can start a new game", zap.Error(err))
	}

	mcpServer := mcp.NewServer(g.board, g.client, alerts)
	handler := newServeMux(api.NewServer(g.board, hub, a.cfg.StaticDir, a.logger), mcpServer)

	httpServer := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return hub.Run(ctx)
	})

	eg.Go(func() error {
		a.logger.Info("board server listening",
			zap.String("addr", a.cfg.Addr()),
			zap.String("board", fmt.Sprintf("http://%s/", a.cfg.Addr())),
			zap.String("api", a.cfg.APIBaseURL))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if a.cfg.Ngrok.Enabled {
		eg.Go(func() error {
			return a.runNgrok(ctx, handler)
		})
	}

	return eg.Wait()
}

// runNgrok serves handler through an ngrok tunnel until ctx is done. A
// tunnel that cannot be established is logged and does not stop the server.
func (a *app) runNgrok(ctx context.Context, handler http.Handler) error {
	authToken := a.cfg.Ngrok.Authtoken
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		a.logger.Warn("ngrok enabled but no auth token provided (set ngrok.authtoken, SSP_NGROK_AUTHTOKEN or NGROK_AUTHTOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if a.cfg.Ngrok.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(a.cfg.Ngrok.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		a.logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return nil
	}

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	a.logger.Info("ngrok tunnel established", zap.String("url", tun.URL()))

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		a.logger.Error("ngrok server error", zap.Error(err))
	}
	return nil
}

// newServeMux mounts the board server at the root and the MCP server at /mcp
func newServeMux(board http.Handler, mcpServer *mcp.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", board)

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mux
}

// runMCP serves the MCP tools over stdio. Request failures are reported
// with the tool results.
func (a *app) runMCP(ctx context.Context, cmd *cli.Command) error {
	alerts := &mcp.Alerts{}
	g, err := a.openGame(alerts)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.svc.LoadSessionFromStorage(ctx); err != nil {
		a.logger.Info("stored session not restored", zap.Error(err))
	}
	if err := g.board.LoadSessionInfo(ctx); err != nil {
		a.logger.Info("session info unavailable", zap.Error(err))
	}
	alerts.Drain()

	a.logger.Info("MCP stdio server ready", zap.String("api", a.cfg.APIBaseURL))
	return mcp.NewServer(g.board, g.client, alerts).ServeStdio()
}
