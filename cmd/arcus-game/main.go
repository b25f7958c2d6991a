// Command arcus-game runs the example game harness: a Server façade plus an
// interactive operator console for inspecting status and driving
// application-instance status changes, the way the reference SDK's fake
// game executable exists to exercise the Server side of the protocol end
// to end.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/config"
	"github.com/arcus-sdk/go-arcus/pkg/connection"
	"github.com/arcus-sdk/go-arcus/pkg/game"
	"github.com/arcus-sdk/go-arcus/pkg/metrics"
	"github.com/arcus-sdk/go-arcus/pkg/server"
	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "arcus-game",
		Usage: "run the Arcus example game harness",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultConfigPath, Usage: "path to YAML configuration"},
			&cli.IntFlag{Name: "port", Usage: "override Server.ListenPort"},
			&cli.BoolFlag{Name: "console", Usage: "start an interactive operator console"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		cfg = config.Config{}
	}
	if c.IsSet("port") {
		cfg.Server.ListenPort = c.Int("port")
	}

	logger, err := buildLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Server.MetricsAddr != "" {
		go metrics.Serve(cfg.Server.MetricsAddr, logger)
	}

	g := game.New(game.Config{Server: serverConfigFrom(cfg.Server), Logger: logger})
	if err := g.Init(); err != nil {
		return fmt.Errorf("arcus-game: init: %w", err)
	}
	defer g.Shutdown()

	logger.Info("arcus-game: listening", zap.Int("port", g.Server().Port()))

	if c.Bool("console") {
		go runConsole(g, logger)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			logger.Info("arcus-game: shutting down")
			return nil
		case now := <-ticker.C:
			if err := g.Update(now); err != nil {
				logger.Warn("arcus-game: update failed", zap.Error(err))
			}
		}
	}
}

// serverConfigFrom translates the YAML-facing config.Server into the
// server.Config the façade actually takes, wiring in the shared Prometheus
// collector as the Connection's Observer.
func serverConfigFrom(c config.Server) server.Config {
	return server.Config{
		ListenPort: c.ListenPort,
		Observer:   metrics.Collector{},
		Connection: connection.Config{
			HandshakeTimeout:      c.HandshakeTimeout,
			HealthSendInterval:    c.HealthSendInterval,
			HealthReceiveInterval: c.HealthReceiveInterval,
			IncomingQueueCapacity: c.IncomingQueueCapacity,
			OutgoingQueueCapacity: c.OutgoingQueueCapacity,
		},
	}
}

var applicationInstanceStatusByName = map[string]server.ApplicationInstanceStatus{
	"starting":  server.ApplicationInstanceStatusStarting,
	"online":    server.ApplicationInstanceStatusOnline,
	"allocated": server.ApplicationInstanceStatusAllocated,
}

func buildLogger(cfg config.Logger) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, err
		}
	}
	encoding := cfg.LogEncoding
	if encoding == "" {
		encoding = "console"
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Encoding = encoding
	if cfg.LogPath != "" {
		zc.OutputPaths = []string{cfg.LogPath}
	}
	return zc.Build()
}

// runConsole drives a readline prompt on the calling goroutine,
// letting an operator inspect status and drive application-instance status
// changes without restarting the process. It stops silently once stdin
// closes (EOF), the same shutdown path the teacher's interactive tooling
// uses.
func runConsole(g *game.Game, logger *zap.Logger) {
	rl, err := readline.New("arcus> ")
	if err != nil {
		logger.Warn("arcus-game: console unavailable", zap.Error(err))
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		args, err := shellquote.Split(line)
		if err != nil || len(args) == 0 {
			continue
		}
		switch args[0] {
		case "status":
			fmt.Println(g.Server().Status())
		case "set_status":
			if len(args) < 2 {
				fmt.Println("usage: set_status <starting|online|allocated>")
				continue
			}
			status, ok := applicationInstanceStatusByName[args[1]]
			if !ok {
				fmt.Println("unknown status, try: starting, online, allocated")
				continue
			}
			if err := g.Server().SendApplicationInstanceSetStatusRequest(status); err != nil {
				fmt.Println("error:", err)
			}
		case "players":
			if len(args) > 1 {
				count, err := strconv.Atoi(args[1])
				if err != nil {
					fmt.Println("error:", err)
					continue
				}
				g.SetPlayerCount(count)
			}
		case "help":
			fmt.Println(strings.Join([]string{"status", "set_status <starting|online|allocated>", "players <count>", "help", "quit"}, ", "))
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command, try: help")
		}
	}
}
