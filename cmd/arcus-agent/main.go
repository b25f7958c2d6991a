// Command arcus-agent runs a minimal orchestration agent against a running
// game server: it connects, completes the handshake, logs every incoming
// message, and answers the query opcodes the game server may send.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/client"
	"github.com/arcus-sdk/go-arcus/pkg/config"
	"github.com/arcus-sdk/go-arcus/pkg/connection"
	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/metrics"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "arcus-agent",
		Usage: "run a minimal Arcus orchestration agent",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultConfigPath, Usage: "path to YAML configuration"},
			&cli.StringFlag{Name: "address", Usage: "override Client.ServerAddress"},
			&cli.IntFlag{Name: "port", Usage: "override Client.ServerPort"},
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
	if c.IsSet("address") {
		cfg.Client.ServerAddress = c.String("address")
	}
	if c.IsSet("port") {
		cfg.Client.ServerPort = c.Int("port")
	}

	logger, err := buildLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	hostID := uuid.New().String()
	cl := client.New(clientConfigFrom(cfg.Client, logger))
	if err := cl.Init(); err != nil {
		return fmt.Errorf("arcus-agent: init: %w", err)
	}
	defer cl.Shutdown()

	cl.SetCallbacks(client.Callbacks{
		LiveStateResponse: func(players, maxPlayers int, name, mapName, mode, version string) {
			logger.Info("live state",
				zap.Int("players", players), zap.Int("max_players", maxPlayers),
				zap.String("name", name), zap.String("map", mapName),
				zap.String("mode", mode), zap.String("version", version))
		},
		PlayerJoined: func(id int) { logger.Info("player joined", zap.Int("player_id", id)) },
		PlayerLeft:   func(id int) { logger.Info("player left", zap.Int("player_id", id)) },
		HostInformationRequest: func() {
			logger.Info("host information requested")
			resp := message.NewPayload()
			resp.SetString("id", hostID)
			if err := cl.SendHostInformationResponse(resp); err != nil {
				logger.Warn("failed to answer host_information_request", zap.Error(err))
			}
		},
		ApplicationInstanceInformationRequest: func() {
			resp := message.NewPayload()
			resp.SetString("application_instance_id", hostID)
			if err := cl.SendApplicationInstanceInformationResponse(resp); err != nil {
				logger.Warn("failed to answer application_instance_information_request", zap.Error(err))
			}
		},
		ApplicationInstanceGetStatusRequest: func() {
			if err := cl.SendApplicationInstanceGetStatusResponse(4); err != nil {
				logger.Warn("failed to answer application_instance_get_status_request", zap.Error(err))
			}
		},
		ApplicationInstanceSetStatusRequest: func(status int) {
			logger.Info("application instance status set", zap.Int("status", status))
			if err := cl.SendApplicationInstanceSetStatusResponse(true); err != nil {
				logger.Warn("failed to answer application_instance_set_status_request", zap.Error(err))
			}
		},
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			logger.Info("arcus-agent: shutting down")
			return nil
		case now := <-ticker.C:
			if err := cl.Update(now); err != nil {
				logger.Debug("arcus-agent: update", zap.Error(err))
			}
		}
	}
}

// clientConfigFrom translates the YAML-facing config.Client into the
// client.Config the façade actually takes, wiring in the shared Prometheus
// collector as the Connection's Observer.
func clientConfigFrom(c config.Client, logger *zap.Logger) client.Config {
	return client.Config{
		ServerAddress:     c.ServerAddress,
		ServerPort:        c.ServerPort,
		ReconnectInterval: c.ReconnectInterval,
		Observer:          metrics.Collector{},
		Logger:            logger,
		Connection: connection.Config{
			HandshakeTimeout:      c.HandshakeTimeout,
			HealthSendInterval:    c.HealthSendInterval,
			HealthReceiveInterval: c.HealthReceiveInterval,
		},
	}
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
