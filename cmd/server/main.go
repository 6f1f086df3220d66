// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Command server runs one instance of the single-connection async server:
// it binds a listener, waits for exactly one client, and pumps
// request/response traffic through a line-delimited-JSON echo service, while
// a sibling HTTP endpoint exposes Prometheus metrics for the run. The echo
// service never reports itself finished, so the pump keeps serving until a
// fatal error or SIGINT/SIGTERM ends it.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/tomtom215/asyncserver/internal/config"
	"github.com/tomtom215/asyncserver/internal/echoservice"
	"github.com/tomtom215/asyncserver/internal/logging"
	"github.com/tomtom215/asyncserver/internal/metrics"
	"github.com/tomtom215/asyncserver/internal/obspump"
	"github.com/tomtom215/asyncserver/internal/pump"
	"github.com/tomtom215/asyncserver/internal/server"
	"github.com/tomtom215/asyncserver/internal/service"
	"github.com/tomtom215/asyncserver/internal/sharedcodec"
	"github.com/tomtom215/asyncserver/internal/supervisor"

	"github.com/tomtom215/asyncserver/internal/codec/linejson"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logFormat := "console"
	if cfg.Logging.JSONOutput {
		logFormat = "json"
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    logFormat,
		Timestamp: true,
		Output:    os.Stderr,
	})

	connID := uuid.NewString()
	observer := obspump.New(connID)

	codec := linejson.New[echoservice.Message, echoservice.Message]()
	codecMu := &sharedcodec.Mutex{}
	factory := pump.ServiceFactory[echoservice.Message, echoservice.Message](
		func() (service.Service[echoservice.Message, echoservice.Message], error) {
			return echoservice.NewEcho(), nil
		},
	)

	asyncSrv := server.New(cfg.Server.ListenAddr, codec, codecMu, factory, observer)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(supervisor.NewService(asyncSrv, "asyncserver"))

	if cfg.Metrics.Enabled {
		metricsServer := &http.Server{
			Addr:    cfg.Metrics.ListenAddr,
			Handler: metrics.Handler(),
		}
		tree.Add(supervisor.NewHTTPService(metricsServer, "metrics", cfg.Server.ShutdownGrace))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("conn_id", connID).
		Str("listen_addr", cfg.Server.ListenAddr).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Msg("starting server")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor tree exited with error")
	}
}
