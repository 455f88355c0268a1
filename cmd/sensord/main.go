// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/sensor_bridge/internal/app"
	"github.com/relabs-tech/sensor_bridge/internal/config"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
)

func main() {
	configPath := flag.String("config", "sensor_bridge_config.txt", "path to the KEY=VALUE config file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatal("failed to load config", "path", *configPath, "err", err)
	}
	cfg := config.Get()

	if err := logging.Setup(os.Stderr, cfg.LogLevel); err != nil {
		log.Fatal("invalid log level", "err", err)
	}
	log.Info("starting sensor bridge", "backend", cfg.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDaemon(ctx, cfg); err != nil {
		log.Fatal("fatal", "err", err)
	}
}
