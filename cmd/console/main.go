// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/relabs-tech/sensor_bridge/internal/app"
	"github.com/relabs-tech/sensor_bridge/internal/logging"
)

func main() {
	if err := logging.Setup(os.Stderr, "warn"); err != nil {
		log.Fatal("logging setup", "err", err)
	}
	log.Warn("starting sensor bridge (mock console)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsole(ctx, os.Stdout); err != nil {
		log.Fatal("fatal", "err", err)
	}
}
