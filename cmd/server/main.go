package main

import (
	"strings"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/config"
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/server"
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/util"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	// Built from the raw DEBUG/LOG_LEVEL env vars, before config.Load, so
	// Load's own clamp/validation warnings (§10.2) land on a real backend
	// instead of the no-op logger.Warn the nil singleton gives before Init.
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		Level: strings.ToUpper(util.GetEnvString("LOG_LEVEL", "INFO")),
	})
	logger.Init(consoleLogger)

	cfg := config.Load()
	server.Init(cfg)
}
