package main

import (
	"deovr-bridge/pkg/config"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/service-api/internal/app"
)

func main() {
	// Initialize configuration
	cfg := config.NewConfig()

	// Initialize logger
	logger.InitLogger(cfg)

	// Create and start the application server
	server := app.NewAppServer(cfg)
	server.Serve()
}
