package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/mindtrailco/mindtrail/pkg/logger"
	"github.com/mindtrailco/mindtrail/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to TOML config file")
	listenAddr := flag.String("listen", "", "Address to listen on")
	completionURL := flag.String("completion-url", "", "Completion service base URL (default: built-in mock)")
	dbPath := flag.String("db", "", "Path to SQLite database (default: in-memory)")
	minDelay := flag.Duration("min-delay", 0, "Minimum mock completion delay")
	maxDelay := flag.Duration("max-delay", 0, "Maximum mock completion delay")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Set up logger
	logger := logger.NewLogger(*debug)
	defer logger.Sync()

	config := server.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = server.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
	}

	// Flags override the config file
	if *listenAddr != "" {
		config.ListenAddr = *listenAddr
	}
	if *completionURL != "" {
		config.CompletionURL = *completionURL
	}
	if *dbPath != "" {
		config.DBPath = *dbPath
	}
	if *minDelay != 0 {
		config.MinResponseDelay = server.Duration{Duration: *minDelay}
	}
	if *maxDelay != 0 {
		config.MaxResponseDelay = server.Duration{Duration: *maxDelay}
	}

	logger.Info("mindtrail chat server starting",
		zap.String("listen", config.ListenAddr),
		zap.String("db", config.DBPath),
		zap.Duration("min_delay", config.MinResponseDelay.Duration),
		zap.Duration("max_delay", config.MaxResponseDelay.Duration),
		zap.Bool("debug", *debug),
	)

	// Create and run the server
	s, err := server.New(config, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}
	defer s.Close()

	if err := s.Run(); err != nil {
		logger.Fatal("chat server failed", zap.Error(err))
	}
}
