// Command gomokuserver runs the Gomoku search REST API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yourusername/gomokuengine/internal/heuristic"
	"github.com/yourusername/gomokuengine/internal/logging"
	"github.com/yourusername/gomokuengine/pkg/api"
	"github.com/yourusername/gomokuengine/pkg/engine"
	"github.com/yourusername/gomokuengine/pkg/external"
	"github.com/yourusername/gomokuengine/pkg/store"
)

const version = "0.1.0"

func main() {
	defaults := api.DefaultConfig()

	// Command line flags
	host := flag.String("host", defaults.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", defaults.Port, "Port to listen on")
	weightsFile := flag.String("weights", "", "Path to heuristic weights JSON (default: built-in)")
	dbPath := flag.String("db", "data/analyses.db", "Path to the analysis database (empty disables storage)")
	defaultDepth := flag.Int("depth", defaults.DefaultDepth, "Search depth when a request names none")
	maxDepth := flag.Int("max-depth", defaults.MaxDepth, "Deepest search a request may ask for")
	searches := flag.Int("searches", defaults.MaxSlowWorkers, "Max concurrent searches")
	readTimeout := flag.Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	protocolPort := flag.Int("protocol-port", 0, "Also serve the brain protocol on this TCP port (0 disables)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "console", "Log format (console, json)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Gomoku API Server v%s\n", version)
		os.Exit(0)
	}

	logger, err := logging.Setup(logging.Config{Level: *logLevel, Format: *logFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	weights := heuristic.DefaultWeights()
	if *weightsFile != "" {
		weights, err = heuristic.LoadWeights(*weightsFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", *weightsFile).Msg("failed to load weights")
		}
		logger.Info().Str("file", *weightsFile).Msg("heuristic weights loaded")
	}

	eng, err := engine.NewMinimaxEngine(heuristic.NewThreatEvaluator(weights))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	var st *store.Store
	if *dbPath != "" {
		st, err = store.Open(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("db", *dbPath).Msg("failed to open analysis database")
		}
		defer st.Close()
		logger.Info().Str("db", *dbPath).Msg("analysis database ready")
	}

	if *protocolPort > 0 {
		opts := external.DefaultServerOptions()
		opts.Host = *host
		opts.Port = *protocolPort
		opts.Depth = *defaultDepth
		opts.Version = version
		brain := external.NewServer(eng, opts, logger.With().Str("component", "protocol").Logger())
		if err := brain.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start protocol server")
		}
		defer brain.Stop()
	}

	// Create server config
	config := defaults
	config.Host = *host
	config.Port = *port
	config.ReadTimeout = *readTimeout
	config.WriteTimeout = *writeTimeout
	config.IdleTimeout = 60 * time.Second
	config.MaxSlowWorkers = *searches
	config.DefaultDepth = *defaultDepth
	config.MaxDepth = *maxDepth

	// Create and start server
	server := api.NewServer(eng, st, config, version, logger)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		logger.Error().Err(err).Msg("server error")
		if st != nil {
			st.Close()
		}
		os.Exit(1)
	}
}
