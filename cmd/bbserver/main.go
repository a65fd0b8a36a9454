// Command bbserver runs the block-and-ball REST and WebSocket API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bbengine/internal/config"
	"github.com/yourusername/bbengine/pkg/api"
	"github.com/yourusername/bbengine/pkg/engine"
	"github.com/yourusername/bbengine/pkg/external"
)

const version = "0.1.0"

func main() {
	// .env values become flag defaults; flags still win
	env, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	def := api.DefaultConfig()

	host := flag.String("host", config.StringOr(env.Host, def.Host), "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", config.IntOr(env.Port, def.Port), "Port to listen on")
	fastWorkers := flag.Int("fast-workers", config.IntOr(env.MaxFastWorkers, def.MaxFastWorkers), "Max concurrent fast requests")
	slowWorkers := flag.Int("slow-workers", config.IntOr(env.MaxSlowWorkers, def.MaxSlowWorkers), "Max concurrent self-play requests")
	strict := flag.Bool("strict", env.Strict, "Strict ball pass and ball carrier checks")
	maxRounds := flag.Int("max-rounds", env.MaxRounds, "Default round limit for games (0 = none)")
	cacheSize := flag.Int("cache", engine.DefaultCacheSize, "Action cache entries (negative disables)")
	readTimeout := flag.Duration("read-timeout", def.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", def.WriteTimeout, "HTTP write timeout")
	externalPort := flag.Int("external-port", env.ExternalPort, "Port for the external player protocol (0 = off)")
	debug := flag.Bool("debug", false, "Development logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bbserver v%s\n", version)
		os.Exit(0)
	}

	var logger *zap.Logger
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	eng, err := engine.NewEngine(engine.EngineOptions{
		CacheSize:         *cacheSize,
		StrictBallPass:    *strict,
		StrictBallCarrier: *strict,
		MaxRounds:         *maxRounds,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("failed to create engine", zap.Error(err))
	}

	cfg := api.ServerConfig{
		Host:           *host,
		Port:           *port,
		ReadTimeout:    *readTimeout,
		WriteTimeout:   *writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: *fastWorkers,
		MaxSlowWorkers: *slowWorkers,
	}

	if *externalPort > 0 {
		ext := external.NewServer(eng, external.ServerOptions{
			Host:          *host,
			Port:          *externalPort,
			PromptEnabled: true,
		})
		if err := ext.Start(); err != nil {
			logger.Fatal("external player server failed", zap.Error(err))
		}
		defer ext.Stop()
	}

	server := api.NewServer(eng, cfg, version)
	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
