package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/floatdr/forum/internal/config"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/router"
	"github.com/floatdr/forum/internal/setup"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("setup failed", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	r := router.SetupRouter(deps)

	server := &http.Server{
		Addr:         cfg.Public.Listen,
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logger.Log.Info("server started", "addr", server.Addr, "store", cfg.Public.Store.Driver)
	if err := server.ListenAndServe(); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
