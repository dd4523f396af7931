package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"scout/internal/services"
	"scout/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	httpClient := &http.Client{
		Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second,
	}

	guestID, err := shared.LoadGuestID(shared.ExpandPath(config.Auth.GuestIDPath))
	if err != nil {
		logger.Warn("failed to load guest identity", "error", err)
	}

	authService := services.NewAuthService(services.AuthOpts{
		BaseURL:    config.API.BaseURL,
		HTTPClient: httpClient,
		TokenPath:  shared.ExpandPath(config.Auth.TokenPath),
		GuestID:    guestID,
	})

	discoveryService := services.NewDiscoveryService(services.DiscoveryOpts{
		BaseURL:    config.API.BaseURL,
		HTTPClient: httpClient,
		RateLimit:  config.API.RateLimit,
		Creds:      authService,
		BufferSize: config.Stream.BufferSize,
	})

	apiService := services.NewAPIService(config.API.BaseURL, httpClient, authService)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Discovery:  discoveryService,
		Auth:       authService,
		API:        apiService,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "scout",
		Usage:    "Find the best prices for a product across shopping platforms",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
