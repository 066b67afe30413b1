package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/swapi-mirror/internal/app"
	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("Starting swapi-mirror", "addr", cfg.HTTP.Addr, "driver", cfg.Database.Driver)
	if err := a.Run(ctx); err != nil {
		a.Log.Error("Server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("Server stopped")
}
