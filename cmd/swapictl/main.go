package main

import (
	"context"
	"os"

	"github.com/yungbote/swapi-mirror/internal/cli"
	"github.com/yungbote/swapi-mirror/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
