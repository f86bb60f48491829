package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fieldsync/internal/client/cli"
	"github.com/dmitrijs2005/fieldsync/internal/client/config"
	"github.com/dmitrijs2005/fieldsync/internal/flagx"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig(os.Args[1:])
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := cli.NewRootCommand(app)
	root.SetArgs(flagx.Positional(os.Args[1:], config.ValuedFlags, config.SwitchFlags...))
	err = root.ExecuteContext(ctx)

	_ = app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
