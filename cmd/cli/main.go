package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hazlamahedich/summit-seo-sub001/internal/app"
	"github.com/hazlamahedich/summit-seo-sub001/internal/cli"
)

// main is the entrypoint for the summit-seo task runner.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, os.Stdout)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	application := app.NewApp(os.Stdout, os.Stderr, appConfig)
	return application.Run(context.Background())
}
