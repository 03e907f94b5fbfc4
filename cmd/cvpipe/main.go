package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/cvpipe/internal/app"
	"github.com/specialistvlad/cvpipe/internal/cli"
	"github.com/specialistvlad/cvpipe/internal/hclconf"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
)

// main is the entrypoint for the cvpipe application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. The run verdict maps to the process exit code: success is zero,
// failure and unstable get distinct non-zero codes.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	loader := hclconf.NewLoader()
	pipelineApp := app.NewApp(outW, appConfig, loader)
	defer pipelineApp.Close()

	status, runErr := pipelineApp.Run(context.Background())
	if runErr != nil {
		return runErr
	}

	switch status {
	case runstatus.Failed:
		return &cli.ExitError{Code: cli.ExitFailed, Message: "run finished with status FAILED"}
	case runstatus.Unstable:
		return &cli.ExitError{Code: cli.ExitUnstable, Message: "run finished with status UNSTABLE"}
	}
	return nil
}
