package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/cvpipe/internal/app"
)

// Exit codes for the final run verdict. Failed reuses the generic error
// code; Unstable gets its own so wrapping scripts can tell the two apart.
const (
	ExitFailed   = 1
	ExitUsage    = 2
	ExitUnstable = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("cvpipe", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
cvpipe - commit-validation pipeline runner.

Resolves build configuration from the orchestrator job name, runs the
checkout/configure/build/test pipeline, and reports the verdict back to the
review that triggered it.

Usage:
  cvpipe [options] [JOB_NAME]

Arguments:
  JOB_NAME
    Orchestrator job name, e.g. 'tlm.threadsanitizer/master'. Falls back to
    the JOB_NAME environment variable.

Options:
`)
		flagSet.PrintDefaults()
	}

	jobFlag := flagSet.String("job", "", "Orchestrator job name driving the configuration resolution.")
	pipelineFlag := flagSet.String("pipeline", "", "Path to a pipeline .hcl file or directory. Empty uses the built-in pipeline.")
	envFileFlag := flagSet.String("env-file", "", "Optional dotenv file overlaid under the live environment.")
	workspaceFlag := flagSet.String("workspace", "workspace", "Checkout root directory.")
	buildDirFlag := flagSet.String("build-dir", "", "Out-of-source build directory. Empty derives <workspace>/build.")
	manifestURLFlag := flagSet.String("manifest-url", "", "Manifest repository URL for the checkout stage.")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent workers for the executor.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	jobName := *jobFlag
	if jobName == "" && flagSet.NArg() > 0 {
		jobName = flagSet.Arg(0)
	}
	if jobName == "" {
		jobName = os.Getenv("JOB_NAME")
	}
	slog.Debug("Job name determined.", "job", jobName)

	if jobName == "" {
		slog.Debug("No job name provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		JobName:      jobName,
		PipelinePath: *pipelineFlag,
		EnvFile:      *envFileFlag,
		Workspace:    *workspaceFlag,
		BuildDir:     *buildDirFlag,
		ManifestURL:  *manifestURLFlag,
		StatusPort:   *statusPortFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "job", config.JobName)
	return config, false, nil
}
