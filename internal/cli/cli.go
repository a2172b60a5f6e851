// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/fugi/antrun/internal/app"
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

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly,
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("antrun", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
antrun - run an Apache Ant build step the way a CI host would.

Usage:
  antrun [options] [JOB_PATH]

Arguments:
  JOB_PATH
    Path to the HCL job file describing the build steps.

Options:
`)
		flagSet.PrintDefaults()
	}

	jobFlag := flagSet.String("job", "", "Path to the HCL job file.")
	installationsFlag := flagSet.String("installations", "", "Path to the HCL installations registry file.")
	workspaceFlag := flagSet.String("workspace", ".", "Workspace (checkout) root directory.")
	moduleRootFlag := flagSet.String("module-root", "", "Module root directory. Defaults to the workspace.")
	toolsDirFlag := flagSet.String("tools-dir", "", "Directory for auto-installed tool distributions.")
	autoInstallFlag := flagSet.Bool("install", false, "Auto-provision installations that declare a download_url.")
	consoleLogFlag := flagSet.String("console-log", "", "Also write the build console to this rotating log file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	jobPath := *jobFlag
	if jobPath == "" && flagSet.NArg() > 0 {
		jobPath = flagSet.Arg(0)
	}

	if jobPath == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *autoInstallFlag && *toolsDirFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "-install requires -tools-dir"}
	}

	config, err := app.NewConfig(app.Config{
		JobPath:           jobPath,
		InstallationsPath: *installationsFlag,
		Workspace:         *workspaceFlag,
		ModuleRoot:        *moduleRootFlag,
		ToolsDir:          *toolsDirFlag,
		AutoInstall:       *autoInstallFlag,
		ConsoleLogPath:    *consoleLogFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
