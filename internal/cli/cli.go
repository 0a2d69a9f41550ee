package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/opgrid/internal/app"
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

// stringList is a repeatable flag that also accepts comma separated values.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*s = append(*s, item)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values from a --config file act as defaults that explicit flags override.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("opgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
opgrid - Runs the mod loader operation tree with live hierarchical progress.

Usage:
  opgrid [options] [SOURCES_DIR]

Arguments:
  SOURCES_DIR
    Directory holding the target sources to load mods into.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	configFlag := flagSet.String("config", "", "Path to a TOML config file supplying defaults.")
	planFlag := flagSet.String("plan", "", "Path to an HCL plan file or directory. Empty uses the built-in plan.")
	pFlag := flagSet.String("p", "", "Path to an HCL plan file or directory (shorthand).")
	sourcesFlag := flagSet.String("sources", "", "Directory holding the target sources.")
	includeFlag := flagSet.String("include", defaults.Include, "Glob selecting source files under the sources directory.")
	outFlag := flagSet.String("out", "", "Directory receiving modified sources. Empty discards them.")
	var modsFlag stringList
	flagSet.Var(&modsFlag, "mod", "Mod to load. Repeatable or comma separated.")
	artifactsFlag := flagSet.String("artifacts", "", "Write the artifact tree to this .json or .yaml file.")
	typesFlag := flagSet.String("artifact-types", "", "Comma separated artifact types to export. Empty exports all.")
	progressURLFlag := flagSet.String("progress-url", "", "socket.io endpoint receiving progress events.")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text', 'json' or 'pretty'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable coloured output.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	if *configFlag != "" {
		if err := app.DecodeConfigFile(*configFlag, &cfg); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		slog.Debug("Config file applied.", "path", *configFlag)
	}

	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "plan":
			cfg.PlanPath = *planFlag
		case "p":
			if *planFlag == "" {
				cfg.PlanPath = *pFlag
			}
		case "sources":
			cfg.SourcesDir = *sourcesFlag
		case "include":
			cfg.Include = *includeFlag
		case "out":
			cfg.OutDir = *outFlag
		case "mod":
			cfg.Mods = modsFlag
		case "artifacts":
			cfg.ArtifactsPath = *artifactsFlag
		case "artifact-types":
			cfg.ArtifactTypes = *typesFlag
		case "progress-url":
			cfg.ProgressURL = *progressURLFlag
		case "status-port":
			cfg.StatusPort = *statusPortFlag
		case "log-format":
			cfg.LogFormat = strings.ToLower(*logFormatFlag)
		case "log-level":
			cfg.LogLevel = strings.ToLower(*logLevelFlag)
		case "no-color":
			cfg.NoColor = *noColorFlag
		}
	})

	if *sourcesFlag == "" && flagSet.NArg() > 0 {
		cfg.SourcesDir = flagSet.Arg(0)
	}
	slog.Debug("Sources directory determined.", "path", cfg.SourcesDir)

	if cfg.SourcesDir == "" {
		slog.Debug("No sources directory provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
