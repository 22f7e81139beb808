package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/config"
	"github.com/hpungsan/kudos/internal/generate"
	"github.com/hpungsan/kudos/internal/inference"
	"github.com/hpungsan/kudos/internal/logging"
	"github.com/hpungsan/kudos/internal/mcp"
	"github.com/hpungsan/kudos/internal/ops"
	"github.com/hpungsan/kudos/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// Environment variables holding the inference API token, in lookup order.
var tokenEnvVars = []string{"KUDOS_HF_TOKEN", "HF_TOKEN"}

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"submit": true, "regenerate": true, "list": true, "show": true,
	"stats": true, "export": true, "report": true,
	"serve": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _              _
  | | ___   _  __| | ___  ___
  | |/ / | | |/ _' |/ _ \/ __|
  |   <| |_| | (_| | (_) \__ \
  |_|\_\\__,_|\__,_|\___/|___/

  Star-rated feedback with generated replies

  Usage: kudos <command> [options]
         kudos --help

  MCP server mode requires piped input.`)
}

// lookupToken returns the first non-empty token variable.
func lookupToken(getenv func(string) string) string {
	for _, key := range tokenEnvVars {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	pipeline *ops.Pipeline
	cfg      *config.Config
	log      *zap.Logger
	baseDir  string
}

// newRuntime composes the pipeline. The token is read here and nowhere else.
func newRuntime(cfg *config.Config, baseDir, token string, log *zap.Logger) (*runtime, error) {
	client := inference.NewClient(inference.Options{
		Endpoint: cfg.InferenceURL,
		Token:    token,
		Timeout:  cfg.InferenceTimeout(),
	})
	if token == "" {
		log.Warn("no inference token set; remote generation will fall back to templates",
			zap.Strings("env", tokenEnvVars))
	}

	s, err := store.Open(cfg, baseDir, log)
	if err != nil {
		return nil, err
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}

	p := ops.New(ops.Deps{
		Store:     s,
		Responder: generate.NewResponseGenerator(client, log),
		Analyzer:  generate.NewAnalysisGenerator(client, log),
		Config:    cfg,
		ExportDir: filepath.Join(baseDir, "exports"),
		Log:       log,
	})
	return &runtime{pipeline: p, cfg: cfg, log: log, baseDir: baseDir}, nil
}

// Close releases the record store.
func (rt *runtime) Close() error {
	return rt.pipeline.Store().Close()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening the store
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".kudos")

	wd, err := os.Getwd()
	if err != nil {
		fatal("could not determine working directory: %v", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, wd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fatal("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	rt, err := newRuntime(cfg, baseDir, lookupToken(os.Getenv), log)
	if err != nil {
		fatal("failed to open record store: %v", err)
	}

	code := run(rt)
	if err := rt.Close(); err != nil {
		log.Warn("closing record store", zap.Error(err))
	}
	if code != 0 {
		_ = log.Sync()
		os.Exit(code)
	}
}

// run dispatches to the CLI or the stdio MCP server and returns an exit code.
func run(rt *runtime) int {
	if isCLIMode() {
		app := newCLIApp(rt)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'kudos --help' for usage.\n")
		return 1
	}

	if err := mcp.Run(rt.pipeline, rt.cfg, rt.log, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
