package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/sadopc/capscope/internal/config"
	"github.com/sadopc/capscope/internal/observability"
	"github.com/sadopc/capscope/pkg/version"
)

// Exit codes shared by every subcommand.
const (
	exitOK       = 0
	exitFindings = 1
	exitError    = 2
)

// env is what a subcommand needs from the process.
type env struct {
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	log    zerolog.Logger
	// isTTY reports whether stdout is a terminal; color defaults to it.
	isTTY bool
}

func main() {
	if len(os.Args) < 2 {
		printHelp(os.Stderr)
		os.Exit(exitError)
	}

	cfg := config.Load()
	e := &env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		cfg:    cfg,
		log:    observability.NewLogger(cfg.LogLevel, cfg.LogFile),
		isTTY:  isTerminal(os.Stdout),
	}
	os.Exit(run(e, os.Args[1], os.Args[2:]))
}

func run(e *env, cmd string, args []string) int {
	switch cmd {
	case "explain":
		return explainCmd(e, args)
	case "diff":
		return diffCmd(e, args)
	case "tests":
		return testsCmd(e, args)
	case "serve":
		return serveCmd(e, args)
	case "insights":
		return insightsCmd(e, args)
	case "completion":
		return completionCmd(e, args)
	case "version", "--version":
		fmt.Fprintf(e.stdout, "capscope %s (%s) built %s\n", version.Version, version.Commit, version.Date)
		return exitOK
	case "help", "-h", "--help":
		printHelp(e.stdout)
		return exitOK
	default:
		fmt.Fprintf(e.stderr, "Error: unknown command %q\n\n", cmd)
		printHelp(e.stderr)
		return exitError
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `capscope - Explain, compare and turn captured HTTP exchanges into tests

Usage:
  capscope <command> [args] [flags]

Commands:
  explain     Explain auth, tokens, cookies and security headers of a capture
  diff        Compare two captured responses
  tests       Generate API tests from a capture
  serve       Serve the analysis API over HTTP
  insights    List, search or show saved insights
  completion  Generate shell completion scripts (bash, zsh, fish)
  version     Print version information
  help        Show this help message

Capture files are JSON or YAML {request, response} documents, or HAR files.

Run 'capscope <command> --help' for more information about a command.
`)
}

func isTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
