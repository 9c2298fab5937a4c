package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/sadopc/capscope/internal/capture"
	"github.com/sadopc/capscope/internal/config"
	"github.com/sadopc/capscope/internal/engine"
	"github.com/sadopc/capscope/internal/insight"
	"github.com/sadopc/capscope/internal/report"
)

// outputFlags are shared by every command that prints a result.
type outputFlags struct {
	output  *string
	noColor *bool
}

func addOutputFlags(fs *flag.FlagSet) outputFlags {
	return outputFlags{
		output:  fs.String("output", "text", "Output format: text, json, yaml"),
		noColor: fs.Bool("no-color", false, "Disable colored output"),
	}
}

func (e *env) printer(of outputFlags) (report.Printer, error) {
	format, err := report.ParseFormat(*of.output)
	if err != nil {
		return report.Printer{}, err
	}
	return report.Printer{
		Out:    e.stdout,
		Format: format,
		Color:  e.isTTY && !*of.noColor,
		Theme:  e.cfg.Theme,
	}, nil
}

// newFlagSet returns a flag set that reports errors instead of exiting,
// with usage text written to stderr.
func (e *env) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprint(e.stderr, usage)
		fmt.Fprintf(e.stderr, "\nFlags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and reports whether the command should continue.
// It allows flags after positional arguments until a "--" terminator.
func parse(fs *flag.FlagSet, args []string) (bool, int) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return false, exitOK
			}
			return false, exitError
		}
		if fs.NArg() == 0 {
			break
		}
		// Everything after "--" is positional.
		if consumed := len(args) - fs.NArg(); consumed > 0 && args[consumed-1] == "--" {
			positional = append(positional, fs.Args()...)
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	_ = fs.Parse(append([]string{"--"}, positional...))
	return true, exitOK
}

func (e *env) fail(format string, args ...any) int {
	fmt.Fprintf(e.stderr, "Error: "+format+"\n", args...)
	return exitError
}

// loadExchange reads the exchange at index entry from a capture file.
func loadExchange(path string, entry int) (capture.Exchange, error) {
	exchanges, err := capture.LoadFile(path)
	if err != nil {
		return capture.Exchange{}, err
	}
	if entry < 0 || entry >= len(exchanges) {
		return capture.Exchange{}, fmt.Errorf("%s: entry %d out of range (file has %d)", path, entry, len(exchanges))
	}
	return exchanges[entry], nil
}

// openStore returns the insight store named by cfg: the remote API when
// remote_url is set, the local sqlite database otherwise.
func openStore(cfg config.Config) (insight.Store, io.Closer, error) {
	if cfg.RemoteURL != "" {
		return insight.NewRemoteStore(cfg.RemoteURL, cfg.RemoteToken), io.NopCloser(nil), nil
	}
	store, err := insight.NewSQLiteStore(cfg.InsightDB())
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}

// userContext carries the local identity used for saved insights.
func (e *env) userContext() context.Context {
	return insight.WithUser(context.Background(), e.cfg.LocalUser())
}

// save persists result and prints the insight id to stderr. A failed save
// is reported but leaves the printed result and exit code alone.
func (e *env) save(kind insight.Kind, result any, meta map[string]string) {
	store, closer, err := openStore(e.cfg)
	if err != nil {
		e.log.Warn().Err(err).Msg("opening insight store")
		fmt.Fprintf(e.stderr, "Warning: insight not saved: %v\n", err)
		return
	}
	defer closer.Close()

	eng := engine.New(engine.WithPersister(insight.NewPersister(store, insight.WithLogger(e.log))))
	id, err := eng.Save(e.userContext(), kind, result, meta)
	if err != nil {
		fmt.Fprintf(e.stderr, "Warning: insight not saved: %v\n", err)
		return
	}
	fmt.Fprintf(e.stderr, "Saved insight %s\n", id)
}
