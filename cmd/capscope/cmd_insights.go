package main

import (
	"errors"
	"fmt"

	"github.com/sadopc/capscope/internal/insight"
)

const insightsUsage = `Usage: capscope insights <list|search|show> [args] [flags]

Browse saved insights. Uses remote_url when configured, the local
database otherwise.

Examples:
  capscope insights list --kind diff --limit 10
  capscope insights search "users api"
  capscope insights show 3f2c9a4e-... --output yaml
`

func insightsCmd(e *env, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(e.stderr, insightsUsage)
		return exitError
	}
	sub, args := args[0], args[1:]
	switch sub {
	case "list", "search", "show":
	case "help", "-h", "--help":
		fmt.Fprint(e.stdout, insightsUsage)
		return exitOK
	default:
		return e.fail("unknown insights command %q (use list, search or show)", sub)
	}

	fs := e.newFlagSet("insights "+sub, insightsUsage)
	out := addOutputFlags(fs)
	kindFlag := fs.String("kind", "", "Only include insights of this kind: capture, diff, test")
	limit := fs.Int("limit", insight.DefaultListLimit, "Maximum number of insights to fetch")
	if ok, code := parse(fs, args); !ok {
		return code
	}
	p, err := e.printer(out)
	if err != nil {
		return e.fail("%v", err)
	}

	var kind insight.Kind
	if *kindFlag != "" {
		if kind, err = insight.ParseKind(*kindFlag); err != nil {
			return e.fail("%v", err)
		}
	}

	store, closer, err := openStore(e.cfg)
	if err != nil {
		return e.fail("opening insight store: %v", err)
	}
	defer closer.Close()
	ctx := e.userContext()
	user := e.cfg.LocalUser()

	switch sub {
	case "show":
		if fs.NArg() != 1 {
			return e.fail("insights show needs exactly one id")
		}
		rec, err := store.Get(ctx, user, fs.Arg(0))
		if errors.Is(err, insight.ErrNotFound) {
			fmt.Fprintf(e.stderr, "Error: %v: %s\n", err, fs.Arg(0))
			return exitFindings
		}
		if err != nil {
			return e.fail("%v", err)
		}
		if err := p.Insight(rec); err != nil {
			return e.fail("writing output: %v", err)
		}
		return exitOK
	case "search":
		if fs.NArg() != 1 {
			return e.fail("insights search needs a query")
		}
	}

	recs, err := store.List(ctx, user, kind, *limit)
	if err != nil {
		return e.fail("%v", err)
	}
	if sub == "search" {
		recs = insight.Search(recs, fs.Arg(0))
	}
	if err := p.Insights(recs); err != nil {
		return e.fail("writing output: %v", err)
	}
	return exitOK
}
