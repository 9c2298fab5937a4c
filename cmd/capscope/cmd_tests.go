package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sadopc/capscope/internal/engine"
	"github.com/sadopc/capscope/internal/insight"
	"github.com/sadopc/capscope/internal/report"
	"github.com/sadopc/capscope/internal/testgen"
)

const testsUsage = `Usage: capscope tests <capture-file> [flags]

Generate API tests that assert the captured status, headers, body and
timing.

Examples:
  capscope tests login.json
  capscope tests login.json --framework jest,playwright --schema --timing
  capscope tests session.har --entry 2 --write login.test.js
  capscope tests login.json --copy
`

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

func testsCmd(e *env, args []string) int {
	fs := e.newFlagSet("tests", testsUsage)
	out := addOutputFlags(fs)
	entry := fs.Int("entry", 0, "Index of the exchange to use in a multi-entry file")
	frameworks := fs.String("framework", strings.Join(e.cfg.Frameworks, ","),
		"Comma-separated frameworks: "+frameworkNames())
	schema := fs.Bool("schema", e.cfg.IncludeSchema, "Assert the shape of the JSON body")
	timing := fs.Bool("timing", e.cfg.IncludeTiming, "Assert a response time budget")
	write := fs.String("write", "", "Write the generated code to a file")
	copyFlag := fs.Bool("copy", false, "Copy the generated code to the clipboard")
	save := fs.Bool("save", false, "Save the generated tests as an insight")
	if ok, code := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}
	p, err := e.printer(out)
	if err != nil {
		return e.fail("%v", err)
	}

	opts := testgen.Options{IncludeSchema: *schema, IncludeTiming: *timing}
	for _, name := range strings.Split(*frameworks, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		fw, err := testgen.ParseFramework(name)
		if err != nil {
			return e.fail("%v", err)
		}
		opts.Frameworks = append(opts.Frameworks, fw)
	}

	ex, err := loadExchange(fs.Arg(0), *entry)
	if err != nil {
		return e.fail("%v", err)
	}
	tests, err := engine.New().GenerateTests(ex.Request, ex.Response, opts)
	if err != nil {
		return e.fail("%s: %v", fs.Arg(0), err)
	}

	src := report.Source(tests)
	if *write != "" {
		if err := os.WriteFile(*write, []byte(src), 0o644); err != nil {
			return e.fail("writing tests: %v", err)
		}
		fmt.Fprintf(e.stderr, "Wrote %d test(s) to %s\n", len(tests), *write)
	} else if err := p.Tests(tests); err != nil {
		return e.fail("writing output: %v", err)
	}
	if *copyFlag {
		if err := copyToClipboard(src); err != nil {
			fmt.Fprintf(e.stderr, "Warning: clipboard unavailable: %v\n", err)
		} else {
			fmt.Fprintln(e.stderr, "Copied to clipboard")
		}
	}
	if *save {
		e.save(insight.KindTest, tests, map[string]string{"url": ex.Request.URL, "source": fs.Arg(0)})
	}
	return exitOK
}

func frameworkNames() string {
	names := make([]string, 0, len(testgen.Frameworks()))
	for _, fw := range testgen.Frameworks() {
		names = append(names, string(fw))
	}
	return strings.Join(names, ", ")
}
