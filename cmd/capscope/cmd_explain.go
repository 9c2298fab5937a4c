package main

import (
	"github.com/sadopc/capscope/internal/engine"
	"github.com/sadopc/capscope/internal/insight"
)

const explainUsage = `Usage: capscope explain <capture-file> [flags]

Explain the authentication flow, JWT, cookies, CORS and security headers
of a captured exchange.

Examples:
  capscope explain login.json
  capscope explain session.har --entry 3 --output json
  capscope explain login.yaml --save
`

func explainCmd(e *env, args []string) int {
	fs := e.newFlagSet("explain", explainUsage)
	out := addOutputFlags(fs)
	entry := fs.Int("entry", 0, "Index of the exchange to use in a multi-entry file")
	save := fs.Bool("save", false, "Save the explanation as an insight")
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

	ex, err := loadExchange(fs.Arg(0), *entry)
	if err != nil {
		return e.fail("%v", err)
	}
	if ex.Request == nil {
		return e.fail("%s: exchange %d has no request", fs.Arg(0), *entry)
	}

	exp := engine.New().ExplainCapture(ex.Request, ex.Response)
	if err := p.Capture(exp); err != nil {
		return e.fail("writing output: %v", err)
	}
	if *save {
		e.save(insight.KindCapture, exp, map[string]string{"url": ex.Request.URL, "source": fs.Arg(0)})
	}
	return exitOK
}
