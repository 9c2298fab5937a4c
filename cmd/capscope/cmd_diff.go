package main

import (
	"fmt"
	"path/filepath"

	"github.com/sadopc/capscope/internal/capture"
	"github.com/sadopc/capscope/internal/diff"
	"github.com/sadopc/capscope/internal/engine"
	"github.com/sadopc/capscope/internal/insight"
)

const diffUsage = `Usage: capscope diff <left-file> [right-file] [flags]

Compare two captured responses: headers, body and timing. With a single
file the first two exchanges in it are compared.

Examples:
  capscope diff staging.json prod.json
  capscope diff session.har --left-entry 2 --right-entry 5
  capscope diff a.yaml b.yaml --left-label before --right-label after --output json

Exit codes:
  0  Responses are identical
  1  Responses differ
  2  Usage or file errors
`

func diffCmd(e *env, args []string) int {
	fs := e.newFlagSet("diff", diffUsage)
	out := addOutputFlags(fs)
	leftEntry := fs.Int("left-entry", -1, "Exchange index in the left file (default 0, or 0 and 1 for a single file)")
	rightEntry := fs.Int("right-entry", -1, "Exchange index in the right file")
	leftLabel := fs.String("left-label", "", "Label for the left response")
	rightLabel := fs.String("right-label", "", "Label for the right response")
	save := fs.Bool("save", false, "Save the comparison as an insight")
	if ok, code := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return exitError
	}
	p, err := e.printer(out)
	if err != nil {
		return e.fail("%v", err)
	}

	leftPath, rightPath := fs.Arg(0), fs.Arg(0)
	li, ri := 0, 1
	if fs.NArg() == 2 {
		rightPath = fs.Arg(1)
		ri = 0
	}
	if *leftEntry >= 0 {
		li = *leftEntry
	}
	if *rightEntry >= 0 {
		ri = *rightEntry
	}

	left, err := loadExchange(leftPath, li)
	if err != nil {
		return e.fail("%v", err)
	}
	right, err := loadExchange(rightPath, ri)
	if err != nil {
		return e.fail("%v", err)
	}
	if left.Response == nil || right.Response == nil {
		return e.fail("both exchanges need a response")
	}

	opts := diff.Options{
		LeftLabel:  pick(*leftLabel, left, leftPath, li),
		RightLabel: pick(*rightLabel, right, rightPath, ri),
	}
	exp := engine.New().ExplainDiff(left.Response, right.Response, opts)
	if err := p.Diff(exp); err != nil {
		return e.fail("writing output: %v", err)
	}
	if *save {
		e.save(insight.KindDiff, exp, map[string]string{"left": opts.LeftLabel, "right": opts.RightLabel})
	}
	if exp.Identical() {
		return exitOK
	}
	return exitFindings
}

// pick chooses a display label: the flag, then the exchange label, then
// the file name with the entry index.
func pick(flagValue string, ex capture.Exchange, path string, entry int) string {
	switch {
	case flagValue != "":
		return flagValue
	case ex.Label != "":
		return ex.Label
	default:
		return fmt.Sprintf("%s#%d", filepath.Base(path), entry)
	}
}
