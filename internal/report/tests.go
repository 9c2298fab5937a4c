package report

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/sadopc/capscope/internal/testgen"
)

// Tests writes generated tests. Text output prints each test's source,
// highlighted when color is on.
func (p Printer) Tests(tests []testgen.GeneratedTest) error {
	if done, err := p.encode(tests); done {
		return err
	}

	for i, t := range tests {
		if i > 0 {
			fmt.Fprintln(p.Out)
		}
		fmt.Fprintf(p.Out, "%s %s\n", p.style(titleStyle, "// "+t.Name), p.style(mutedStyle, "["+string(t.Framework)+"]"))
		if err := p.code(t.Code); err != nil {
			return err
		}
	}
	return nil
}

// Source joins the code of tests into one file body.
func Source(tests []testgen.GeneratedTest) string {
	parts := make([]string, 0, len(tests))
	for _, t := range tests {
		parts = append(parts, t.Code)
	}
	return strings.Join(parts, "\n")
}

func (p Printer) code(src string) error {
	if !p.Color {
		_, err := fmt.Fprint(p.Out, src)
		return err
	}
	theme := p.Theme
	if theme == "" {
		theme = "monokai"
	}
	return quick.Highlight(p.Out, src, "javascript", "terminal256", theme)
}
