package report

import (
	"fmt"

	"github.com/sadopc/capscope/internal/diff"
)

// Diff writes a diff explanation.
func (p Printer) Diff(exp diff.DiffExplanation) error {
	if done, err := p.encode(exp); done {
		return err
	}

	fmt.Fprintln(p.Out, p.style(titleStyle, exp.Summary))

	if len(exp.HeaderDifferences) > 0 {
		p.section("Headers")
		for _, h := range exp.HeaderDifferences {
			fmt.Fprintf(p.Out, "  %s %-24s %s\n", p.changeMark(h.Type), h.Header, p.significance(h.Significance))
			fmt.Fprintf(p.Out, "      %s\n", p.style(mutedStyle, h.Explanation))
		}
	}

	if b := exp.BodyDifference; b != nil {
		p.section("Body")
		p.field("kind", string(b.ContentType))
		p.field("changes", fmt.Sprint(b.Changes))
		p.field("detail", b.Explanation)
		p.bullets(b.KeyDifferences, mutedStyle, "*")
	}

	if t := exp.TimingDifference; t != nil {
		p.section("Timing")
		delta := t.Difference
		if t.PercentChange < 0 {
			delta = -delta
		}
		p.field("change", fmt.Sprintf("%+dms (%+.2f%%)", delta, t.PercentChange))
		p.field("detail", t.Explanation)
	}

	if len(exp.PossibleCauses) > 0 {
		p.section("Possible causes")
		p.bullets(exp.PossibleCauses, warnStyle, "-")
	}
	if len(exp.Recommendations) > 0 {
		p.section("Recommendations")
		p.bullets(exp.Recommendations, warnStyle, "-")
	}
	return nil
}

func (p Printer) changeMark(t diff.ChangeType) string {
	switch t {
	case diff.Added:
		return p.style(goodStyle, "+")
	case diff.Removed:
		return p.style(badStyle, "-")
	default:
		return p.style(warnStyle, "~")
	}
}

func (p Printer) significance(s diff.Significance) string {
	switch s {
	case diff.High:
		return p.style(badStyle, string(s))
	case diff.Medium:
		return p.style(warnStyle, string(s))
	default:
		return p.style(mutedStyle, string(s))
	}
}
