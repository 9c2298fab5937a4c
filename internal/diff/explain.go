package diff

import (
	"fmt"
	"math"
	"strings"

	"github.com/sadopc/capscope/internal/capture"
)

// DiffExplanation is the combined comparison of two responses.
type DiffExplanation struct {
	Summary           string       `json:"summary" yaml:"summary"`
	HeaderDifferences []HeaderDiff `json:"header_differences" yaml:"header_differences"`
	BodyDifference    *BodyDiff    `json:"body_difference,omitempty" yaml:"body_difference,omitempty"`
	TimingDifference  *TimingDiff  `json:"timing_difference,omitempty" yaml:"timing_difference,omitempty"`
	PossibleCauses    []string     `json:"possible_causes" yaml:"possible_causes"`
	Recommendations   []string     `json:"recommendations" yaml:"recommendations"`
}

// Identical reports whether no difference was found in any dimension.
func (d DiffExplanation) Identical() bool {
	return len(d.HeaderDifferences) == 0 && d.BodyDifference == nil && d.TimingDifference == nil
}

// Options labels the two sides in the summary.
type Options struct {
	LeftLabel  string
	RightLabel string
}

const (
	causeCache   = "Caching headers changed; one response may have been served from a cache or revalidated"
	causeContent = "Response body changed; the underlying data or serialization differs"

	recHighSignificance = "Review the high-significance header changes; they can change how clients handle the response"
	bulkBodyChanges     = 5
)

// Explainer compares responses. It has no state.
type Explainer struct{}

// NewExplainer returns a diff explainer.
func NewExplainer() *Explainer { return &Explainer{} }

// Explain diffs left against right.
func (e *Explainer) Explain(left, right *capture.Response, opts Options) DiffExplanation {
	if opts.LeftLabel == "" {
		opts.LeftLabel = "left"
	}
	if opts.RightLabel == "" {
		opts.RightLabel = "right"
	}

	var lh, rh map[string][]string
	var lt, rt *capture.Timing
	if left != nil {
		lh, lt = left.Headers, left.Timing
	}
	if right != nil {
		rh, rt = right.Headers, right.Timing
	}

	out := DiffExplanation{
		HeaderDifferences: DiffHeaders(lh, rh),
		BodyDifference:    DiffBody(left, right),
		TimingDifference:  DiffTiming(lt, rt),
		PossibleCauses:    []string{},
		Recommendations:   []string{},
	}

	highSignificance := false
	cacheChanged := false
	for _, h := range out.HeaderDifferences {
		if h.Header == "cache-control" || h.Header == "etag" {
			cacheChanged = true
		}
		if h.Significance == High {
			highSignificance = true
		}
	}
	if cacheChanged {
		out.PossibleCauses = append(out.PossibleCauses, causeCache)
	}
	if out.BodyDifference != nil && out.BodyDifference.Changes > 0 {
		out.PossibleCauses = append(out.PossibleCauses, causeContent)
	}
	if out.TimingDifference != nil {
		out.PossibleCauses = append(out.PossibleCauses, out.TimingDifference.PossibleCauses...)
	}

	if highSignificance {
		out.Recommendations = append(out.Recommendations, recHighSignificance)
	}
	if out.BodyDifference != nil && out.BodyDifference.Changes > bulkBodyChanges {
		out.Recommendations = append(out.Recommendations, fmt.Sprintf(
			"The body changed in %d places; check for an API version or schema change", out.BodyDifference.Changes))
	}

	out.Summary = summarize(out, opts)
	return out
}

func summarize(d DiffExplanation, opts Options) string {
	prefix := fmt.Sprintf("Comparing %s vs %s: ", opts.LeftLabel, opts.RightLabel)
	var parts []string
	if n := len(d.HeaderDifferences); n > 0 {
		parts = append(parts, fmt.Sprintf("%d header difference(s)", n))
	}
	if d.BodyDifference != nil {
		parts = append(parts, fmt.Sprintf("%d body change(s)", d.BodyDifference.Changes))
	}
	if t := d.TimingDifference; t != nil {
		dir := "slower"
		if t.PercentChange < 0 {
			dir = "faster"
		}
		parts = append(parts, fmt.Sprintf("timing %s by %.1f%%", dir, math.Abs(t.PercentChange)))
	}
	if len(parts) == 0 {
		return prefix + "responses are identical"
	}
	return prefix + strings.Join(parts, ", ")
}
