package diff

import (
	"fmt"
	"math"

	"github.com/sadopc/capscope/internal/capture"
)

const (
	// NoiseThreshold is the smallest |percent change| worth reporting.
	NoiseThreshold = 5.0
	// phaseGrowth is the ratio at which a phase is blamed for a slowdown.
	phaseGrowth = 1.5
)

// CauseCached is the single cause reported for a faster response.
const CauseCached = "Response was likely cached or optimized"

// TimingDiff compares the total duration of two responses. Difference is
// the absolute delta in ms; the sign lives on PercentChange.
type TimingDiff struct {
	Difference     int64    `json:"difference" yaml:"difference"`
	PercentChange  float64  `json:"percent_change" yaml:"percent_change"`
	Explanation    string   `json:"explanation" yaml:"explanation"`
	PossibleCauses []string `json:"possible_causes" yaml:"possible_causes"`
}

type phase struct {
	cause string
	get   func(t *capture.Timing) int64
}

var phases = []phase{
	{"DNS lookup took longer", func(t *capture.Timing) int64 { return t.DNS }},
	{"TCP connection took longer", func(t *capture.Timing) int64 { return t.Connect }},
	{"TLS handshake took longer", func(t *capture.Timing) int64 { return t.TLS }},
	{"Server took longer to send the first byte", func(t *capture.Timing) int64 { return t.TTFB }},
	{"Content download took longer", func(t *capture.Timing) int64 { return t.Download }},
}

// DiffTiming compares two timing breakdowns. It returns nil when either
// side lacks timing, the left total is zero, or the change is under
// NoiseThreshold percent.
func DiffTiming(left, right *capture.Timing) *TimingDiff {
	if left == nil || right == nil || left.Total <= 0 {
		return nil
	}

	delta := right.Total - left.Total
	pct := float64(delta) / float64(left.Total) * 100
	if math.Abs(pct) < NoiseThreshold {
		return nil
	}

	d := &TimingDiff{
		Difference:     abs(delta),
		PercentChange:  math.Round(pct*100) / 100,
		PossibleCauses: []string{},
	}
	if delta > 0 {
		d.Explanation = fmt.Sprintf("Right response was %dms slower (%.1f%% increase)", delta, pct)
		for _, p := range phases {
			l, r := p.get(left), p.get(right)
			if l > 0 && float64(r) >= float64(l)*phaseGrowth {
				d.PossibleCauses = append(d.PossibleCauses, fmt.Sprintf("%s (%dms -> %dms)", p.cause, l, r))
			}
		}
	} else {
		d.Explanation = fmt.Sprintf("Right response was %dms faster (%.1f%% decrease)", -delta, -pct)
		d.PossibleCauses = append(d.PossibleCauses, CauseCached)
	}
	return d
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
