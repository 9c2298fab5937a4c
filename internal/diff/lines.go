package diff

import "strings"

// Op marks how a line participates in a line diff.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one entry of a line diff. OldLine and NewLine are 1-based and
// zero when the line does not exist on that side.
type Line struct {
	Op      Op
	Text    string
	OldLine int
	NewLine int
}

// LineStats counts inserted and deleted lines.
type LineStats struct {
	Inserted int
	Deleted  int
}

// Changed is the number of lines that differ between the two texts.
func (s LineStats) Changed() int { return s.Inserted + s.Deleted }

// DiffLines computes a shortest line edit script from a to b using the
// Myers O(ND) algorithm.
func DiffLines(a, b string) []Line {
	x, y := splitLines(a), splitLines(b)
	return myers(x, y)
}

// CountLines returns the insert/delete totals of DiffLines(a, b).
func CountLines(a, b string) LineStats {
	var s LineStats
	for _, l := range DiffLines(a, b) {
		switch l.Op {
		case Insert:
			s.Inserted++
		case Delete:
			s.Deleted++
		}
	}
	return s
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

func myers(a, b []string) []Line {
	n, m := len(a), len(b)
	max := n + m
	if max == 0 {
		return nil
	}

	// v[k+offset] holds the furthest x reached on diagonal k. trace keeps a
	// copy per edit distance for the backward walk.
	offset := max
	v := make([]int, 2*max+2)
	var trace [][]int

search:
	for d := 0; d <= max; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1+offset] < v[k+1+offset]) {
				x = v[k+1+offset]
			} else {
				x = v[k-1+offset] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[k+offset] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	out := make([]Line, 0, max)
	x, y := n, m
	for d := len(trace) - 1; d >= 0 && (x > 0 || y > 0); d-- {
		vd := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && vd[k-1+offset] < vd[k+1+offset]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := vd[prevK+offset]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			out = append(out, Line{Op: Equal, Text: a[x], OldLine: x + 1, NewLine: y + 1})
		}
		if d == 0 {
			break
		}
		if x == prevX {
			y--
			out = append(out, Line{Op: Insert, Text: b[y], NewLine: y + 1})
		} else {
			x--
			out = append(out, Line{Op: Delete, Text: a[x], OldLine: x + 1})
		}
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
