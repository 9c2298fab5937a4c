package diff

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/sadopc/capscope/internal/capture"
)

// textBodies returns two n-line bodies where every changeEvery-th line differs.
func textBodies(n, changeEvery int) (string, string) {
	a := make([]string, n)
	b := make([]string, n)
	for i := 0; i < n; i++ {
		a[i] = fmt.Sprintf("line %d content", i)
		b[i] = a[i]
		if i%changeEvery == 0 {
			b[i] = fmt.Sprintf("modified line %d content", i)
		}
	}
	return strings.Join(a, "\n"), strings.Join(b, "\n")
}

// jsonBodies returns two objects with n keys where every changeEvery-th
// value differs.
func jsonBodies(n, changeEvery int) (string, string) {
	a := make(map[string]any, n)
	b := make(map[string]any, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("field_%d", i)
		a[key] = map[string]any{"id": i, "name": key}
		b[key] = map[string]any{"id": i, "name": key}
		if i%changeEvery == 0 {
			b[key] = map[string]any{"id": i + 1, "name": key}
		}
	}
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab), string(bb)
}

func BenchmarkDiffLines(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		for _, every := range []int{10, 2} {
			b.Run(fmt.Sprintf("Lines_%d/every_%d", n, every), func(b *testing.B) {
				l, r := textBodies(n, every)
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_ = DiffLines(l, r)
				}
			})
		}
	}
}

func BenchmarkDiffBodyJSON(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("Keys_%d", n), func(b *testing.B) {
			l, r := jsonBodies(n, 4)
			left := &capture.Response{Headers: capture.NewHeader(map[string]string{"Content-Type": "application/json"}), Body: l}
			right := &capture.Response{Body: r}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = DiffBody(left, right)
			}
		})
	}
}
