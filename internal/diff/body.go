package diff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"

	"github.com/sadopc/capscope/internal/capture"
)

// ContentKind is the body format used to pick a comparison strategy.
type ContentKind string

const (
	KindJSON   ContentKind = "json"
	KindText   ContentKind = "text"
	KindBinary ContentKind = "binary"
	KindHTML   ContentKind = "html"
	KindXML    ContentKind = "xml"
)

// MaxKeyDifferences caps the reported paths of a JSON body diff.
const MaxKeyDifferences = 5

// BodyDiff summarizes how two response bodies differ.
type BodyDiff struct {
	ContentType    ContentKind `json:"content_type" yaml:"content_type"`
	Changes        int         `json:"changes" yaml:"changes"`
	Explanation    string      `json:"explanation" yaml:"explanation"`
	KeyDifferences []string    `json:"key_differences,omitempty" yaml:"key_differences,omitempty"`
}

// ContentKindOf classifies a Content-Type value.
func ContentKindOf(contentType string) ContentKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return KindJSON
	case strings.Contains(ct, "html"):
		return KindHTML
	case strings.Contains(ct, "xml"):
		return KindXML
	case strings.Contains(ct, "octet-stream"):
		return KindBinary
	default:
		return KindText
	}
}

// DiffBody compares the bodies of two responses. It returns nil when the
// bodies are equal or no change can be measured. The content kind follows
// the left response.
func DiffBody(left, right *capture.Response) *BodyDiff {
	var lb, rb, ct string
	if left != nil {
		lb, ct = left.Body, left.ContentType()
	}
	if right != nil {
		rb = right.Body
	}
	if lb == rb {
		return nil
	}

	d := &BodyDiff{ContentType: ContentKindOf(ct)}
	switch d.ContentType {
	case KindJSON:
		diffJSONBody(d, lb, rb)
	case KindBinary:
		d.Changes = 1
		d.Explanation = "Binary body content differs"
	default:
		stats := CountLines(lb, rb)
		d.Changes = stats.Changed()
		d.Explanation = fmt.Sprintf("%d line(s) added, %d line(s) removed", stats.Inserted, stats.Deleted)
	}
	if d.Changes == 0 {
		return nil
	}
	return d
}

func diffJSONBody(d *BodyDiff, left, right string) {
	l, errL := decodeJSON(left)
	r, errR := decodeJSON(right)
	if errL != nil || errR != nil {
		d.Changes = 1
		d.Explanation = "Body could not be parsed as JSON on one or both sides"
		return
	}

	w := &jsonWalk{}
	w.compare("", l, r)
	d.Changes = w.count
	d.KeyDifferences = w.paths
	d.Explanation = fmt.Sprintf("JSON body has %d structural difference(s)", w.count)
}

// decodeJSON decodes one JSON document keeping numbers as literals, so
// integers beyond float64 precision still compare correctly.
func decodeJSON(body string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// jsonWalk accumulates differences found while walking two decoded JSON
// values in parallel. count is uncapped; paths holds the first few.
type jsonWalk struct {
	count int
	paths []string
}

func (w *jsonWalk) record(path, what string) {
	w.count++
	if len(w.paths) < MaxKeyDifferences {
		if path == "" {
			path = "(root)"
		}
		w.paths = append(w.paths, path+": "+what)
	}
}

func (w *jsonWalk) compare(path string, l, r any) {
	lk, rk := jsonKind(l), jsonKind(r)
	if lk != rk {
		w.record(path, fmt.Sprintf("type changed from %s to %s", lk, rk))
		return
	}

	switch lv := l.(type) {
	case map[string]any:
		rv := r.(map[string]any)
		for _, key := range unionKeys(lv, rv) {
			child := joinPath(path, key)
			a, inLeft := lv[key]
			b, inRight := rv[key]
			switch {
			case !inRight:
				w.record(child, "removed")
			case !inLeft:
				w.record(child, "added")
			case jsonEqual(a, b):
			default:
				w.compare(child, a, b)
			}
		}
	case []any:
		rv := r.([]any)
		if len(lv) != len(rv) {
			w.record(path, fmt.Sprintf("array length changed from %d to %d", len(lv), len(rv)))
		} else if !jsonEqual(lv, rv) {
			w.record(path, "array elements changed")
		}
	default:
		if !jsonEqual(l, r) {
			w.record(path, fmt.Sprintf("value changed from %s to %s", literal(l), literal(r)))
		}
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// jsonEqual compares decoded JSON values. Numbers are equal when their
// exact decimal values are, so 1 and 1.0 match while 2^53 and 2^53+1 do not.
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !jsonEqual(x, y) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		x, _, errA := big.ParseFloat(string(av), 10, 256, big.ToNearestEven)
		y, _, errB := big.ParseFloat(string(bv), 10, 256, big.ToNearestEven)
		return errA == nil && errB == nil && x.Cmp(y) == 0
	default:
		return a == b
	}
}

func literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
