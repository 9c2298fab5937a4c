package diff

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ChangeType says how a header differs between two responses.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
)

// Significance is a coarse importance tier for a changed header.
type Significance string

const (
	Low    Significance = "low"
	Medium Significance = "medium"
	High   Significance = "high"
)

// HeaderDiff describes one header that differs between two responses.
type HeaderDiff struct {
	Header       string       `json:"header" yaml:"header"`
	LeftValue    string       `json:"left_value,omitempty" yaml:"left_value,omitempty"`
	RightValue   string       `json:"right_value,omitempty" yaml:"right_value,omitempty"`
	Type         ChangeType   `json:"type" yaml:"type"`
	Explanation  string       `json:"explanation" yaml:"explanation"`
	Significance Significance `json:"significance" yaml:"significance"`
}

var significance = map[string]Significance{
	"content-type":   High,
	"authorization":  High,
	"set-cookie":     High,
	"cache-control":  High,
	"etag":           High,
	"content-length": Medium,
	"last-modified":  Medium,
	"expires":        Medium,
	"vary":           Medium,
	"x-request-id":   Medium,
}

// HeaderSignificance returns the tier of a lower-cased header name.
func HeaderSignificance(name string) Significance {
	if s, ok := significance[strings.ToLower(name)]; ok {
		return s
	}
	return Low
}

// explainers hold the bespoke wording for modified headers.
var explainers = map[string]func(left, right string) string{
	"cache-control": func(l, r string) string {
		return fmt.Sprintf("Caching policy changed from %q to %q; clients and proxies will cache differently", l, r)
	},
	"content-type": func(l, r string) string {
		return fmt.Sprintf("Content type changed from %s to %s; clients may parse the body differently", l, r)
	},
	"etag": func(l, r string) string {
		return "Entity tag changed; the resource representation differs between the responses"
	},
	"last-modified": func(l, r string) string {
		return fmt.Sprintf("Resource modification time changed from %s to %s", l, r)
	},
	"content-length": func(l, r string) string {
		return fmt.Sprintf("Body size changed from %s to %s", byteSize(l), byteSize(r))
	},
}

func byteSize(v string) string {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return v
	}
	return humanize.Bytes(n)
}

// DiffHeaders compares two header sets over the union of their
// lower-cased names. Equal values are skipped. The result is sorted by
// header name and never nil.
func DiffHeaders(left, right http.Header) []HeaderDiff {
	l, r := flatten(left), flatten(right)

	names := make([]string, 0, len(l)+len(r))
	for name := range l {
		names = append(names, name)
	}
	for name := range r {
		if _, ok := l[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := []HeaderDiff{}
	for _, name := range names {
		lv, inLeft := l[name]
		rv, inRight := r[name]
		d := HeaderDiff{
			Header:       name,
			LeftValue:    lv,
			RightValue:   rv,
			Significance: HeaderSignificance(name),
		}
		switch {
		case inLeft && !inRight:
			d.Type = Removed
			d.Explanation = fmt.Sprintf("Header %s is only present in the left response", name)
		case !inLeft && inRight:
			d.Type = Added
			d.Explanation = fmt.Sprintf("Header %s is only present in the right response", name)
		case lv == rv:
			continue
		default:
			d.Type = Modified
			if explain, ok := explainers[name]; ok {
				d.Explanation = explain(lv, rv)
			} else {
				d.Explanation = fmt.Sprintf("Value of %s changed", name)
			}
		}
		out = append(out, d)
	}
	return out
}

// flatten lower-cases header names and joins repeated values with ", ".
func flatten(h http.Header) map[string]string {
	grouped := make(map[string][]string, len(h))
	for name, values := range h {
		key := strings.ToLower(name)
		grouped[key] = append(grouped[key], values...)
	}
	out := make(map[string]string, len(grouped))
	for name, values := range grouped {
		out[name] = strings.Join(values, ", ")
	}
	return out
}
