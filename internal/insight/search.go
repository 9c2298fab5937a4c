package insight

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// records adapts a record slice to fuzzy.Source.
type records []Record

func (r records) Len() int { return len(r) }

func (r records) String(i int) string {
	rec := r[i]
	parts := []string{string(rec.Kind), rec.ID}
	keys := make([]string, 0, len(rec.Metadata))
	for k := range rec.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, rec.Metadata[k])
	}
	return strings.Join(parts, " ")
}

// Search fuzzy-matches query against each record's kind, id and metadata
// values, best match first. An empty query returns recs unchanged.
func Search(recs []Record, query string) []Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return recs
	}
	matches := fuzzy.FindFrom(query, records(recs))
	out := make([]Record, 0, len(matches))
	for _, m := range matches {
		out = append(out, recs[m.Index])
	}
	return out
}
