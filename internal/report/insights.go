package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"

	"github.com/sadopc/capscope/internal/insight"
)

// Insights writes a list of stored insights.
func (p Printer) Insights(recs []insight.Record) error {
	if recs == nil {
		recs = []insight.Record{}
	}
	if done, err := p.encode(recs); done {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(p.Out, p.style(mutedStyle, "No insights found."))
		return nil
	}
	for _, r := range recs {
		fmt.Fprintf(p.Out, "%s  %-8s %-14s %s  %s\n",
			r.ID, r.Kind, humanize.Time(r.CreatedAt), humanize.Bytes(uint64(len(r.Payload))),
			p.style(mutedStyle, metadataText(r.Metadata)))
	}
	return nil
}

// Insight writes one stored insight including its payload.
func (p Printer) Insight(rec insight.Record) error {
	if p.Format == FormatYAML {
		// Payload is raw JSON; decode it so YAML shows structure.
		var payload any
		_ = json.Unmarshal(rec.Payload, &payload)
		_, err := p.encode(struct {
			insight.Record `yaml:",inline"`
			Payload        any `yaml:"payload"`
		}{rec, payload})
		return err
	}
	if done, err := p.encode(rec); done {
		return err
	}

	p.field("id", rec.ID)
	p.field("kind", string(rec.Kind))
	p.field("user", rec.UserID)
	p.field("created", fmt.Sprintf("%s (%s)", rec.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(rec.CreatedAt)))
	if len(rec.Metadata) > 0 {
		p.field("metadata", metadataText(rec.Metadata))
	}
	body := pretty.Pretty(rec.Payload)
	if p.Color {
		body = pretty.Color(body, nil)
	}
	_, err := fmt.Fprintf(p.Out, "\n%s", body)
	return err
}

func metadataText(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+meta[k])
	}
	return strings.Join(parts, " ")
}
