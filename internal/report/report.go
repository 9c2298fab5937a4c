// Package report renders analysis results as styled text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Printer writes results to Out. Color enables ANSI styling and syntax
// highlighting with the chroma style named by Theme.
type Printer struct {
	Out    io.Writer
	Format Format
	Color  bool
	Theme  string
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (p Printer) style(s lipgloss.Style, text string) string {
	if !p.Color {
		return text
	}
	return s.Render(text)
}

// encode writes v as JSON or YAML. It reports false for the text format.
func (p Printer) encode(v any) (bool, error) {
	switch p.Format {
	case FormatJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("encoding json: %w", err)
		}
		data = pretty.Pretty(data)
		if p.Color {
			data = pretty.Color(data, nil)
		}
		_, err = p.Out.Write(data)
		return true, err
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("encoding yaml: %w", err)
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func (p Printer) section(name string) {
	fmt.Fprintf(p.Out, "\n%s\n", p.style(titleStyle, name))
}

func (p Printer) field(name, value string) {
	fmt.Fprintf(p.Out, "  %-14s %s\n", p.style(labelStyle, name), value)
}

func (p Printer) bullets(items []string, s lipgloss.Style, mark string) {
	for _, it := range items {
		fmt.Fprintf(p.Out, "  %s %s\n", p.style(s, mark), it)
	}
}
