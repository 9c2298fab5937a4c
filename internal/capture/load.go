package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Values holds the values of one header. In capture files it may be
// written as a single string or as a list of strings.
type Values []string

func (v *Values) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Values{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("header value must be a string or a list of strings")
	}
	*v = list
	return nil
}

func (v *Values) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*v = Values{n.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*v = list
		return nil
	default:
		return fmt.Errorf("line %d: header value must be a string or a list of strings", n.Line)
	}
}

// WireRequest is the file and API representation of a Request.
type WireRequest struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]Values `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      string            `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// WireResponse is the file and API representation of a Response.
type WireResponse struct {
	StatusCode int               `json:"status_code" yaml:"status_code"`
	StatusText string            `json:"status_text,omitempty" yaml:"status_text,omitempty"`
	Headers    map[string]Values `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
	Timing     *Timing           `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// WireExchange is the file and API representation of an Exchange.
type WireExchange struct {
	Label    string        `json:"label,omitempty" yaml:"label,omitempty"`
	Request  *WireRequest  `json:"request,omitempty" yaml:"request,omitempty"`
	Response *WireResponse `json:"response,omitempty" yaml:"response,omitempty"`
}

func toHeader(m map[string]Values) http.Header {
	h := make(http.Header, len(m))
	for name, values := range m {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return h
}

// Capture converts the wire form into a Request. A nil receiver yields nil.
func (w *WireRequest) Capture() *Request {
	if w == nil {
		return nil
	}
	method := strings.ToUpper(w.Method)
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method:    method,
		URL:       w.URL,
		Headers:   toHeader(w.Headers),
		Body:      w.Body,
		Timestamp: w.Timestamp,
	}
}

// Capture converts the wire form into a Response. A nil receiver yields nil.
func (w *WireResponse) Capture() *Response {
	if w == nil {
		return nil
	}
	var timing *Timing
	if w.Timing != nil {
		t := *w.Timing
		timing = &t
	}
	return &Response{
		StatusCode: w.StatusCode,
		StatusText: w.StatusText,
		Headers:    toHeader(w.Headers),
		Body:       w.Body,
		Timing:     timing,
	}
}

// Capture converts the wire form into an Exchange.
func (w WireExchange) Capture() Exchange {
	return Exchange{
		Label:    w.Label,
		Request:  w.Request.Capture(),
		Response: w.Response.Capture(),
	}
}

// Format names the encoding of a capture file.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHAR  Format = "har"
)

// LoadFile reads every exchange from a JSON, YAML or HAR capture file.
func LoadFile(path string) ([]Exchange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture file: %w", err)
	}

	format := FormatAuto
	switch strings.ToLower(filepath.Ext(path)) {
	case ".har":
		format = FormatHAR
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	}

	exchanges, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return exchanges, nil
}

// Decode parses capture data in the given format. FormatAuto sniffs the
// content: JSON with a top-level "log" object is treated as HAR.
func Decode(data []byte, format Format) ([]Exchange, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	switch format {
	case FormatHAR:
		return ParseHAR(data)
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var docs []WireExchange
			if err := json.Unmarshal(trimmed, &docs); err != nil {
				return nil, fmt.Errorf("parsing capture JSON: %w", err)
			}
			return convertAll(docs)
		}
		var doc WireExchange
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing capture JSON: %w", err)
		}
		return convertAll([]WireExchange{doc})
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("parsing capture YAML: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var docs []WireExchange
			if err := node.Decode(&docs); err != nil {
				return nil, fmt.Errorf("parsing capture YAML: %w", err)
			}
			return convertAll(docs)
		}
		var doc WireExchange
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing capture YAML: %w", err)
		}
		return convertAll([]WireExchange{doc})
	default:
		return nil, fmt.Errorf("unsupported capture format: %s", format)
	}
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatYAML
	}
	switch trimmed[0] {
	case '[':
		return FormatJSON
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err == nil {
			if _, ok := probe["log"]; ok {
				return FormatHAR
			}
		}
		return FormatJSON
	}
	return FormatYAML
}

func convertAll(docs []WireExchange) ([]Exchange, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("capture contains no exchanges")
	}
	out := make([]Exchange, 0, len(docs))
	for i, d := range docs {
		if d.Request == nil && d.Response == nil {
			return nil, fmt.Errorf("exchange %d has neither request nor response", i)
		}
		out = append(out, d.Capture())
	}
	return out, nil
}
