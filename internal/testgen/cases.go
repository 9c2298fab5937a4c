package testgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime"
	"sort"

	"github.com/sadopc/capscope/internal/capture"
)

// AssertionType groups assertions by the part of the response they check.
type AssertionType string

const (
	AssertStatus AssertionType = "status"
	AssertHeader AssertionType = "header"
	AssertBody   AssertionType = "body"
	AssertTiming AssertionType = "timing"
	AssertSchema AssertionType = "schema"
)

// Check is the comparison an assertion performs.
type Check string

const (
	CheckEquals   Check = "equals"
	CheckExists   Check = "exists"
	CheckContains Check = "contains"
	CheckLength   Check = "length"
	CheckIsArray  Check = "is_array"
	CheckTypeOf   Check = "type_of"
	CheckLessThan Check = "less_than"
)

// Assertion is one framework-neutral expectation. Target names the header
// or top-level body key it applies to; an empty body target is the whole
// body.
type Assertion struct {
	Type        AssertionType `json:"type" yaml:"type"`
	Check       Check         `json:"check" yaml:"check"`
	Target      string        `json:"target,omitempty" yaml:"target,omitempty"`
	Description string        `json:"description" yaml:"description"`
	Expected    any           `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// Case is a framework-neutral test.
type Case struct {
	Name        string
	Description string
	Assertions  []Assertion
}

// needsBody reports whether rendering must parse the response body.
func (c Case) needsBody() bool {
	for _, a := range c.Assertions {
		if a.Type == AssertBody || a.Type == AssertSchema {
			return true
		}
	}
	return false
}

// needsTimer reports whether rendering must measure elapsed time.
func (c Case) needsTimer() bool {
	for _, a := range c.Assertions {
		if a.Type == AssertTiming {
			return true
		}
	}
	return false
}

const (
	maxBodyKeys     = 5
	timingTolerance = 1.5
)

// watchedHeaders are asserted when present on the response.
var watchedHeaders = []struct {
	name  string
	check Check
}{
	{"content-type", CheckContains},
	{"cache-control", CheckEquals},
	{"x-request-id", CheckExists},
}

// Cases builds the framework-neutral tests for one exchange: always a
// status test, one test per watched header, a body test for JSON bodies,
// and a timing test when requested and timing was captured.
func Cases(req *capture.Request, resp *capture.Response, opts Options) []Case {
	target := fmt.Sprintf("%s %s", req.Method, req.Path())
	cases := []Case{statusCase(target, resp)}

	for _, h := range watchedHeaders {
		if !capture.HasHeader(resp.Headers, h.name) {
			continue
		}
		cases = append(cases, headerCase(target, h.name, h.check, capture.HeaderValue(resp.Headers, h.name)))
	}

	if c, ok := bodyCase(target, resp.Body, opts.IncludeSchema); ok {
		cases = append(cases, c)
	}

	if opts.IncludeTiming && resp.Timing != nil && resp.Timing.Total > 0 {
		cases = append(cases, timingCase(target, resp.Timing.Total))
	}
	return cases
}

func statusCase(target string, resp *capture.Response) Case {
	return Case{
		Name:        fmt.Sprintf("returns status %d", resp.StatusCode),
		Description: fmt.Sprintf("%s responds with %d %s", target, resp.StatusCode, resp.Status()),
		Assertions: []Assertion{{
			Type:        AssertStatus,
			Check:       CheckEquals,
			Description: fmt.Sprintf("status is %d", resp.StatusCode),
			Expected:    resp.StatusCode,
		}},
	}
}

func headerCase(target, name string, check Check, value string) Case {
	a := Assertion{Type: AssertHeader, Check: check, Target: name}
	switch check {
	case CheckContains:
		if mediaType, _, err := mime.ParseMediaType(value); err == nil {
			value = mediaType
		}
		a.Expected = value
		a.Description = fmt.Sprintf("%s contains %s", name, value)
	case CheckEquals:
		a.Expected = value
		a.Description = fmt.Sprintf("%s is %s", name, value)
	default:
		a.Description = fmt.Sprintf("%s is present", name)
	}
	return Case{
		Name:        fmt.Sprintf("returns %s header", name),
		Description: fmt.Sprintf("%s sets the %s header", target, name),
		Assertions:  []Assertion{a},
	}
}

func bodyCase(target, body string, includeSchema bool) (Case, bool) {
	if body == "" {
		return Case{}, false
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Case{}, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return Case{}, false
	}

	c := Case{
		Name:        "returns expected body",
		Description: fmt.Sprintf("%s returns a JSON body with the captured shape", target),
		Assertions: []Assertion{{
			Type:        AssertBody,
			Check:       CheckExists,
			Description: "body is present",
		}},
	}

	switch root := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(root))
		for k := range root {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > maxBodyKeys {
			keys = keys[:maxBodyKeys]
		}
		for _, k := range keys {
			c.Assertions = append(c.Assertions, valueAssertion(k, root[k]))
			if includeSchema {
				c.Assertions = append(c.Assertions, Assertion{
					Type:        AssertSchema,
					Check:       CheckTypeOf,
					Target:      k,
					Description: fmt.Sprintf("%s is of type %s", k, jsType(root[k])),
					Expected:    jsType(root[k]),
				})
			}
		}
	case []any:
		c.Assertions = append(c.Assertions,
			Assertion{Type: AssertBody, Check: CheckIsArray, Description: "body is an array"},
			Assertion{
				Type:        AssertBody,
				Check:       CheckLength,
				Description: fmt.Sprintf("body has %d item(s)", len(root)),
				Expected:    len(root),
			},
		)
	default:
		c.Assertions = append(c.Assertions, Assertion{
			Type:        AssertBody,
			Check:       CheckEquals,
			Description: fmt.Sprintf("body equals %v", root),
			Expected:    root,
		})
	}
	return c, true
}

// valueAssertion checks a leaf exactly and a nested value for presence.
func valueAssertion(key string, v any) Assertion {
	switch v.(type) {
	case map[string]any, []any:
		return Assertion{
			Type:        AssertBody,
			Check:       CheckExists,
			Target:      key,
			Description: fmt.Sprintf("%s is present", key),
		}
	default:
		return Assertion{
			Type:        AssertBody,
			Check:       CheckEquals,
			Target:      key,
			Description: fmt.Sprintf("%s equals %s", key, jsLiteral(v)),
			Expected:    v,
		}
	}
}

func timingCase(target string, total int64) Case {
	limit := int64(math.Ceil(float64(total) * timingTolerance))
	return Case{
		Name:        fmt.Sprintf("responds within %dms", limit),
		Description: fmt.Sprintf("%s answered in %dms when captured", target, total),
		Assertions: []Assertion{{
			Type:        AssertTiming,
			Check:       CheckLessThan,
			Description: fmt.Sprintf("response time is below %dms", limit),
			Expected:    limit,
		}},
	}
}

// jsType is the JavaScript typeof of a decoded JSON value.
func jsType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}
