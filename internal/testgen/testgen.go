// Package testgen synthesizes API test source code from a captured
// exchange. Each test is built once as a list of assertions and then
// rendered for every requested framework, so what a test checks never
// depends on the framework it is written for.
package testgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/capscope/internal/capture"
)

// Framework is a target test framework.
type Framework string

const (
	Vitest     Framework = "vitest"
	Jest       Framework = "jest"
	Mocha      Framework = "mocha"
	Playwright Framework = "playwright"
)

// Frameworks returns all supported frameworks.
func Frameworks() []Framework {
	return []Framework{Vitest, Jest, Mocha, Playwright}
}

// ParseFramework resolves a framework name case-insensitively.
func ParseFramework(name string) (Framework, error) {
	fw := Framework(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := renderers[fw]; !ok {
		return "", fmt.Errorf("unsupported framework: %s", name)
	}
	return fw, nil
}

// ErrIncompleteCapture is returned when a request or response is missing.
var ErrIncompleteCapture = errors.New("capture needs both a request and a response")

// GeneratedTest is one test rendered for one framework.
type GeneratedTest struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Framework   Framework   `json:"framework" yaml:"framework"`
	Code        string      `json:"code" yaml:"code"`
	Assertions  []Assertion `json:"assertions" yaml:"assertions"`
}

// Options controls which tests are synthesized.
type Options struct {
	Frameworks    []Framework
	IncludeSchema bool
	IncludeTiming bool
}

// Generate builds the test cases for one exchange and renders each case
// for every framework in opts. With no frameworks, vitest is used.
// Results are ordered by case, then framework.
func Generate(req *capture.Request, resp *capture.Response, opts Options) ([]GeneratedTest, error) {
	if req == nil || resp == nil {
		return nil, ErrIncompleteCapture
	}
	frameworks := opts.Frameworks
	if len(frameworks) == 0 {
		frameworks = []Framework{Vitest}
	}
	for _, fw := range frameworks {
		if _, ok := renderers[fw]; !ok {
			return nil, fmt.Errorf("unsupported framework: %s", fw)
		}
	}

	cases := Cases(req, resp, opts)
	out := make([]GeneratedTest, 0, len(cases)*len(frameworks))
	for _, c := range cases {
		for _, fw := range frameworks {
			out = append(out, GeneratedTest{
				Name:        c.Name,
				Description: c.Description,
				Framework:   fw,
				Code:        renderers[fw](req, c),
				Assertions:  c.Assertions,
			})
		}
	}
	return out, nil
}

// Render writes the source of a single case for fw.
func Render(fw Framework, req *capture.Request, c Case) (string, error) {
	render, ok := renderers[fw]
	if !ok {
		return "", fmt.Errorf("unsupported framework: %s", fw)
	}
	return render(req, c), nil
}
