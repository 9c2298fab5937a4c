package testgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/sadopc/capscope/internal/capture"
)

type renderFunc func(req *capture.Request, c Case) string

var renderers = map[Framework]renderFunc{
	Vitest:     renderVitest,
	Jest:       renderJest,
	Mocha:      renderMocha,
	Playwright: renderPlaywright,
}

func renderVitest(req *capture.Request, c Case) string {
	return renderFetch(`import { describe, it, expect } from "vitest";`, "it", expectMatcher, req, c)
}

func renderJest(req *capture.Request, c Case) string {
	return renderFetch("", "test", expectMatcher, req, c)
}

func renderMocha(req *capture.Request, c Case) string {
	return renderFetch(`import { expect } from "chai";`, "it", chaiMatcher, req, c)
}

func renderPlaywright(req *capture.Request, c Case) string {
	var b strings.Builder
	b.WriteString("import { test, expect } from \"@playwright/test\";\n\n")
	fmt.Fprintf(&b, "test.describe(%s, () => {\n", jsLiteral(suiteName(req)))
	fmt.Fprintf(&b, "  test(%s, async ({ request }) => {\n", jsLiteral(c.Name))
	if c.needsTimer() {
		b.WriteString("    const started = Date.now();\n")
	}
	fmt.Fprintf(&b, "    const response = await request.fetch(%s, {\n", jsLiteral(req.URL))
	writeRequestOptions(&b, req, "data")
	b.WriteString("    });\n")
	writeTail(&b, c, playwrightAPI, expectMatcher)
	b.WriteString("  });\n});\n")
	return b.String()
}

// renderFetch renders frameworks that issue the request with fetch and
// share the describe/it layout.
func renderFetch(preamble, testFn string, match matcher, req *capture.Request, c Case) string {
	var b strings.Builder
	if preamble != "" {
		b.WriteString(preamble + "\n\n")
	}
	fmt.Fprintf(&b, "describe(%s, () => {\n", jsLiteral(suiteName(req)))
	fmt.Fprintf(&b, "  %s(%s, async () => {\n", testFn, jsLiteral(c.Name))
	if c.needsTimer() {
		b.WriteString("    const started = Date.now();\n")
	}
	fmt.Fprintf(&b, "    const response = await fetch(%s, {\n", jsLiteral(req.URL))
	writeRequestOptions(&b, req, "body")
	b.WriteString("    });\n")
	writeTail(&b, c, fetchAPI, match)
	b.WriteString("  });\n});\n")
	return b.String()
}

func suiteName(req *capture.Request) string {
	return req.Method + " " + req.Path()
}

// skippedRequestHeaders are computed by the client and never replayed.
var skippedRequestHeaders = map[string]bool{
	"Content-Length":    true,
	"Host":              true,
	"Connection":        true,
	"Transfer-Encoding": true,
}

func writeRequestOptions(b *strings.Builder, req *capture.Request, bodyField string) {
	fmt.Fprintf(b, "      method: %s,\n", jsLiteral(req.Method))

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		if !skippedRequestHeaders[http.CanonicalHeaderKey(name)] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) > 0 {
		b.WriteString("      headers: {\n")
		for _, name := range names {
			fmt.Fprintf(b, "        %s: %s,\n", jsLiteral(name), jsLiteral(strings.Join(req.Headers[name], ", ")))
		}
		b.WriteString("      },\n")
	}

	if req.Body != "" && req.Method != http.MethodGet && req.Method != http.MethodHead {
		body := []byte(req.Body)
		if json.Valid(body) {
			body = pretty.Ugly(body)
		}
		fmt.Fprintf(b, "      %s: %s,\n", bodyField, jsLiteral(string(body)))
	}
}

func writeTail(b *strings.Builder, c Case, api responseAPI, match matcher) {
	if c.needsTimer() {
		b.WriteString("    const elapsed = Date.now() - started;\n")
	}
	if c.needsBody() {
		b.WriteString("    const body = await response.json();\n")
	}
	b.WriteString("\n")
	for _, a := range c.Assertions {
		fmt.Fprintf(b, "    %s;\n", match(a, api.actual(a), api.absent(a)))
	}
}

// responseAPI describes how a framework exposes the response object.
// missingHeader is what a header lookup yields when the header is absent.
type responseAPI struct {
	status        string
	header        func(name string) string
	missingHeader string
}

var fetchAPI = responseAPI{
	status:        "response.status",
	header:        func(name string) string { return "response.headers.get(" + jsLiteral(name) + ")" },
	missingHeader: "null",
}

var playwrightAPI = responseAPI{
	status:        "response.status()",
	header:        func(name string) string { return "response.headers()[" + jsLiteral(name) + "]" },
	missingHeader: "undefined",
}

// absent is the JavaScript value the actual expression of a takes when
// the checked thing is missing. Empty or falsy values are still present.
func (api responseAPI) absent(a Assertion) string {
	if a.Type == AssertHeader {
		return api.missingHeader
	}
	return "undefined"
}

func (api responseAPI) actual(a Assertion) string {
	switch a.Type {
	case AssertStatus:
		return api.status
	case AssertHeader:
		return api.header(a.Target)
	case AssertTiming:
		return "elapsed"
	default:
		if a.Target == "" {
			return "body"
		}
		return "body[" + jsLiteral(a.Target) + "]"
	}
}

// matcher renders one assertion against an actual-value expression.
// absent names the value that means "missing" for existence checks.
type matcher func(a Assertion, actual, absent string) string

var expectAbsent = map[string]string{"null": "toBeNull", "undefined": "toBeUndefined"}

func expectMatcher(a Assertion, actual, absent string) string {
	want := jsLiteral(a.Expected)
	switch a.Check {
	case CheckExists:
		return fmt.Sprintf("expect(%s).not.%s()", actual, expectAbsent[absent])
	case CheckContains:
		return fmt.Sprintf("expect(%s).toContain(%s)", actual, want)
	case CheckLength:
		return fmt.Sprintf("expect(%s).toHaveLength(%s)", actual, want)
	case CheckIsArray:
		return fmt.Sprintf("expect(Array.isArray(%s)).toBe(true)", actual)
	case CheckTypeOf:
		return fmt.Sprintf("expect(typeof %s).toBe(%s)", actual, want)
	case CheckLessThan:
		return fmt.Sprintf("expect(%s).toBeLessThan(%s)", actual, want)
	default:
		return fmt.Sprintf("expect(%s).toBe(%s)", actual, want)
	}
}

func chaiMatcher(a Assertion, actual, absent string) string {
	want := jsLiteral(a.Expected)
	switch a.Check {
	case CheckExists:
		return fmt.Sprintf("expect(%s).to.not.be.%s", actual, absent)
	case CheckContains:
		return fmt.Sprintf("expect(%s).to.include(%s)", actual, want)
	case CheckLength:
		return fmt.Sprintf("expect(%s).to.have.lengthOf(%s)", actual, want)
	case CheckIsArray:
		return fmt.Sprintf("expect(Array.isArray(%s)).to.equal(true)", actual)
	case CheckTypeOf:
		return fmt.Sprintf("expect(typeof %s).to.equal(%s)", actual, want)
	case CheckLessThan:
		return fmt.Sprintf("expect(%s).to.be.below(%s)", actual, want)
	default:
		return fmt.Sprintf("expect(%s).to.equal(%s)", actual, want)
	}
}

// jsLiteral encodes v as a JavaScript literal. JSON is a subset of
// JavaScript expression syntax.
func jsLiteral(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "undefined"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
