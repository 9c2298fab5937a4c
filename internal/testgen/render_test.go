package testgen

import (
	"strings"
	"testing"

	"github.com/sadopc/capscope/internal/capture"
)

func renderAll(t *testing.T, fw Framework) string {
	t.Helper()
	req, resp := testExchange()
	tests, err := Generate(req, resp, Options{Frameworks: []Framework{fw}, IncludeSchema: true, IncludeTiming: true})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	var all []string
	for _, gt := range tests {
		all = append(all, gt.Code)
	}
	return strings.Join(all, "\n")
}

func TestRenderFrameworkSyntax(t *testing.T) {
	tests := []struct {
		fw      Framework
		want    []string
		notWant []string
	}{
		{
			fw: Vitest,
			want: []string{
				`import { describe, it, expect } from "vitest";`,
				`describe("POST /users", () => {`,
				`const response = await fetch("https://api.example.com/users?expand=1", {`,
				`expect(response.status).toBe(200);`,
				`expect(response.headers.get("content-type")).toContain("application/json");`,
				`expect(body["name"]).toBe("John");`,
				`expect(typeof body["id"]).toBe("number");`,
				`expect(elapsed).toBeLessThan(152);`,
			},
			notWant: []string{"chai", "@playwright/test"},
		},
		{
			fw: Jest,
			want: []string{
				`test("returns status 200", async () => {`,
				`expect(response.status).toBe(200);`,
				`expect(body["profile"]).not.toBeUndefined();`,
				`expect(response.headers.get("x-request-id")).not.toBeNull();`,
			},
			notWant: []string{"import ", "toBeTruthy"},
		},
		{
			fw: Mocha,
			want: []string{
				`import { expect } from "chai";`,
				`expect(response.status).to.equal(200);`,
				`expect(response.headers.get("cache-control")).to.equal("no-store");`,
				`expect(response.headers.get("x-request-id")).to.not.be.null;`,
				`expect(body["profile"]).to.not.be.undefined;`,
				`expect(elapsed).to.be.below(152);`,
			},
		},
		{
			fw: Playwright,
			want: []string{
				`import { test, expect } from "@playwright/test";`,
				`test("returns status 200", async ({ request }) => {`,
				`const response = await request.fetch(`,
				`expect(response.status()).toBe(200);`,
				`expect(response.headers()["content-type"]).toContain("application/json");`,
				`data: "{\"name\":\"John\",\"email\":\"john@example.com\"}",`,
				`expect(response.headers()["x-request-id"]).not.toBeUndefined();`,
			},
			notWant: []string{"await fetch("},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.fw), func(t *testing.T) {
			code := renderAll(t, tt.fw)
			for _, w := range tt.want {
				if !strings.Contains(code, w) {
					t.Errorf("missing %q in:\n%s", w, code)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(code, nw) {
					t.Errorf("unexpected %q", nw)
				}
			}
		})
	}
}

func TestRenderFalsyBodiesArePresent(t *testing.T) {
	req, _ := testExchange()
	tests := []struct {
		body      string
		wantEqual string
	}{
		{"false", "false"},
		{"0", "0"},
		{`""`, `""`},
		{"null", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := &capture.Response{
				StatusCode: 200,
				Headers:    capture.NewHeader(map[string]string{"X-Request-Id": ""}),
				Body:       tt.body,
			}
			for _, fw := range Frameworks() {
				tests, err := Generate(req, resp, Options{Frameworks: []Framework{fw}})
				if err != nil {
					t.Fatal(err)
				}
				var code strings.Builder
				for _, gt := range tests {
					code.WriteString(gt.Code)
				}
				src := code.String()
				for _, bad := range []string{"toBeTruthy", "to.be.ok"} {
					if strings.Contains(src, bad) {
						t.Errorf("%s: %q would fail against the captured response:\n%s", fw, bad, src)
					}
				}
				present := "expect(body).not.toBeUndefined();"
				equal := "expect(body).toBe(" + tt.wantEqual + ");"
				if fw == Mocha {
					present = "expect(body).to.not.be.undefined;"
					equal = "expect(body).to.equal(" + tt.wantEqual + ");"
				}
				if !strings.Contains(src, present) || !strings.Contains(src, equal) {
					t.Errorf("%s: missing %q or %q in:\n%s", fw, present, equal, src)
				}
			}
		})
	}
}

func TestRenderRequestOptions(t *testing.T) {
	code := renderAll(t, Vitest)
	if strings.Contains(code, "Content-Length") {
		t.Error("Content-Length must not be replayed")
	}
	if !strings.Contains(code, `"Authorization": "Bearer abc",`) {
		t.Error("request headers should be replayed")
	}
	if !strings.Contains(code, `body: "{\"name\":\"John\",\"email\":\"john@example.com\"}",`) {
		t.Errorf("JSON request body should be compacted:\n%s", code)
	}
}

func TestRenderOnlyParsesBodyWhenNeeded(t *testing.T) {
	req, resp := testExchange()
	code, err := Render(Jest, req, statusCase("POST /users", resp))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(code, "response.json()") || strings.Contains(code, "Date.now()") {
		t.Errorf("status-only test should not parse the body or time the request:\n%s", code)
	}
	if _, err := Render("ava", req, Case{}); err == nil {
		t.Error("expected error for unknown framework")
	}
}

func TestJSLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"a<b>", `"a<b>"`},
		{`quote"d`, `"quote\"d"`},
		{42, "42"},
		{nil, "null"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := jsLiteral(tt.in); got != tt.want {
			t.Errorf("jsLiteral(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
