package inspect

import (
	"net/url"
	"strings"

	"github.com/sadopc/capscope/internal/capture"
)

// CORSAnalysis summarizes the CORS policy a response advertises.
type CORSAnalysis struct {
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	AllowedMethods   []string `json:"allowed_methods,omitempty" yaml:"allowed_methods,omitempty"`
	AllowedHeaders   []string `json:"allowed_headers,omitempty" yaml:"allowed_headers,omitempty"`
	ExposedHeaders   []string `json:"exposed_headers,omitempty" yaml:"exposed_headers,omitempty"`
	AllowCredentials *bool    `json:"allow_credentials,omitempty" yaml:"allow_credentials,omitempty"`
	Issues           []string `json:"issues" yaml:"issues"`
}

// IssueCredentialsWithWildcard is recorded when a response allows
// credentials for any origin, a combination browsers refuse.
const IssueCredentialsWithWildcard = "Access-Control-Allow-Credentials cannot be used with wildcard origin (*)"

// AnalyzeCORS reads the Access-Control-* headers of resp.
func AnalyzeCORS(resp *capture.Response) CORSAnalysis {
	a := CORSAnalysis{Issues: []string{}}
	if resp == nil {
		return a
	}
	h := resp.Headers

	if capture.HasHeader(h, "Access-Control-Allow-Origin") {
		a.Enabled = true
		origin := strings.TrimSpace(capture.HeaderValue(h, "Access-Control-Allow-Origin"))
		if origin == "*" {
			a.AllowedOrigins = []string{"*"}
		} else {
			a.AllowedOrigins = splitList(origin)
		}
	}
	a.AllowedMethods = splitList(capture.HeaderValue(h, "Access-Control-Allow-Methods"))
	a.AllowedHeaders = splitList(capture.HeaderValue(h, "Access-Control-Allow-Headers"))
	a.ExposedHeaders = splitList(capture.HeaderValue(h, "Access-Control-Expose-Headers"))

	if capture.HasHeader(h, "Access-Control-Allow-Credentials") {
		creds := strings.EqualFold(strings.TrimSpace(capture.HeaderValue(h, "Access-Control-Allow-Credentials")), "true")
		a.AllowCredentials = &creds
	}

	if a.AllowCredentials != nil && *a.AllowCredentials && len(a.AllowedOrigins) == 1 && a.AllowedOrigins[0] == "*" {
		a.Issues = append(a.Issues, IssueCredentialsWithWildcard)
	}
	return a
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SecurityAnalysis is the outcome of the security header audit.
type SecurityAnalysis struct {
	HTTPS               bool     `json:"https" yaml:"https"`
	HSTS                string   `json:"hsts,omitempty" yaml:"hsts,omitempty"`
	CSP                 string   `json:"csp,omitempty" yaml:"csp,omitempty"`
	XFrameOptions       string   `json:"x_frame_options,omitempty" yaml:"x_frame_options,omitempty"`
	XContentTypeOptions string   `json:"x_content_type_options,omitempty" yaml:"x_content_type_options,omitempty"`
	XXSSProtection      string   `json:"x_xss_protection,omitempty" yaml:"x_xss_protection,omitempty"`
	Issues              []string `json:"issues" yaml:"issues"`
	Score               int      `json:"score" yaml:"score"`
}

// securityControl is one audited header. Controls with a zero penalty are
// recorded but never scored.
type securityControl struct {
	header  string
	penalty int
	issue   string
	valid   func(v string) bool
	record  func(a *SecurityAnalysis, v string)
}

var securityControls = []securityControl{
	{
		header:  "Strict-Transport-Security",
		penalty: 15,
		issue:   "Missing Strict-Transport-Security header (HSTS)",
		record:  func(a *SecurityAnalysis, v string) { a.HSTS = v },
	},
	{
		header:  "Content-Security-Policy",
		penalty: 20,
		issue:   "Missing Content-Security-Policy header",
		record:  func(a *SecurityAnalysis, v string) { a.CSP = v },
	},
	{
		header:  "X-Frame-Options",
		penalty: 10,
		issue:   "Missing X-Frame-Options header (clickjacking protection)",
		record:  func(a *SecurityAnalysis, v string) { a.XFrameOptions = v },
	},
	{
		header:  "X-Content-Type-Options",
		penalty: 10,
		issue:   "X-Content-Type-Options should be set to nosniff",
		valid:   func(v string) bool { return strings.EqualFold(strings.TrimSpace(v), "nosniff") },
		record:  func(a *SecurityAnalysis, v string) { a.XContentTypeOptions = v },
	},
	{
		header: "X-XSS-Protection",
		record: func(a *SecurityAnalysis, v string) { a.XXSSProtection = v },
	},
}

// AnalyzeSecurity audits the security headers of resp. The score starts at
// 100 and loses a fixed penalty per missing control, floored at 0. req is
// only used to determine whether the exchange used HTTPS and may be nil.
func AnalyzeSecurity(req *capture.Request, resp *capture.Response) SecurityAnalysis {
	a := SecurityAnalysis{Issues: []string{}, Score: 100}
	if req != nil {
		if u, err := url.Parse(req.URL); err == nil {
			a.HTTPS = strings.EqualFold(u.Scheme, "https") || strings.EqualFold(u.Scheme, "wss")
		}
	}

	var h map[string][]string
	if resp != nil {
		h = resp.Headers
	}
	for _, c := range securityControls {
		present := capture.HasHeader(h, c.header)
		v := capture.HeaderValue(h, c.header)
		if present {
			c.record(&a, v)
		}
		if c.penalty == 0 {
			continue
		}
		ok := present && strings.TrimSpace(v) != ""
		if ok && c.valid != nil {
			ok = c.valid(v)
		}
		if !ok {
			a.Score -= c.penalty
			a.Issues = append(a.Issues, c.issue)
		}
	}

	if a.Score < 0 {
		a.Score = 0
	}
	return a
}
