package inspect

import (
	"fmt"
	"time"

	"github.com/sadopc/capscope/internal/capture"
)

// CaptureExplanation is the combined analysis of one request/response pair.
type CaptureExplanation struct {
	Summary         string            `json:"summary" yaml:"summary"`
	Auth            *AuthFlowAnalysis `json:"auth,omitempty" yaml:"auth,omitempty"`
	JWT             *JWTAnalysis      `json:"jwt,omitempty" yaml:"jwt,omitempty"`
	Cookies         []CookieAnalysis  `json:"cookies" yaml:"cookies"`
	CORS            *CORSAnalysis     `json:"cors,omitempty" yaml:"cors,omitempty"`
	Security        *SecurityAnalysis `json:"security,omitempty" yaml:"security,omitempty"`
	Recommendations []string          `json:"recommendations" yaml:"recommendations"`
}

// minSecurityScore is the score below which a header review is recommended.
const minSecurityScore = 70

// Explainer runs every detector over a captured exchange. It holds only a
// clock and is safe for concurrent use.
type Explainer struct {
	now func() time.Time
}

// NewExplainer returns an Explainer that evaluates token expiry against
// now. A nil now uses time.Now.
func NewExplainer(now func() time.Time) *Explainer {
	if now == nil {
		now = time.Now
	}
	return &Explainer{now: now}
}

// Explain analyzes req and, when present, resp. CORS and the security
// audit only run when a response is supplied.
func (e *Explainer) Explain(req *capture.Request, resp *capture.Response) CaptureExplanation {
	exp := CaptureExplanation{
		Summary:         summarize(req, resp),
		Cookies:         []CookieAnalysis{},
		Recommendations: []string{},
	}

	if req != nil {
		auth := DetectAuthFlow(req)
		exp.Auth = &auth
		if token, ok := ExtractJWT(req); ok {
			jwt := AnalyzeJWT(token, e.now())
			exp.JWT = &jwt
		}
	}

	if resp != nil {
		if cookies := ParseSetCookies(resp); len(cookies) > 0 {
			exp.Cookies = cookies
		}
		cors := AnalyzeCORS(resp)
		exp.CORS = &cors
		sec := AnalyzeSecurity(req, resp)
		exp.Security = &sec
	}

	exp.Recommendations = recommend(exp)
	return exp
}

func summarize(req *capture.Request, resp *capture.Response) string {
	method, path := "UNKNOWN", "/"
	if req != nil {
		method = req.Method
		path = req.Path()
	}
	if resp == nil {
		return fmt.Sprintf("%s request to %s: No response", method, path)
	}
	return fmt.Sprintf("%s request to %s returned %d %s", method, path, resp.StatusCode, resp.Status())
}

func recommend(exp CaptureExplanation) []string {
	recs := []string{}

	if exp.Auth != nil {
		switch exp.Auth.Type {
		case AuthNone:
			recs = append(recs, "Consider adding authentication to protect this endpoint")
		case AuthBasic:
			recs = append(recs, "Basic authentication sends credentials with every request; ensure HTTPS is always used")
		}
	}

	if exp.JWT != nil {
		if exp.JWT.IsExpired {
			recs = append(recs, "The JWT token has expired; refresh the token")
		}
		if exp.JWT.Algorithm == "none" {
			recs = append(recs, "JWT uses the 'none' algorithm, which is insecure; require a signed algorithm")
		}
	}

	for _, c := range exp.Cookies {
		if c.Purpose == PurposeSession && !c.HTTPOnly {
			recs = append(recs, fmt.Sprintf("Session cookie %q should set the HttpOnly flag to prevent access from scripts", c.Name))
		}
	}
	for _, c := range exp.Cookies {
		if !c.Secure {
			recs = append(recs, fmt.Sprintf("Cookie %q should set the Secure flag so it is only sent over HTTPS", c.Name))
		}
	}

	if exp.Security != nil && exp.Security.Score < minSecurityScore {
		recs = append(recs, fmt.Sprintf("Review and add missing security headers (score %d/100)", exp.Security.Score))
	}

	if exp.CORS != nil {
		recs = append(recs, exp.CORS.Issues...)
	}
	return recs
}
