package inspect

import (
	"net/http"
	"strings"

	"github.com/sadopc/capscope/internal/capture"
)

// CookieAnalysis is one parsed Set-Cookie entry.
type CookieAnalysis struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Domain   string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Expires  string `json:"expires,omitempty" yaml:"expires,omitempty"`
	HTTPOnly bool   `json:"http_only" yaml:"http_only"`
	Secure   bool   `json:"secure" yaml:"secure"`
	SameSite string `json:"same_site,omitempty" yaml:"same_site,omitempty"`
	Purpose  string `json:"purpose" yaml:"purpose"`
}

const (
	PurposeSession     = "Session management"
	PurposeCSRF        = "CSRF protection"
	PurposeAuth        = "Authentication"
	PurposePreferences = "User preferences"
	PurposeAnalytics   = "Analytics tracking"
	PurposeUnknown     = "Unknown"
)

// cookiePurposes maps name fragments to a purpose. First match wins.
var cookiePurposes = []struct {
	fragments []string
	purpose   string
}{
	{[]string{"session", "sid"}, PurposeSession},
	{[]string{"csrf", "xsrf"}, PurposeCSRF},
	{[]string{"auth", "token"}, PurposeAuth},
	{[]string{"pref", "settings"}, PurposePreferences},
	{[]string{"analytics", "ga"}, PurposeAnalytics},
}

// CookiePurpose infers what a cookie is for from its name.
func CookiePurpose(name string) string {
	lower := strings.ToLower(name)
	for _, p := range cookiePurposes {
		for _, f := range p.fragments {
			if strings.Contains(lower, f) {
				return p.purpose
			}
		}
	}
	return PurposeUnknown
}

// ParseSetCookie parses a single Set-Cookie header value. Entries without
// a name=value pair are reported as not ok. Lines net/http rejects for
// their characters (spaces in names, quotes or non-ASCII in values) are
// still read with a plain split.
func ParseSetCookie(line string) (CookieAnalysis, bool) {
	line = strings.TrimSpace(line)
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return splitSetCookie(line)
	}

	a := CookieAnalysis{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.RawExpires,
		HTTPOnly: c.HttpOnly,
		Secure:   c.Secure,
		Purpose:  CookiePurpose(c.Name),
	}
	switch c.SameSite {
	case http.SameSiteStrictMode:
		a.SameSite = "strict"
	case http.SameSiteLaxMode:
		a.SameSite = "lax"
	case http.SameSiteNoneMode:
		a.SameSite = "none"
	}
	return a, true
}

// splitSetCookie reads name=value and the known attributes segment by
// segment. Unknown attributes are ignored.
func splitSetCookie(line string) (CookieAnalysis, bool) {
	parts := strings.Split(line, ";")
	name, value, ok := strings.Cut(parts[0], "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return CookieAnalysis{}, false
	}

	a := CookieAnalysis{
		Name:    name,
		Value:   strings.TrimSpace(value),
		Purpose: CookiePurpose(name),
	}
	for _, part := range parts[1:] {
		key, val, _ := strings.Cut(part, "=")
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "domain":
			a.Domain = val
		case "path":
			a.Path = val
		case "expires":
			a.Expires = val
		case "httponly":
			a.HTTPOnly = true
		case "secure":
			a.Secure = true
		case "samesite":
			a.SameSite = strings.ToLower(val)
		}
	}
	return a, true
}

// ParseSetCookies parses every Set-Cookie header of resp, skipping
// malformed entries.
func ParseSetCookies(resp *capture.Response) []CookieAnalysis {
	if resp == nil {
		return nil
	}
	var out []CookieAnalysis
	for _, line := range capture.HeaderValues(resp.Headers, "Set-Cookie") {
		if c, ok := ParseSetCookie(line); ok {
			out = append(out, c)
		}
	}
	return out
}
