package inspect

import (
	"net/http"
	"testing"

	"github.com/sadopc/capscope/internal/capture"
)

func TestParseSetCookie(t *testing.T) {
	got, ok := ParseSetCookie("sid=abc123; Path=/; Domain=example.com; HttpOnly; Secure; SameSite=Strict")
	if !ok {
		t.Fatal("ParseSetCookie() not ok")
	}
	want := CookieAnalysis{
		Name:     "sid",
		Value:    "abc123",
		Domain:   "example.com",
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
		SameSite: "strict",
		Purpose:  PurposeSession,
	}
	if got != want {
		t.Errorf("ParseSetCookie() = %+v, want %+v", got, want)
	}
}

func TestParseSetCookieAttributes(t *testing.T) {
	tests := []struct {
		line         string
		wantSameSite string
		wantExpires  string
		wantHTTPOnly bool
		wantSecure   bool
	}{
		{"pref=dark; SameSite=Lax", "lax", "", false, false},
		{"pref=dark; samesite=none; secure", "none", "", false, true},
		{"pref=dark; Expires=Wed, 21 Oct 2026 07:28:00 GMT; httponly", "", "Wed, 21 Oct 2026 07:28:00 GMT", true, false},
		{"my cookie=1; Secure", "", "", false, true},
		{`data={"a":1}; HttpOnly`, "", "", true, false},
		{"name=Zoë; Path=/; SameSite=Strict", "strict", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseSetCookie(tt.line)
			if !ok {
				t.Fatal("not ok")
			}
			if got.SameSite != tt.wantSameSite {
				t.Errorf("SameSite = %q, want %q", got.SameSite, tt.wantSameSite)
			}
			if got.Expires != tt.wantExpires {
				t.Errorf("Expires = %q, want %q", got.Expires, tt.wantExpires)
			}
			if got.HTTPOnly != tt.wantHTTPOnly || got.Secure != tt.wantSecure {
				t.Errorf("HTTPOnly/Secure = %v/%v", got.HTTPOnly, got.Secure)
			}
		})
	}
}

func TestParseSetCookieLenientValues(t *testing.T) {
	tests := []struct {
		line      string
		wantName  string
		wantValue string
		wantPath  string
	}{
		{"my cookie=1; Secure", "my cookie", "1", ""},
		{`data={"a":1}; HttpOnly`, "data", `{"a":1}`, ""},
		{"name=Zoë; Path=/", "name", "Zoë", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseSetCookie(tt.line)
			if !ok {
				t.Fatal("not ok")
			}
			if got.Name != tt.wantName || got.Value != tt.wantValue || got.Path != tt.wantPath {
				t.Errorf("got name=%q value=%q path=%q", got.Name, got.Value, got.Path)
			}
		})
	}
}

func TestParseSetCookiesKeepsLenientLines(t *testing.T) {
	resp := &capture.Response{Headers: http.Header{"Set-Cookie": {
		"session id=abc; Path=/",
		"novalue",
	}}}
	got := ParseSetCookies(resp)
	if len(got) != 1 || got[0].Name != "session id" || got[0].HTTPOnly {
		t.Fatalf("ParseSetCookies() = %+v", got)
	}
	if got[0].Purpose != PurposeSession {
		t.Errorf("Purpose = %q", got[0].Purpose)
	}
}

func TestParseSetCookieMalformed(t *testing.T) {
	for _, line := range []string{"", "   ", "novalue", "=value"} {
		if _, ok := ParseSetCookie(line); ok {
			t.Errorf("ParseSetCookie(%q) ok = true", line)
		}
	}
}

func TestCookiePurpose(t *testing.T) {
	tests := map[string]string{
		"connect.sid":   PurposeSession,
		"SESSION_ID":    PurposeSession,
		"XSRF-TOKEN":    PurposeCSRF,
		"csrftoken":     PurposeCSRF,
		"auth_token":    PurposeAuth,
		"refresh_token": PurposeAuth,
		"user_prefs":    PurposePreferences,
		"settings":      PurposePreferences,
		"_ga":           PurposeAnalytics,
		"analytics_id":  PurposeAnalytics,
		"locale":        PurposeUnknown,
	}
	for name, want := range tests {
		if got := CookiePurpose(name); got != want {
			t.Errorf("CookiePurpose(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestParseSetCookies(t *testing.T) {
	resp := &capture.Response{
		StatusCode: 200,
		Headers: http.Header{
			"Set-Cookie": {"sid=1; HttpOnly", "broken", "theme=dark"},
		},
	}
	got := ParseSetCookies(resp)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "sid" || got[1].Name != "theme" {
		t.Errorf("names = %q, %q", got[0].Name, got[1].Name)
	}

	if got := ParseSetCookies(nil); got != nil {
		t.Errorf("ParseSetCookies(nil) = %v", got)
	}
}
