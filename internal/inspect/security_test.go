package inspect

import (
	"testing"

	"github.com/sadopc/capscope/internal/capture"
)

func response(headers map[string]string) *capture.Response {
	return &capture.Response{StatusCode: 200, Headers: capture.NewHeader(headers)}
}

func TestAnalyzeCORS(t *testing.T) {
	t.Run("wildcard with credentials", func(t *testing.T) {
		got := AnalyzeCORS(response(map[string]string{
			"Access-Control-Allow-Origin":      "*",
			"Access-Control-Allow-Credentials": "true",
		}))
		if !got.Enabled {
			t.Error("expected CORS enabled")
		}
		if len(got.Issues) != 1 || got.Issues[0] != IssueCredentialsWithWildcard {
			t.Errorf("Issues = %v", got.Issues)
		}
	})

	t.Run("explicit origin with credentials", func(t *testing.T) {
		got := AnalyzeCORS(response(map[string]string{
			"Access-Control-Allow-Origin":      "https://app.example.com",
			"Access-Control-Allow-Credentials": "true",
			"Access-Control-Allow-Methods":     "GET, POST ,OPTIONS",
			"Access-Control-Allow-Headers":     "Authorization,Content-Type",
			"Access-Control-Expose-Headers":    "X-Request-Id",
		}))
		if len(got.Issues) != 0 {
			t.Errorf("Issues = %v, want none", got.Issues)
		}
		if got.AllowCredentials == nil || !*got.AllowCredentials {
			t.Error("AllowCredentials should be true")
		}
		if len(got.AllowedMethods) != 3 || got.AllowedMethods[1] != "POST" {
			t.Errorf("AllowedMethods = %v", got.AllowedMethods)
		}
		if len(got.AllowedHeaders) != 2 || len(got.ExposedHeaders) != 1 {
			t.Errorf("AllowedHeaders = %v, ExposedHeaders = %v", got.AllowedHeaders, got.ExposedHeaders)
		}
	})

	t.Run("credentials false", func(t *testing.T) {
		got := AnalyzeCORS(response(map[string]string{
			"Access-Control-Allow-Origin":      "*",
			"Access-Control-Allow-Credentials": "false",
		}))
		if len(got.Issues) != 0 {
			t.Errorf("Issues = %v, want none", got.Issues)
		}
		if got.AllowCredentials == nil || *got.AllowCredentials {
			t.Error("AllowCredentials should be recorded as false")
		}
	})

	t.Run("no cors headers", func(t *testing.T) {
		got := AnalyzeCORS(response(map[string]string{"Content-Type": "text/plain"}))
		if got.Enabled || got.AllowCredentials != nil || got.Issues == nil {
			t.Errorf("AnalyzeCORS() = %+v", got)
		}
	})
}

func TestAnalyzeSecurity(t *testing.T) {
	allHeaders := map[string]string{
		"Strict-Transport-Security": "max-age=31536000",
		"Content-Security-Policy":   "default-src 'self'",
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
	}

	tests := []struct {
		name       string
		url        string
		headers    map[string]string
		wantScore  int
		wantIssues int
		wantHTTPS  bool
	}{
		{"all headers", "https://api.example.com/", allHeaders, 100, 0, true},
		{"no headers", "http://api.example.com/", nil, 45, 4, false},
		{"missing csp", "https://api.example.com/", map[string]string{
			"Strict-Transport-Security": "max-age=1",
			"X-Frame-Options":           "SAMEORIGIN",
			"X-Content-Type-Options":    "nosniff",
		}, 80, 1, true},
		{"bad nosniff value", "wss://api.example.com/", map[string]string{
			"Strict-Transport-Security": "max-age=1",
			"Content-Security-Policy":   "default-src 'self'",
			"X-Frame-Options":           "DENY",
			"X-Content-Type-Options":    "sniff",
		}, 90, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeSecurity(request("GET", tt.url, nil), response(tt.headers))
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if len(got.Issues) != tt.wantIssues {
				t.Errorf("Issues = %v, want %d", got.Issues, tt.wantIssues)
			}
			if got.HTTPS != tt.wantHTTPS {
				t.Errorf("HTTPS = %v, want %v", got.HTTPS, tt.wantHTTPS)
			}
		})
	}
}

func TestAnalyzeSecurityRecordsXSSProtection(t *testing.T) {
	got := AnalyzeSecurity(nil, response(map[string]string{"X-XSS-Protection": "1; mode=block"}))
	if got.XXSSProtection != "1; mode=block" {
		t.Errorf("XXSSProtection = %q", got.XXSSProtection)
	}
	if got.Score != 45 {
		t.Errorf("Score = %d, want 45", got.Score)
	}
	if got.HTTPS {
		t.Error("HTTPS should be false without a request")
	}
}
