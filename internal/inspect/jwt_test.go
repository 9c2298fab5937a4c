package inspect

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sadopc/capscope/internal/capture"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return token
}

func TestAnalyzeJWTExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": now.Add(-time.Hour).Unix()})
	got := AnalyzeJWT(expired, now)
	if !got.IsValid {
		t.Fatal("expected token to decode")
	}
	if !got.IsExpired {
		t.Error("token expired an hour ago, IsExpired = false")
	}

	fresh := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": now.Add(time.Hour).Unix()})
	got = AnalyzeJWT(fresh, now)
	if got.IsExpired {
		t.Error("token expires in an hour, IsExpired = true")
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", got.ExpiresAt)
	}
}

func TestAnalyzeJWTClaims(t *testing.T) {
	now := time.Now()
	token := signedToken(t, jwt.MapClaims{
		"iss":   "https://issuer.example.com",
		"sub":   "user-42",
		"aud":   []string{"api", "web"},
		"iat":   now.Add(-time.Minute).Unix(),
		"scope": "read",
	})

	got := AnalyzeJWT(token, now)
	if got.Algorithm != "HS256" {
		t.Errorf("Algorithm = %q, want HS256", got.Algorithm)
	}
	if got.Issuer != "https://issuer.example.com" || got.Subject != "user-42" {
		t.Errorf("Issuer/Subject = %q/%q", got.Issuer, got.Subject)
	}
	if len(got.Audience) != 2 || got.Audience[0] != "api" {
		t.Errorf("Audience = %v", got.Audience)
	}
	if got.IssuedAt == nil {
		t.Error("expected IssuedAt")
	}
	if got.ExpiresAt != nil || got.IsExpired {
		t.Error("token without exp must not be expired")
	}
	want := []string{"aud", "iat", "iss", "scope", "sub"}
	if len(got.Claims) != len(want) {
		t.Fatalf("Claims = %v, want %v", got.Claims, want)
	}
	for i := range want {
		if got.Claims[i] != want[i] {
			t.Errorf("Claims[%d] = %q, want %q", i, got.Claims[i], want[i])
		}
	}
}

func TestAnalyzeJWTAlgNone(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	got := AnalyzeJWT(token, time.Now())
	if !got.IsValid || got.Algorithm != "none" {
		t.Errorf("IsValid=%v Algorithm=%q, want true/none", got.IsValid, got.Algorithm)
	}
}

func TestAnalyzeJWTPermissiveHeader(t *testing.T) {
	// {"typ":"JWT"} without alg, payload {"sub":"x"}.
	token := "eyJ0eXAiOiJKV1QifQ.eyJzdWIiOiJ4In0.sig"
	got := AnalyzeJWT(token, time.Now())
	if !got.IsValid {
		t.Fatal("token without alg should still decode")
	}
	if got.Algorithm != "unknown" {
		t.Errorf("Algorithm = %q, want unknown", got.Algorithm)
	}
	if got.Payload["sub"] != "x" {
		t.Errorf("Payload = %v", got.Payload)
	}
}

func TestAnalyzeJWTMalformed(t *testing.T) {
	for _, token := range []string{"", "abc", "a.b", "a.b.c", "e30.!!!.sig", "a.b.c.d"} {
		got := AnalyzeJWT(token, time.Now())
		if got.IsValid {
			t.Errorf("AnalyzeJWT(%q).IsValid = true", token)
		}
		if got.Algorithm != "unknown" || got.IsExpired {
			t.Errorf("AnalyzeJWT(%q) = %+v", token, got)
		}
		if got.Header == nil || got.Payload == nil || len(got.Claims) != 0 {
			t.Errorf("AnalyzeJWT(%q) should return empty structures", token)
		}
	}
}

// paddedToken carries '=' padding on its payload segment.
const paddedToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxIiwieCI6MX0=.sig"

// stdToken's payload {"n":"??>"} encodes with '+' in the standard alphabet.
const stdToken = "eyJhbGciOiJIUzI1NiJ9.eyJuIjoiPz8+In0.sig"

func TestAnalyzeJWTLenientEncoding(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantClaim string
	}{
		{"padded", paddedToken, "x"},
		{"standard alphabet", stdToken, "n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeJWT(tt.token, time.Now())
			if !got.IsValid {
				t.Fatal("IsValid = false")
			}
			if got.Algorithm == "unknown" {
				t.Errorf("Algorithm = %q", got.Algorithm)
			}
			found := false
			for _, c := range got.Claims {
				found = found || c == tt.wantClaim
			}
			if !found {
				t.Errorf("Claims = %v, want %q among them", got.Claims, tt.wantClaim)
			}
		})
	}
}

func TestExtractJWT(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "a"})
	cookieToken := signedToken(t, jwt.MapClaims{"sub": "b"})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
		wantOK  bool
	}{
		{"bearer", map[string]string{"Authorization": "Bearer " + token}, token, true},
		{"bearer opaque falls back to cookie", map[string]string{
			"Authorization": "Bearer opaque-token",
			"Cookie":        "theme=dark; access=" + cookieToken,
		}, cookieToken, true},
		{"bearer preferred over cookie", map[string]string{
			"Authorization": "Bearer " + token,
			"Cookie":        "access=" + cookieToken,
		}, token, true},
		{"padded segments", map[string]string{"Authorization": "Bearer " + paddedToken}, paddedToken, true},
		{"standard alphabet", map[string]string{"Authorization": "Bearer " + stdToken}, stdToken, true},
		{"no candidates", map[string]string{"Cookie": "theme=dark"}, "", false},
		{"nothing", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &capture.Request{Method: "GET", URL: "https://x.test", Headers: capture.NewHeader(tt.headers)}
			got, ok := ExtractJWT(req)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractJWT() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
