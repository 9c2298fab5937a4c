package inspect

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sadopc/capscope/internal/capture"
)

// JWTAnalysis is the decoded, time-checked view of a JSON Web Token.
// The signature is never verified.
type JWTAnalysis struct {
	IsValid   bool           `json:"is_valid" yaml:"is_valid"`
	Header    map[string]any `json:"header" yaml:"header"`
	Payload   map[string]any `json:"payload" yaml:"payload"`
	Algorithm string         `json:"algorithm" yaml:"algorithm"`
	Issuer    string         `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Subject   string         `json:"subject,omitempty" yaml:"subject,omitempty"`
	Audience  []string       `json:"audience,omitempty" yaml:"audience,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	IssuedAt  *time.Time     `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
	IsExpired bool           `json:"is_expired" yaml:"is_expired"`
	Claims    []string       `json:"claims" yaml:"claims"`
}

// The parser holds only decoding options and is safe for concurrent use.
// Padded segments are accepted.
var jwtParser = jwt.NewParser(jwt.WithPaddingAllowed())

// stdToURL maps the standard base64 alphabet onto the URL-safe one.
var stdToURL = strings.NewReplacer("+", "-", "/", "_")

// decodeJWT splits and decodes header and payload. A token whose alg is
// missing or unregistered still counts as decoded, as does one encoded
// with the standard base64 alphabet.
func decodeJWT(token string) (*jwt.Token, jwt.MapClaims, bool) {
	tok, claims, ok := parseUnverified(token)
	if !ok && strings.ContainsAny(token, "+/") {
		return parseUnverified(stdToURL.Replace(token))
	}
	return tok, claims, ok
}

func parseUnverified(token string) (*jwt.Token, jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	tok, _, err := jwtParser.ParseUnverified(token, claims)
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, nil, false
	}
	if tok == nil {
		return nil, nil, false
	}
	return tok, claims, true
}

// LooksLikeJWT reports whether token has three segments whose first two
// decode to JSON objects.
func LooksLikeJWT(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	_, _, ok := decodeJWT(token)
	return ok
}

// ExtractJWT returns the first JWT carried by the request: the bearer token
// first, then each cookie value in order.
func ExtractJWT(req *capture.Request) (string, bool) {
	if req == nil {
		return "", false
	}

	auth := strings.TrimSpace(capture.HeaderValue(req.Headers, "Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		token := strings.TrimSpace(auth[len("bearer "):])
		if LooksLikeJWT(token) {
			return token, true
		}
	}

	cookieHeader := capture.HeaderValues(req.Headers, "Cookie")
	if len(cookieHeader) == 0 {
		return "", false
	}
	parsed := (&http.Request{Header: http.Header{"Cookie": cookieHeader}}).Cookies()
	for _, c := range parsed {
		if LooksLikeJWT(c.Value) {
			return c.Value, true
		}
	}
	return "", false
}

// AnalyzeJWT decodes token and evaluates its expiry against now. A token
// that cannot be decoded yields IsValid=false rather than an error.
func AnalyzeJWT(token string, now time.Time) JWTAnalysis {
	tok, claims, ok := decodeJWT(token)
	if !ok {
		return JWTAnalysis{
			Header:    map[string]any{},
			Payload:   map[string]any{},
			Algorithm: "unknown",
			Claims:    []string{},
		}
	}

	a := JWTAnalysis{
		IsValid:   true,
		Header:    tok.Header,
		Payload:   map[string]any(claims),
		Algorithm: "unknown",
		Claims:    make([]string, 0, len(claims)),
	}
	if a.Header == nil {
		a.Header = map[string]any{}
	}
	if alg, ok := tok.Header["alg"].(string); ok && alg != "" {
		a.Algorithm = alg
	}
	for name := range claims {
		a.Claims = append(a.Claims, name)
	}
	sort.Strings(a.Claims)

	if iss, err := claims.GetIssuer(); err == nil {
		a.Issuer = iss
	}
	if sub, err := claims.GetSubject(); err == nil {
		a.Subject = sub
	}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		a.Audience = []string(aud)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		a.ExpiresAt = &t
		a.IsExpired = t.Before(now)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time.UTC()
		a.IssuedAt = &t
	}
	return a
}
