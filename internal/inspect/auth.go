package inspect

import (
	"net/url"
	"strings"

	"github.com/sadopc/capscope/internal/capture"
)

// AuthType classifies how a request authenticates.
type AuthType string

const (
	AuthBearer  AuthType = "bearer"
	AuthBasic   AuthType = "basic"
	AuthAPIKey  AuthType = "api_key"
	AuthOAuth2  AuthType = "oauth2"
	AuthSession AuthType = "session"
	AuthNone    AuthType = "none"
	AuthUnknown AuthType = "unknown"
)

// AuthLocation is where the credential travels.
type AuthLocation string

const (
	LocationHeader AuthLocation = "header"
	LocationQuery  AuthLocation = "query"
	LocationCookie AuthLocation = "cookie"
	LocationBody   AuthLocation = "body"
)

// AuthFlowAnalysis describes the detected authentication mechanism.
type AuthFlowAnalysis struct {
	Type        AuthType     `json:"type" yaml:"type"`
	Description string       `json:"description" yaml:"description"`
	Location    AuthLocation `json:"location,omitempty" yaml:"location,omitempty"`
	HeaderName  string       `json:"header_name,omitempty" yaml:"header_name,omitempty"`
}

var (
	apiKeyHeaders     = []string{"x-api-key", "api-key", "apikey", "x-auth-token"}
	apiKeyQueryParams = []string{"api_key", "apikey", "key", "token", "access_token"}
	sessionCookies    = []string{"session", "sessionid", "sid", "connect.sid", "PHPSESSID", "JSESSIONID"}
)

// authRule matches one authentication mechanism. Rules are evaluated in
// order and the first match wins.
type authRule struct {
	name  string
	match func(req *capture.Request) (AuthFlowAnalysis, bool)
}

var authRules = []authRule{
	{"bearer", matchAuthorizationScheme("bearer ", AuthBearer,
		"Bearer token sent in the Authorization header")},
	{"basic", matchAuthorizationScheme("basic ", AuthBasic,
		"HTTP Basic authentication with base64-encoded credentials")},
	{"api-key-header", matchAPIKeyHeader},
	{"api-key-query", matchAPIKeyQuery},
	{"session-cookie", matchSessionCookie},
	{"oauth2-token-exchange", matchOAuth2Grant},
	{"other-authorization", matchOtherAuthorization},
}

// DetectAuthFlow classifies the authentication mechanism of req.
// It never fails; requests without credentials are classified as none.
func DetectAuthFlow(req *capture.Request) AuthFlowAnalysis {
	if req != nil {
		for _, rule := range authRules {
			if a, ok := rule.match(req); ok {
				return a
			}
		}
	}
	return AuthFlowAnalysis{
		Type:        AuthNone,
		Description: "No authentication detected",
	}
}

func matchAuthorizationScheme(prefix string, typ AuthType, desc string) func(*capture.Request) (AuthFlowAnalysis, bool) {
	return func(req *capture.Request) (AuthFlowAnalysis, bool) {
		v := capture.HeaderValue(req.Headers, "Authorization")
		if !strings.HasPrefix(strings.ToLower(v), prefix) {
			return AuthFlowAnalysis{}, false
		}
		return AuthFlowAnalysis{
			Type:        typ,
			Description: desc,
			Location:    LocationHeader,
			HeaderName:  "Authorization",
		}, true
	}
}

func matchAPIKeyHeader(req *capture.Request) (AuthFlowAnalysis, bool) {
	for _, name := range apiKeyHeaders {
		if capture.HasHeader(req.Headers, name) {
			return AuthFlowAnalysis{
				Type:        AuthAPIKey,
				Description: "API key sent in the " + name + " header",
				Location:    LocationHeader,
				HeaderName:  name,
			}, true
		}
	}
	return AuthFlowAnalysis{}, false
}

func matchAPIKeyQuery(req *capture.Request) (AuthFlowAnalysis, bool) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return AuthFlowAnalysis{}, false
	}
	q := u.Query()
	for _, name := range apiKeyQueryParams {
		if q.Has(name) {
			return AuthFlowAnalysis{
				Type:        AuthAPIKey,
				Description: "API key sent in the " + name + " query parameter",
				Location:    LocationQuery,
			}, true
		}
	}
	return AuthFlowAnalysis{}, false
}

func matchSessionCookie(req *capture.Request) (AuthFlowAnalysis, bool) {
	cookie := strings.ToLower(strings.Join(capture.HeaderValues(req.Headers, "Cookie"), "; "))
	if cookie == "" {
		return AuthFlowAnalysis{}, false
	}
	for _, name := range sessionCookies {
		if strings.Contains(cookie, strings.ToLower(name)) {
			return AuthFlowAnalysis{
				Type:        AuthSession,
				Description: "Session cookie authentication",
				Location:    LocationCookie,
			}, true
		}
	}
	return AuthFlowAnalysis{}, false
}

// matchOAuth2Grant recognizes an OAuth 2.0 token endpoint call: a form body
// carrying grant_type.
func matchOAuth2Grant(req *capture.Request) (AuthFlowAnalysis, bool) {
	ct := strings.ToLower(capture.HeaderValue(req.Headers, "Content-Type"))
	if req.Body == "" || !strings.Contains(ct, "application/x-www-form-urlencoded") {
		return AuthFlowAnalysis{}, false
	}
	form, err := url.ParseQuery(req.Body)
	if err != nil || form.Get("grant_type") == "" {
		return AuthFlowAnalysis{}, false
	}
	return AuthFlowAnalysis{
		Type:        AuthOAuth2,
		Description: "OAuth 2.0 token request (grant_type=" + form.Get("grant_type") + ")",
		Location:    LocationBody,
	}, true
}

func matchOtherAuthorization(req *capture.Request) (AuthFlowAnalysis, bool) {
	v := strings.TrimSpace(capture.HeaderValue(req.Headers, "Authorization"))
	if v == "" {
		return AuthFlowAnalysis{}, false
	}
	scheme, _, _ := strings.Cut(v, " ")
	return AuthFlowAnalysis{
		Type:        AuthUnknown,
		Description: "Unrecognized Authorization scheme: " + scheme,
		Location:    LocationHeader,
		HeaderName:  "Authorization",
	}, true
}
