package capture

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request is an immutable snapshot of a request that was sent.
type Request struct {
	Method    string      `json:"method" yaml:"method"`
	URL       string      `json:"url" yaml:"url"`
	Headers   http.Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      string      `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Response is an immutable snapshot of a received response.
type Response struct {
	StatusCode int         `json:"status_code" yaml:"status_code"`
	StatusText string      `json:"status_text,omitempty" yaml:"status_text,omitempty"`
	Headers    http.Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string      `json:"body,omitempty" yaml:"body,omitempty"`
	Timing     *Timing     `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// Timing is the phase breakdown of a response in milliseconds.
// A zero phase means the phase was not measured.
type Timing struct {
	DNS      int64 `json:"dns,omitempty" yaml:"dns,omitempty"`
	Connect  int64 `json:"connect,omitempty" yaml:"connect,omitempty"`
	TLS      int64 `json:"tls,omitempty" yaml:"tls,omitempty"`
	TTFB     int64 `json:"ttfb,omitempty" yaml:"ttfb,omitempty"`
	Download int64 `json:"download,omitempty" yaml:"download,omitempty"`
	Total    int64 `json:"total" yaml:"total"`
}

// Exchange pairs a request with the response it produced. Either side may be nil.
type Exchange struct {
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Request  *Request  `json:"request,omitempty" yaml:"request,omitempty"`
	Response *Response `json:"response,omitempty" yaml:"response,omitempty"`
}

// NewHeader builds an http.Header from a flat name/value map.
func NewHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Add(k, v)
	}
	return h
}

// HeaderValues returns all values of the named header. Lookup is
// case-insensitive even for maps that were not built with canonical keys.
func HeaderValues(h http.Header, name string) []string {
	if h == nil {
		return nil
	}
	if v, ok := h[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

// HeaderValue returns the first value of the named header, or "".
func HeaderValue(h http.Header, name string) string {
	v := HeaderValues(h, name)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// HasHeader reports whether the named header is present, even if empty.
func HasHeader(h http.Header, name string) bool {
	return HeaderValues(h, name) != nil
}

// Path returns the URL path of the request, "/" when it has none.
func (r *Request) Path() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// ContentType returns the response Content-Type header.
func (r *Response) ContentType() string {
	return HeaderValue(r.Headers, "Content-Type")
}

// Status returns the status line text, falling back to the
// standard reason phrase when StatusText is empty.
func (r *Response) Status() string {
	if r.StatusText != "" {
		return r.StatusText
	}
	return http.StatusText(r.StatusCode)
}
