package capture

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// HAR represents the HAR 1.2 format.
type HAR struct {
	Log HARLog `json:"log"`
}

// HARLog is the top-level log object.
type HARLog struct {
	Version string     `json:"version"`
	Entries []HAREntry `json:"entries"`
}

// HAREntry represents a single request/response pair.
type HAREntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         HARRequest  `json:"request"`
	Response        HARResponse `json:"response"`
	Timings         *HARTimings `json:"timings,omitempty"`
}

// HARRequest is the request portion of an entry.
type HARRequest struct {
	Method   string       `json:"method"`
	URL      string       `json:"url"`
	Headers  []HARHeader  `json:"headers"`
	PostData *HARPostData `json:"postData,omitempty"`
}

// HARResponse is the response portion of an entry.
type HARResponse struct {
	Status     int         `json:"status"`
	StatusText string      `json:"statusText"`
	Headers    []HARHeader `json:"headers"`
	Content    HARContent  `json:"content"`
}

// HARHeader is a name/value pair for headers.
type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData is the body of a request.
type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HARContent is the body of a response.
type HARContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding,omitempty"`
}

// HARTimings holds timing info for an entry. -1 marks a phase that does not apply.
type HARTimings struct {
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	SSL     float64 `json:"ssl"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

// ParseHAR converts every HAR entry into an Exchange.
func ParseHAR(data []byte) ([]Exchange, error) {
	var har HAR
	if err := json.Unmarshal(data, &har); err != nil {
		return nil, fmt.Errorf("parsing HAR: %w", err)
	}

	if len(har.Log.Entries) == 0 {
		return nil, fmt.Errorf("HAR file contains no entries")
	}

	out := make([]Exchange, 0, len(har.Log.Entries))
	for i, entry := range har.Log.Entries {
		out = append(out, convertEntry(i, entry))
	}
	return out, nil
}

func convertEntry(index int, entry HAREntry) Exchange {
	req := &Request{
		Method:  strings.ToUpper(entry.Request.Method),
		URL:     entry.Request.URL,
		Headers: harHeaders(entry.Request.Headers),
	}
	if ts, err := time.Parse(time.RFC3339Nano, entry.StartedDateTime); err == nil {
		req.Timestamp = ts
	}
	if entry.Request.PostData != nil {
		req.Body = entry.Request.PostData.Text
	}

	body := entry.Response.Content.Text
	if entry.Response.Content.Encoding == "base64" && body != "" {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			body = string(decoded)
		}
	}

	resp := &Response{
		StatusCode: entry.Response.Status,
		StatusText: entry.Response.StatusText,
		Headers:    harHeaders(entry.Response.Headers),
		Body:       body,
		Timing:     harTiming(entry),
	}

	return Exchange{
		Label:    fmt.Sprintf("#%d %s %s", index, req.Method, req.Path()),
		Request:  req,
		Response: resp,
	}
}

func harHeaders(headers []HARHeader) http.Header {
	h := make(http.Header, len(headers))
	for _, hdr := range headers {
		if strings.HasPrefix(hdr.Name, ":") {
			continue // HTTP/2 pseudo-headers
		}
		h.Add(hdr.Name, hdr.Value)
	}
	return h
}

// harTiming maps HAR phases onto Timing. HAR counts ssl inside connect,
// so the TLS time is subtracted to keep phases disjoint.
func harTiming(entry HAREntry) *Timing {
	if entry.Timings == nil && entry.Time <= 0 {
		return nil
	}
	t := &Timing{Total: ms(entry.Time)}
	if tm := entry.Timings; tm != nil {
		t.DNS = ms(tm.DNS)
		t.TLS = ms(tm.SSL)
		t.Connect = ms(tm.Connect)
		if t.Connect >= t.TLS {
			t.Connect -= t.TLS
		}
		t.TTFB = ms(tm.Send) + ms(tm.Wait)
		t.Download = ms(tm.Receive)
		if sum := t.DNS + t.Connect + t.TLS + t.TTFB + t.Download; sum > t.Total {
			t.Total = sum
		}
	}
	return t
}

func ms(v float64) int64 {
	if v <= 0 {
		return 0
	}
	return int64(math.Round(v))
}
