package insight

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteStore talks to a capscope server's insight API. The server derives
// the user from the API token, so Record.UserID and the userID arguments
// are ignored.
type RemoteStore struct {
	client *resty.Client
}

// NewRemoteStore returns a client for the API at baseURL authenticated
// with token.
func NewRemoteStore(baseURL, token string) *RemoteStore {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(retryIdempotent)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &RemoteStore{client: c}
}

// retryIdempotent retries reads on transport errors and 5xx. Saves are
// never retried since the server may already have stored the insight.
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

type apiError struct {
	Error string `json:"error"`
}

// Save posts rec to the server.
func (s *RemoteStore) Save(ctx context.Context, rec Record) (string, error) {
	var out SaveResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(SaveRequest{Kind: rec.Kind, Payload: rec.Payload, Metadata: rec.Metadata}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/v1/insights")
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("remote store: empty id in response")
	}
	return out.ID, nil
}

// Get fetches one insight.
func (s *RemoteStore) Get(ctx context.Context, _ string, id string) (Record, error) {
	var out Record
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&apiError{}).
		Get("/v1/insights/{id}")
	if err := checkResponse(resp, err); err != nil {
		return Record{}, err
	}
	return out, nil
}

// List fetches the newest insights.
func (s *RemoteStore) List(ctx context.Context, _ string, kind Kind, limit int) ([]Record, error) {
	req := s.client.R().SetContext(ctx).SetError(&apiError{})
	if kind != "" {
		req.SetQueryParam("kind", string(kind))
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	var out ListResponse
	resp, err := req.SetResult(&out).Get("/v1/insights")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Insights, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("remote store: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	}
	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
			msg = e.Error
		}
		return fmt.Errorf("remote store: %s: %s", resp.Status(), msg)
	}
	return nil
}

var _ Store = (*RemoteStore)(nil)
