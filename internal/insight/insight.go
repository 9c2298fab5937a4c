// Package insight persists analysis results for an authenticated user.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind identifies what an insight holds.
type Kind string

const (
	KindCapture Kind = "capture"
	KindDiff    Kind = "diff"
	KindTest    Kind = "test"
)

// ParseKind validates a kind name. An empty name is rejected.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCapture, KindDiff, KindTest:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("insight not found")
	ErrInvalidKind     = errors.New("invalid insight kind")
)

// Record is one stored insight.
type Record struct {
	ID        string            `json:"id" yaml:"id"`
	UserID    string            `json:"user_id" yaml:"user_id"`
	Kind      Kind              `json:"kind" yaml:"kind"`
	Payload   json.RawMessage   `json:"payload" yaml:"-"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
}

// Store is a keyed record store scoped by user.
type Store interface {
	// Save stores rec and returns its identifier.
	Save(ctx context.Context, rec Record) (string, error)
	// Get returns the record with id owned by userID, or ErrNotFound.
	Get(ctx context.Context, userID, id string) (Record, error)
	// List returns the newest records of userID, optionally filtered by
	// kind. A limit <= 0 uses DefaultListLimit.
	List(ctx context.Context, userID string, kind Kind, limit int) ([]Record, error)
}

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

type userKey struct{}

// WithUser returns a context carrying the caller identity.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the caller identity stored in ctx.
func UserFrom(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey{}).(string)
	return u, ok && u != ""
}

// SaveRequest is the wire body of a save call.
type SaveRequest struct {
	Kind     Kind              `json:"kind"`
	Payload  json.RawMessage   `json:"payload"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SaveResponse is the wire body returned by a save call.
type SaveResponse struct {
	ID string `json:"id"`
}

// ListResponse is the wire body returned by a list call.
type ListResponse struct {
	Insights []Record `json:"insights"`
}
