package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Recorder observes persistence outcomes.
type Recorder interface {
	InsightSaved(kind string)
	InsightFailed(kind string)
}

// Persister hands finished analyses to a Store on behalf of the user
// found in the request context.
type Persister struct {
	store    Store
	log      zerolog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Persister.
type Option func(*Persister)

// WithLogger sets the logger. The default discards output.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Persister) { p.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Persister) { p.recorder = r }
}

// WithClock sets the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) { p.now = now }
}

// NewPersister returns a persister writing to store.
func NewPersister(store Store, opts ...Option) *Persister {
	p := &Persister{store: store, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SaveInsight serializes payload and stores it under the caller's
// identity. It fails with ErrUnauthenticated when ctx carries no user.
func (p *Persister) SaveInsight(ctx context.Context, kind Kind, payload any, meta map[string]string) (string, error) {
	user, ok := UserFrom(ctx)
	if !ok {
		p.failed(kind)
		return "", ErrUnauthenticated
	}
	if _, err := ParseKind(string(kind)); err != nil {
		p.failed(kind)
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.failed(kind)
		return "", fmt.Errorf("encoding insight payload: %w", err)
	}

	id, err := p.store.Save(ctx, Record{
		UserID:    user,
		Kind:      kind,
		Payload:   data,
		Metadata:  meta,
		CreatedAt: p.now().UTC(),
	})
	if err != nil {
		p.failed(kind)
		p.log.Error().Err(err).Str("kind", string(kind)).Str("user", user).Msg("saving insight failed")
		return "", fmt.Errorf("saving insight: %w", err)
	}

	if p.recorder != nil {
		p.recorder.InsightSaved(string(kind))
	}
	p.log.Info().Str("id", id).Str("kind", string(kind)).Str("user", user).Int("bytes", len(data)).Msg("insight saved")
	return id, nil
}

func (p *Persister) failed(kind Kind) {
	if p.recorder != nil {
		p.recorder.InsightFailed(string(kind))
	}
}
