// Package engine ties the analyzers together behind one service value
// used by the CLI and the HTTP API.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/sadopc/capscope/internal/capture"
	"github.com/sadopc/capscope/internal/diff"
	"github.com/sadopc/capscope/internal/insight"
	"github.com/sadopc/capscope/internal/inspect"
	"github.com/sadopc/capscope/internal/testgen"
)

// Counter observes completed analyses.
type Counter interface {
	Analysis(kind string)
}

// Engine runs analyses. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	inspector *inspect.Explainer
	differ    *diff.Explainer
	persister *insight.Persister
	counter   Counter
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.inspector = inspect.NewExplainer(now) }
}

// WithPersister enables Save.
func WithPersister(p *insight.Persister) Option {
	return func(e *Engine) { e.persister = p }
}

// WithCounter sets the analysis counter.
func WithCounter(c Counter) Option {
	return func(e *Engine) { e.counter = c }
}

// New returns an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		inspector: inspect.NewExplainer(nil),
		differ:    diff.NewExplainer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExplainCapture analyzes one exchange.
func (e *Engine) ExplainCapture(req *capture.Request, resp *capture.Response) inspect.CaptureExplanation {
	e.count(insight.KindCapture)
	return e.inspector.Explain(req, resp)
}

// ExplainDiff compares two responses.
func (e *Engine) ExplainDiff(left, right *capture.Response, opts diff.Options) diff.DiffExplanation {
	e.count(insight.KindDiff)
	return e.differ.Explain(left, right, opts)
}

// GenerateTests synthesizes tests for one exchange.
func (e *Engine) GenerateTests(req *capture.Request, resp *capture.Response, opts testgen.Options) ([]testgen.GeneratedTest, error) {
	tests, err := testgen.Generate(req, resp, opts)
	if err != nil {
		return nil, err
	}
	e.count(insight.KindTest)
	return tests, nil
}

// ErrNoPersister is returned by Save when persistence is not configured.
var ErrNoPersister = errors.New("insight persistence is not configured")

// Save persists a finished result. A failure leaves result untouched and
// usable.
func (e *Engine) Save(ctx context.Context, kind insight.Kind, result any, meta map[string]string) (string, error) {
	if e.persister == nil {
		return "", ErrNoPersister
	}
	return e.persister.SaveInsight(ctx, kind, result, meta)
}

func (e *Engine) count(kind insight.Kind) {
	if e.counter != nil {
		e.counter.Analysis(string(kind))
	}
}
