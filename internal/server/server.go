// Package server exposes the analysis engine and the insight store over
// a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sadopc/capscope/internal/capture"
	"github.com/sadopc/capscope/internal/diff"
	"github.com/sadopc/capscope/internal/engine"
	"github.com/sadopc/capscope/internal/insight"
	"github.com/sadopc/capscope/internal/observability"
	"github.com/sadopc/capscope/internal/testgen"
)

// maxBodyBytes bounds request bodies; captures may carry large payloads.
const maxBodyBytes = 16 << 20

// Options configures the API handler.
type Options struct {
	Engine  *engine.Engine
	Store   insight.Store
	Tokens  map[string]string // API token -> user id
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

type api struct {
	engine  *engine.Engine
	store   insight.Store
	log     zerolog.Logger
	metrics *observability.Metrics
}

// New returns the HTTP handler for the API.
func New(opts Options) http.Handler {
	a := &api{engine: opts.Engine, store: opts.Store, log: opts.Logger, metrics: opts.Metrics}
	if a.engine == nil {
		a.engine = engine.New()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(a.log, a.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(identify(opts.Tokens))

		r.Post("/explain", a.explain)
		r.Post("/diff", a.diff)
		r.Post("/tests", a.tests)

		r.Route("/insights", func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", a.saveInsight)
			r.Get("/", a.listInsights)
			r.Get("/{id}", a.getInsight)
		})
	})
	return r
}

type explainRequest struct {
	Request  *capture.WireRequest  `json:"request"`
	Response *capture.WireResponse `json:"response,omitempty"`
}

type diffRequest struct {
	Left       *capture.WireResponse `json:"left"`
	Right      *capture.WireResponse `json:"right"`
	LeftLabel  string                `json:"left_label,omitempty"`
	RightLabel string                `json:"right_label,omitempty"`
}

type testsRequest struct {
	Request       *capture.WireRequest  `json:"request"`
	Response      *capture.WireResponse `json:"response"`
	Frameworks    []string              `json:"frameworks,omitempty"`
	IncludeSchema bool                  `json:"include_schema,omitempty"`
	IncludeTiming bool                  `json:"include_timing,omitempty"`
}

type testsResponse struct {
	Tests []testgen.GeneratedTest `json:"tests"`
}

func (a *api) explain(w http.ResponseWriter, r *http.Request) {
	var in explainRequest
	if !decode(w, r, &in) {
		return
	}
	if in.Request == nil {
		writeError(w, http.StatusBadRequest, "request is required")
		return
	}
	req := in.Request.Capture()
	exp := a.engine.ExplainCapture(req, in.Response.Capture())
	a.maybeSave(w, r, insight.KindCapture, exp, map[string]string{"url": req.URL})
	writeJSON(w, http.StatusOK, exp)
}

func (a *api) diff(w http.ResponseWriter, r *http.Request) {
	var in diffRequest
	if !decode(w, r, &in) {
		return
	}
	if in.Left == nil || in.Right == nil {
		writeError(w, http.StatusBadRequest, "left and right responses are required")
		return
	}
	exp := a.engine.ExplainDiff(in.Left.Capture(), in.Right.Capture(), diff.Options{
		LeftLabel:  in.LeftLabel,
		RightLabel: in.RightLabel,
	})
	a.maybeSave(w, r, insight.KindDiff, exp, map[string]string{"left": in.LeftLabel, "right": in.RightLabel})
	writeJSON(w, http.StatusOK, exp)
}

func (a *api) tests(w http.ResponseWriter, r *http.Request) {
	var in testsRequest
	if !decode(w, r, &in) {
		return
	}
	opts := testgen.Options{IncludeSchema: in.IncludeSchema, IncludeTiming: in.IncludeTiming}
	for _, name := range in.Frameworks {
		fw, err := testgen.ParseFramework(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Frameworks = append(opts.Frameworks, fw)
	}

	req := in.Request.Capture()
	tests, err := a.engine.GenerateTests(req, in.Response.Capture(), opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.maybeSave(w, r, insight.KindTest, tests, map[string]string{"url": req.URL})
	writeJSON(w, http.StatusOK, testsResponse{Tests: tests})
}

// maybeSave persists result when the caller asked for it with ?save=true.
// Failures are reported in a header; the analysis is still returned.
func (a *api) maybeSave(w http.ResponseWriter, r *http.Request, kind insight.Kind, result any, meta map[string]string) {
	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); !save {
		return
	}
	id, err := a.engine.Save(r.Context(), kind, result, meta)
	if err != nil {
		a.log.Warn().Err(err).Str("kind", string(kind)).Msg("insight not saved")
		w.Header().Set("X-Insight-Error", err.Error())
		return
	}
	w.Header().Set("X-Insight-Id", id)
}

func (a *api) saveInsight(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "insight store is not configured")
		return
	}
	var in insight.SaveRequest
	if !decode(w, r, &in) {
		return
	}
	if _, err := insight.ParseKind(string(in.Kind)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(in.Payload) == 0 || !json.Valid(in.Payload) {
		writeError(w, http.StatusBadRequest, "payload must be a JSON value")
		return
	}

	id, err := a.engine.Save(r.Context(), in.Kind, in.Payload, in.Metadata)
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, insight.SaveResponse{ID: id})
}

func (a *api) listInsights(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "insight store is not configured")
		return
	}
	user, _ := insight.UserFrom(r.Context())

	var kind insight.Kind
	if k := r.URL.Query().Get("kind"); k != "" {
		parsed, err := insight.ParseKind(k)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = parsed
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := a.store.List(r.Context(), user, kind, limit)
	if err != nil {
		a.storeError(w, err)
		return
	}
	if recs == nil {
		recs = []insight.Record{}
	}
	writeJSON(w, http.StatusOK, insight.ListResponse{Insights: recs})
}

func (a *api) getInsight(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "insight store is not configured")
		return
	}
	user, _ := insight.UserFrom(r.Context())
	rec, err := a.store.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *api) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, insight.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, insight.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, insight.ErrInvalidKind):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNoPersister):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		a.log.Error().Err(err).Msg("insight store failure")
		writeError(w, http.StatusInternalServerError, "insight store failure")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
