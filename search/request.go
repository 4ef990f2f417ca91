package search

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/timeout"
)

// RequestContext is the immutable per-request state every component reads:
// the reader, the plan, the shared timeout budget and a request-scoped logger.
type RequestContext struct {
	id     string
	reader index.Reader
	plan   *Plan
	budget *timeout.Budget
	logger *slog.Logger
}

// RequestOption configures a RequestContext.
type RequestOption func(*RequestContext)

// WithBudget sets the timeout budget. The default has no deadline.
func WithBudget(b *timeout.Budget) RequestOption {
	return func(r *RequestContext) {
		if b != nil {
			r.budget = b
		}
	}
}

// WithLogger sets the logger. The request id is added to every record.
func WithLogger(l *slog.Logger) RequestOption {
	return func(r *RequestContext) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRequestID overrides the generated request id.
func WithRequestID(id string) RequestOption {
	return func(r *RequestContext) {
		if id != "" {
			r.id = id
		}
	}
}

// NewRequestContext creates the context of one logical request.
func NewRequestContext(reader index.Reader, plan *Plan, opts ...RequestOption) *RequestContext {
	if plan == nil {
		plan = NewPlan(nil)
	}
	r := &RequestContext{
		id:     uuid.NewString(),
		reader: reader,
		plan:   plan,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.budget == nil {
		r.budget = timeout.None()
	}
	r.logger = r.logger.With("request_id", r.id)
	return r
}

func (r *RequestContext) ID() string              { return r.id }
func (r *RequestContext) Reader() index.Reader    { return r.reader }
func (r *RequestContext) Plan() *Plan             { return r.plan }
func (r *RequestContext) Budget() *timeout.Budget { return r.budget }
func (r *RequestContext) Logger() *slog.Logger    { return r.logger }
