package sqlstore

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "libapi/sqlstore"

// change is one staged mutation. run executes it inside the commit
// transaction and returns a callback applied only after a successful commit.
type change struct {
	operation string
	entity    string
	run       func(ctx context.Context, q Querier) (query string, after func(), err error)
}

// Session stages changes from the repositories that share it and commits
// them in one transaction. A Session belongs to a single unit of work.
type Session struct {
	db       *sql.DB
	dialect  Dialect
	observer Observer
	tracer   trace.Tracer

	mu      sync.Mutex
	pending []change
}

// Option configures a Session.
type Option func(*Session)

// WithObserver reports every statement to o.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewSession creates a session over db.
func NewSession(db *sql.DB, dialect Dialect, opts ...Option) *Session {
	s := &Session{
		db:       db,
		dialect:  dialect,
		observer: nopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) stage(c change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, c)
}

// Pending returns the number of staged changes.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Discard drops every staged change.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// SaveChanges runs the staged changes in order inside one transaction.
// On failure the transaction is rolled back, the staged batch is kept and
// the store error is returned unchanged. A context that ends before or
// during the commit yields the context error.
func (s *Session) SaveChanges(ctx context.Context) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "sqlstore.SaveChanges",
		trace.WithAttributes(attribute.Int("sqlstore.changes", len(s.pending))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contextError(ctx, err)
	}

	afters := make([]func(), 0, len(s.pending))
	for _, c := range s.pending {
		start := time.Now()
		query, after, runErr := c.run(ctx, tx)
		observe(ctx, s.observer, c.operation, c.entity, query, start, runErr)
		if runErr != nil {
			_ = tx.Rollback()
			return contextError(ctx, runErr)
		}
		if after != nil {
			afters = append(afters, after)
		}
	}

	if err := tx.Commit(); err != nil {
		return contextError(ctx, err)
	}

	for _, after := range afters {
		after()
	}
	s.pending = nil
	return nil
}

// contextError prefers the context error so that cancellation is
// distinguishable from store failures.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
