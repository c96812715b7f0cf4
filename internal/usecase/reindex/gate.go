// Package reindex keeps the search index in step with committed primary-store mutations.
// Events emitted inside a transaction reach the Gate only after commit; the gate re-reads
// each entity, projects it and writes it through the index client. Failures are logged
// and counted, never returned to the mutating caller.
package reindex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/change"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/logger"
	"github.com/kailas-cloud/marketindex/internal/metrics"
)

// Outcome is the terminal state of one reindex.
type Outcome string

// Outcomes, also used as metric labels.
const (
	OutcomeOK         Outcome = metrics.OutcomeOK
	OutcomeStale      Outcome = metrics.OutcomeStale
	OutcomeIncomplete Outcome = metrics.OutcomeIncomplete
	OutcomeFailed     Outcome = metrics.OutcomeFailed
	OutcomeDisabled   Outcome = metrics.OutcomeDisabled
	OutcomeUnknown    Outcome = "unknown_type"
)

// Gate processes post-commit reindex events.
type Gate struct {
	writer   Writer
	captures map[indexable.Type]Capture
}

// NewGate creates an unbound gate. Captures are added with Register, the writer with Bind:
// the index client provisions from the registry the captures fill, so it comes second.
func NewGate() *Gate {
	return &Gate{captures: make(map[indexable.Type]Capture)}
}

// Bind sets the index writer. Until bound every reindex reports OutcomeDisabled.
func (g *Gate) Bind(w Writer) {
	g.writer = w
}

// Register adds c to the gate and records its type in reg. Startup only.
func (g *Gate) Register(reg Registrar, c Capture) error {
	t := c.Type()
	if _, dup := g.captures[t]; dup {
		return fmt.Errorf("capture for %s already registered", t)
	}
	if err := reg.Register(t); err != nil {
		return fmt.Errorf("register %s: %w", t, err)
	}
	g.captures[t] = c
	return nil
}

// AfterCommit reindexes every event. It is installed as the primary store's
// post-commit hook and runs on the committing goroutine.
func (g *Gate) AfterCommit(ctx context.Context, events []change.Event) {
	for _, e := range change.Coalesce(events) {
		g.Reindex(ctx, e)
	}
}

// Reindex refetches, projects and writes one entity and reports the outcome.
func (g *Gate) Reindex(ctx context.Context, e change.Event) Outcome {
	out, err := g.reindex(ctx, e)
	metrics.ReindexTotal.WithLabelValues(string(e.Type), string(out)).Inc()

	log := logger.FromContext(ctx).With(
		zap.String("type", string(e.Type)),
		zap.String("id", e.ID),
		zap.String("kind", string(e.Kind)),
	)
	switch out {
	case OutcomeOK:
		log.Debug("reindexed")
	case OutcomeDisabled:
		log.Debug("reindex skipped, search engine disabled")
	case OutcomeStale:
		log.Warn("reindex target no longer exists", zap.Error(err))
	case OutcomeIncomplete:
		log.Warn("reindexed with missing relations", zap.Error(err))
	case OutcomeFailed, OutcomeUnknown:
		log.Error("reindex failed", zap.Error(err))
	}
	return out
}

func (g *Gate) reindex(ctx context.Context, e change.Event) (Outcome, error) {
	c, ok := g.captures[e.Type]
	if !ok {
		return OutcomeUnknown, &domain.UnknownTypeError{Type: string(e.Type)}
	}
	if g.writer == nil || !g.writer.IsEnabled() {
		return OutcomeDisabled, nil
	}

	doc, err := c.Load(ctx, e.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeStale, fmt.Errorf("%w: %w", domain.ErrStaleReference, err)
	case err != nil:
		return OutcomeFailed, err
	}

	if err := g.writer.Index(ctx, doc); err != nil {
		return OutcomeFailed, err
	}

	if missing := doc.Missing(); len(missing) > 0 {
		return OutcomeIncomplete, &domain.ProjectionIncompleteError{
			Type: string(e.Type), ID: e.ID, Missing: missing,
		}
	}
	return OutcomeOK, nil
}
