// Package transition holds the steps every workflow usecase shares: persist
// a transition inside the unit of work, then report it once committed.
package transition

import (
	"context"
	"errors"
	"fmt"

	"registrar-workflow/internal/domain/apperr"
	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/event"
	"registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"
	"registrar-workflow/internal/infrastructure/observability"

	"gorm.io/gorm"
)

// Commit saves r and appends its audit entry using the transaction's repos.
func Commit(ctx context.Context, repos uow.Repos, r *request.Request, entry *audit.Entry) error {
	if err := repos.Requests.Save(ctx, r); err != nil {
		return err
	}
	return repos.Audits.Append(ctx, entry)
}

// Classify turns a missing row into NotFound and wraps unclassified storage
// errors. apperr errors pass through unchanged.
func Classify(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, key)
	}
	if apperr.KindOf(err) != "" {
		return err
	}
	return fmt.Errorf("%s %s: %w", resource, key, err)
}

// Emitter reports committed transitions: metrics, logs, then events.
// Publish errors are logged, never returned; the transition already happened.
type Emitter struct {
	pub event.Publisher
	log *observability.Logger
}

func NewEmitter(pub event.Publisher, log *observability.Logger) *Emitter {
	if pub == nil {
		pub = event.NopPublisher{}
	}
	if log == nil {
		log = observability.GlobalLogger
	}
	return &Emitter{pub: pub, log: log}
}

func (e *Emitter) Emit(ctx context.Context, r *request.Request, entries ...*audit.Entry) {
	log := e.log.WithRequest(r.RequestID)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		observability.RecordTransition(entry.FromStatus, entry.ToStatus)
		trigger := request.TriggerFor(request.Status(entry.FromStatus), request.Status(entry.ToStatus))
		log.LogTransition(ctx, entry.FromStatus, entry.ToStatus, entry.ActorID, trigger)
		if err := e.pub.Publish(ctx, event.FromTransition(r, entry)); err != nil {
			log.LogFailure(ctx, "publish", err, "to", entry.ToStatus)
		}
	}
}

// Fail records a failed operation and hands err back.
func (e *Emitter) Fail(ctx context.Context, op string, err error) error {
	observability.RecordFailure(err)
	e.log.LogFailure(ctx, op, err, "kind", string(apperr.KindOf(err)))
	return err
}

func (e *Emitter) Logger() *observability.Logger { return e.log }
