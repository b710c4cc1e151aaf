// Package event defines the domain events emitted after a request
// transition commits.
package event

import (
	"context"
	"time"

	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/domain/request"

	"github.com/google/uuid"
)

type Type string

// TypeFor names the event for a transition into status, e.g. "request.paid".
func TypeFor(status request.Status) Type { return Type("request." + string(status)) }

type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	RequestID     string         `json:"request_id"`
	RequestNumber string         `json:"request_number"`
	RequesterID   string         `json:"requester_id"`
	From          request.Status `json:"from"`
	To            request.Status `json:"to"`
	ActorID       string         `json:"actor_id"`
	Reason        string         `json:"reason,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// FromTransition builds the event for a committed transition of r.
func FromTransition(r *request.Request, e *audit.Entry) Event {
	ev := Event{
		ID:            uuid.NewString(),
		Type:          TypeFor(request.Status(e.ToStatus)),
		RequestID:     r.RequestID,
		RequestNumber: r.RequestNumber,
		RequesterID:   r.RequesterID,
		From:          request.Status(e.FromStatus),
		To:            request.Status(e.ToStatus),
		ActorID:       e.ActorID,
		OccurredAt:    e.OccurredAt,
	}
	if e.Reason != nil {
		ev.Reason = *e.Reason
	}
	return ev
}

// Publisher delivers events to subscribers such as the notification system.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
