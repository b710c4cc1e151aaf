package mysql

import (
	"context"
	"testing"
	"time"

	"registrar-workflow/internal/domain/audit"
	"registrar-workflow/internal/testutil/sqlitedb"

	"github.com/google/uuid"
)

func TestAudit_AppendAndListOrdered(t *testing.T) {
	db := sqlitedb.Open(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	steps := []struct{ from, to string }{
		{"paid", "processing"},
		{"pending_payment", "paid"},
		{"processing", "ready_for_claim"},
	}
	// appended out of order on purpose; listing sorts by occurred_at
	offsets := []time.Duration{2 * time.Minute, time.Minute, 3 * time.Minute}
	for i, s := range steps {
		e := &audit.Entry{
			EntryID:    uuid.NewString(),
			RequestID:  5,
			FromStatus: s.from,
			ToStatus:   s.to,
			ActorID:    "staff-1",
			OccurredAt: t0.Add(offsets[i]),
		}
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := repo.Append(ctx, &audit.Entry{
		EntryID: uuid.NewString(), RequestID: 6, FromStatus: "pending_payment", ToStatus: "cancelled",
		ActorID: "staff-1", OccurredAt: t0,
	}); err != nil {
		t.Fatalf("Append other: %v", err)
	}

	got, err := repo.ListByRequestID(ctx, 5)
	if err != nil {
		t.Fatalf("ListByRequestID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 entries, got %d", len(got))
	}
	wantTo := []string{"paid", "processing", "ready_for_claim"}
	for i, e := range got {
		if e.ToStatus != wantTo[i] {
			t.Fatalf("entry %d: want to=%s, got %s", i, wantTo[i], e.ToStatus)
		}
	}

	empty, err := repo.ListByRequestID(ctx, 99)
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown request: %v %+v", err, empty)
	}
}
