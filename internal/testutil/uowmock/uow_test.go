package uowmock

import (
	"context"
	"errors"
	"testing"

	"registrar-workflow/internal/domain/request"
	"registrar-workflow/internal/domain/uow"
	"registrar-workflow/internal/testutil/auditmock"
	"registrar-workflow/internal/testutil/paymentmock"
	"registrar-workflow/internal/testutil/requestmock"
)

func newRepos() uow.Repos {
	return uow.Repos{
		Requests: &requestmock.Repo{},
		Payments: &paymentmock.Repo{},
		Audits:   &auditmock.Repo{},
	}
}

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Requests != repos.Requests || r.Payments != repos.Payments || r.Audits != repos.Audits {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("boom")

	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinRequestTx(ctx, "x", func(uow.Repos, *request.Request) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinRequestTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_Passthrough_LoadsRequest(t *testing.T) {
	ctx := context.Background()
	locked := &request.Request{ID: 7, RequestID: "REQ-7"}
	reqs := &requestmock.Repo{
		GetByRequestIDForUpdateFn: func(_ context.Context, id string) (*request.Request, error) {
			if id != "REQ-7" {
				t.Fatalf("unexpected id %s", id)
			}
			return locked, nil
		},
	}
	repos := newRepos()
	repos.Requests = reqs

	var got *request.Request
	err := Passthrough(repos).WithinRequestTx(ctx, "REQ-7", func(r uow.Repos, req *request.Request) error {
		got = req
		return nil
	})
	if err != nil {
		t.Fatalf("WithinRequestTx: unexpected err: %v", err)
	}
	if got != locked {
		t.Fatalf("WithinRequestTx: request not forwarded: %+v", got)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinRequestTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinRequestTx(func(context.Context, string, func(uow.Repos, *request.Request) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinRequestTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinRequestTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
