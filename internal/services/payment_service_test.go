package services

import (
	"context"
	"errors"
	"testing"

	"achpay/internal/core"
)

type stubLister struct {
	payments []core.Payment
	err      error
	calls    int
}

func (s *stubLister) All(context.Context) ([]core.Payment, error) {
	s.calls++
	return s.payments, s.err
}

func TestPaymentService_Query(t *testing.T) {
	lister := &stubLister{payments: fixture()}
	svc := NewPaymentService(lister)

	res, err := svc.Query(context.Background(), FilterParams{Recipient: "John"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Total != 4000 || len(res.Payments) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPaymentService_QueryPropagatesLoadError(t *testing.T) {
	loadErr := &core.LoadError{Source: "file:x", Err: errors.New("boom")}
	svc := NewPaymentService(&stubLister{err: loadErr})

	_, err := svc.Query(context.Background(), FilterParams{})
	var le *core.LoadError
	if !errors.As(err, &le) || le != loadErr {
		t.Fatalf("expected LoadError unchanged, got %v", err)
	}
}

func TestPaymentService_QueryRejectsBadFilterBeforeLoading(t *testing.T) {
	lister := &stubLister{payments: fixture()}
	svc := NewPaymentService(lister)

	_, err := svc.Query(context.Background(), FilterParams{Before: "nope"})
	var ife *core.InvalidFilterError
	if !errors.As(err, &ife) {
		t.Fatalf("expected InvalidFilterError, got %v", err)
	}
	if lister.calls != 0 {
		t.Fatalf("store should not be read on invalid filter, calls=%d", lister.calls)
	}
}

func TestPaymentService_NilStore(t *testing.T) {
	svc := NewPaymentService(nil)
	if _, err := svc.Query(context.Background(), FilterParams{}); err == nil {
		t.Fatal("expected error with nil store")
	}
}
