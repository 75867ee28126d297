package services

import (
	"context"
	"errors"

	"achpay/internal/log"
	"achpay/internal/records"
)

var errNoLister = errors.New("payment service: no record lister")

// PaymentService runs filter queries against the record store
type PaymentService struct {
	store records.Lister
}

func NewPaymentService(store records.Lister) *PaymentService {
	return &PaymentService{store: store}
}

// Query loads the current snapshot and applies params to it.
// Load and filter errors are returned unchanged.
func (s *PaymentService) Query(ctx context.Context, params FilterParams) (Result, error) {
	f, err := NewFilter(params)
	if err != nil {
		return Result{}, err
	}
	if s.store == nil {
		return Result{}, errNoLister
	}

	all, err := s.store.All(ctx)
	if err != nil {
		return Result{}, err
	}

	res := f.Apply(all)
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogPaymentsQuery(ctx, params.Recipient, params.After, params.Before, len(res.Payments), res.Total)
	return res, nil
}
