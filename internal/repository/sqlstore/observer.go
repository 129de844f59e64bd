package sqlstore

import (
	"context"
	"time"
)

// Observer is notified about every statement the store executes.
type Observer interface {
	ObserveQuery(ctx context.Context, operation, entity, query string, duration time.Duration, err error)
}

// Observers fans a notification out to several observers.
type Observers []Observer

func (o Observers) ObserveQuery(ctx context.Context, operation, entity, query string, duration time.Duration, err error) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveQuery(ctx, operation, entity, query, duration, err)
		}
	}
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(context.Context, string, string, string, time.Duration, error) {}

func observe(ctx context.Context, o Observer, operation, entity, query string, start time.Time, err error) {
	o.ObserveQuery(ctx, operation, entity, query, time.Since(start), err)
}
