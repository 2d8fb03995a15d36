package notify

import (
	"context"
	"errors"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
)

// Fanout publishes every event to each sink in order.
type Fanout []drepo.Notifier

// NewFanout drops nil sinks.
func NewFanout(sinks ...drepo.Notifier) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers ev to every sink; one failing sink does not stop the rest.
func (f Fanout) Publish(ctx context.Context, ev models.Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
