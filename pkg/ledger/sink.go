package ledger

import (
	"context"
	"errors"

	"github.com/dutchhouse/auction/pkg/model"
)

// Fanout delivers every event to each of its sinks. All sinks are tried
// even when one of them fails; failures are joined into a single error.
type Fanout []EventSink

func (f Fanout) Append(ctx context.Context, events ...model.Event) error {
	var errs []error

	for _, sink := range f {
		if err := sink.Append(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
