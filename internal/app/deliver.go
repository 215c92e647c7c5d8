package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sealchat/internal/domain"
)

// DefaultRejectWindow is how long SendConfirmed listens for a relay error
// after a send.
const DefaultRejectWindow = 500 * time.Millisecond

// ErrRejected wraps the message of a relay error report.
var ErrRejected = errors.New("relay rejected message")

// SendConfirmed runs send and then listens on tx for up to window. The
// relay never acknowledges delivery, only failures (recipient offline, not
// a room member, rate limited), so an error event inside the window fails
// the send and silence counts as accepted.
func SendConfirmed(
	ctx context.Context,
	tx domain.Transport,
	window time.Duration,
	send func(context.Context) error,
) error {
	rejected := make(chan string, 1)
	id := tx.On(domain.EventError, func(_ context.Context, ev domain.Event) error {
		if e, ok := ev.(domain.ErrorEvent); ok {
			select {
			case rejected <- e.Message:
			default:
			}
		}
		return nil
	})
	defer tx.Off(domain.EventError, id)

	if err := send(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case msg := <-rejected:
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
