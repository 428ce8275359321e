package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// Channel is one outbound notification transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, job *model.MonitorJob, listings []model.Listing) error
}

// Dispatcher fans a notification out to every channel. Channels are
// attempted independently: one channel failing is logged and must not stop
// the others, and no failure ever reaches the caller.
type Dispatcher struct {
	channels []Channel
	log      zerolog.Logger
}

// NewDispatcher constructs a Dispatcher over the given channels.
func NewDispatcher(log zerolog.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		log:      log.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch sends job's new listings over every channel.
func (d *Dispatcher) Dispatch(ctx context.Context, job *model.MonitorJob, listings []model.Listing) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, job, listings); err != nil {
			d.log.Error().Err(err).
				Str("channel", ch.Name()).
				Int64("job_id", job.ID).
				Msg("notification channel failed")
		}
	}
}
