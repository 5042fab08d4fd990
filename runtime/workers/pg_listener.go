package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/PY0226H/aicomm/contract"
	"github.com/PY0226H/aicomm/errors"
	"github.com/PY0226H/aicomm/observability"
)

// The CRUD layer's triggers NOTIFY on these channels for every committing
// chat or message mutation.
var feedChannels = []string{"chat_updated", "chat_message_created"}

// PgListener is the change ingester: one long-lived task per process holding
// a dedicated connection to the database's notification feed. Each payload
// is decoded into a domain event and published to every recipient's channel.
//
// Per-notification failures are isolated: a malformed payload is logged and
// dropped, never crashing the loop. Losing the feed connection is fatal by
// design; Run returns the error and the process exits so an external
// supervisor restarts it with a clean slate. A running-but-deaf ingester
// would be worse than the crash.
type PgListener struct {
	log      *slog.Logger
	connStr  string
	registry contract.IRegistry
	decoder  *Decoder
	metrics  *observability.Metrics
}

func NewPgListener(log *slog.Logger, connStr string,
	registry contract.IRegistry, metrics *observability.Metrics) *PgListener {
	return &PgListener{
		log:      log,
		connStr:  connStr,
		registry: registry,
		decoder:  NewDecoder(),
		metrics:  metrics,
	}
}

func (w *PgListener) Run(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.connStr)
	if err != nil {
		return fmt.Errorf("connect notification feed: %w", err)
	}
	defer func() {
		_ = conn.Close(context.Background())
	}()

	for _, channel := range feedChannels {
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	w.log.Info("Listening for change notifications", "channels", feedChannels)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("Ingester stopped (context canceled)")
				return nil
			}
			return fmt.Errorf("%w: %v", errors.ErrFeedClosed, err)
		}
		w.dispatch(notification.Channel, []byte(notification.Payload))
	}
}

// dispatch decodes one payload and fans the event out to its recipients.
// It never fails the caller: bad input costs exactly one notification.
func (w *PgListener) dispatch(channel string, payload []byte) {
	evt, recipients, err := w.decoder.Decode(payload)
	if err != nil {
		w.metrics.EventsDropped.Inc()
		w.log.Warn("Dropping malformed notification", "channel", channel, "error", err)
		return
	}

	w.metrics.EventsIngested.WithLabelValues(string(evt.Kind())).Inc()
	for _, userID := range recipients {
		if w.registry.Publish(userID, evt) {
			w.metrics.EventsPublished.Inc()
		} else {
			w.metrics.EventsUnrouted.Inc()
		}
	}
}
