package events

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
)

// LogNotifier writes events to a structured logger. Only topics listed in
// Topics are logged; an empty list means DefaultTopics.
type LogNotifier struct {
	Logger zerolog.Logger
	Topics []string
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	topics := n.Topics
	if len(topics) == 0 {
		topics = DefaultTopics()
	}
	if !slices.Contains(topics, event.Topic) {
		return nil
	}
	n.Logger.Info().
		Str("event_id", event.ID.String()).
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}
