package notifier

import (
	"context"

	"go.uber.org/zap"

	"record_consensus_system/internal/consensus"
)

type multi struct {
	publishers []consensus.Publisher
	logger     *zap.SugaredLogger
}

// NewMulti fans an event out to every configured publisher. Individual
// delivery failures are logged and swallowed, so one broken channel never
// blocks the others or the operation that emitted the event.
func NewMulti(logger *zap.SugaredLogger, publishers ...consensus.Publisher) consensus.Publisher {
	return &multi{
		publishers: publishers,
		logger:     logger,
	}
}

func (m *multi) Publish(ctx context.Context, event consensus.Event) error {
	for _, publisher := range m.publishers {
		if err := publisher.Publish(ctx, event); err != nil {
			m.logger.Errorw("failed to deliver event",
				"eventID", event.ID, "eventType", event.Type, "error", err)
		}
	}

	return nil
}

type noop struct{}

// NewNoop is the publisher used when no notification channel is configured.
func NewNoop() consensus.Publisher {
	return noop{}
}

func (noop) Publish(ctx context.Context, event consensus.Event) error {
	return nil
}
