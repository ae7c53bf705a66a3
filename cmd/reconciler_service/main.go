package main

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"record_consensus_system/configs"
	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db"
	"record_consensus_system/internal/db/repositories"
	"record_consensus_system/internal/di"
	"record_consensus_system/internal/notifier"
)

// The reconciler picks up proposals whose voter went away between the vote
// write and resolution (request timeout or cancellation) and re-runs the
// resolution step for them.
func main() {
	s := gocron.NewScheduler(time.UTC)

	config, err := configs.LoadReconcilerServiceConfig()
	logger := di.NewLogger(config.Logger)

	if err != nil {
		logger.Fatalw("failed to load config", "error", err)
	}
	logger.Info("config loaded")

	logger.Info("starting db")
	database, err := db.StartDB(config.DB, logger)
	if err != nil {
		logger.Fatalw("failed to start db", "error", err)
	}
	logger.Info("db started")

	store := db.NewStore(database)
	events := buildPublisher(config.Notifier, logger)
	resolver := consensus.NewResolver(store, events, config.Consensus.VoteThreshold, logger)
	proposalRepository := repositories.NewProposalRepository(database)

	s.Cron(config.Reconciler.Schedule).Do(func() {
		sweep(context.Background(), proposalRepository, resolver, config.Reconciler.StaleAfter, logger)
	})

	s.StartBlocking()
}

func sweep(
	ctx context.Context,
	proposalRepository repositories.ProposalRepository,
	resolver consensus.Resolver,
	staleAfter time.Duration,
	logger *zap.SugaredLogger,
) {
	cutoff := time.Now().UTC().Add(-staleAfter)

	proposals, err := proposalRepository.GetManyPendingOlderThan(cutoff)
	if err != nil {
		logger.Errorw("failed to list stale proposals", "error", err)
		return
	}

	if len(proposals) == 0 {
		logger.Info("no stale proposals to reconcile")
		return
	}

	logger.Infow("reconciling stale proposals", "count", len(proposals))

	for _, proposal := range proposals {
		if err := resolveWithRetry(ctx, resolver, proposal.ID); err != nil {
			logger.Errorw("failed to reconcile proposal", "proposalID", proposal.ID, "error", err)
		}
	}
}

// resolveWithRetry retries only store-unavailability; any other failure is
// terminal for this sweep and will be seen again on the next one.
func resolveWithRetry(ctx context.Context, resolver consensus.Resolver, proposalID int64) error {
	operation := func() error {
		_, err := resolver.TryResolve(ctx, proposalID)
		if err == nil {
			return nil
		}

		var unavailable *consensus.StoreUnavailableError
		if errors.As(err, &unavailable) {
			return err
		}

		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(operation, policy)
}

func buildPublisher(config configs.Notifier, logger *zap.SugaredLogger) consensus.Publisher {
	var publishers []consensus.Publisher

	if config.TelegramToken != "" {
		telegram, err := notifier.NewTelegramNotifier(config, logger)
		if err != nil {
			logger.Errorw("failed to create telegram notifier", "error", err)
		} else {
			publishers = append(publishers, telegram)
		}
	}

	if config.WebhookURL != "" {
		publishers = append(publishers, notifier.NewWebhookPublisher(config.WebhookURL))
	}

	if len(publishers) == 0 {
		return notifier.NewNoop()
	}

	return notifier.NewMulti(logger, publishers...)
}
