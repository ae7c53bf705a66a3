package main

import (
	"record_consensus_system/configs"
	"record_consensus_system/internal/api"
	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db"
	"record_consensus_system/internal/db/repositories"
	"record_consensus_system/internal/di"
	"record_consensus_system/internal/notifier"

	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadAPIServiceConfig()
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
	proposalManager := consensus.NewProposalManager(store, events, logger)
	voteLedger := consensus.NewVoteLedger(store, resolver, events, logger)

	server := api.NewServer(
		proposalManager,
		voteLedger,
		resolver,
		repositories.NewRecordRepository(database),
		repositories.NewProposalRepository(database),
		logger,
	)

	logger.Infow("starting server", "address", config.Server.Address)
	if err := server.Start(config.Server.Address); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
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
		logger.Info("no notification channel configured")
		return notifier.NewNoop()
	}

	return notifier.NewMulti(logger, publishers...)
}
