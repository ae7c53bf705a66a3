package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"record_consensus_system/configs"
	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db/models"
)

type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.SugaredLogger
}

func NewTelegramNotifier(config configs.Notifier, logger *zap.SugaredLogger) (consensus.Publisher, error) {
	bot, err := tgbotapi.NewBotAPI(config.TelegramToken)
	if err != nil {
		return nil, err
	}

	return &telegramNotifier{
		bot:    bot,
		chatID: config.TelegramChatID,
		logger: logger,
	}, nil
}

func (n *telegramNotifier) Publish(ctx context.Context, event consensus.Event) error {
	text := messageText(event)
	if text == "" {
		return nil
	}

	message := tgbotapi.NewMessage(n.chatID, text)
	message.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(message); err != nil {
		return err
	}

	return nil
}

func messageText(event consensus.Event) string {
	switch event.Type {
	case consensus.EventTypeProposalCreated:
		return fmt.Sprintf(
			"A change to *%s* of record %d was proposed (proposal %d). Cast your vote to approve or reject it.",
			event.Field.DisplayName(),
			event.RecordID,
			event.ProposalID,
		)
	case consensus.EventTypeProposalResolved:
		if event.Status == models.ProposalStatusApproved {
			return fmt.Sprintf(
				"Proposal %d was approved. *%s* of record %d is now \"%s\".",
				event.ProposalID,
				event.Field.DisplayName(),
				event.RecordID,
				event.NewValue,
			)
		}
		return fmt.Sprintf(
			"Proposal %d to change *%s* of record %d was rejected.",
			event.ProposalID,
			event.Field.DisplayName(),
			event.RecordID,
		)
	}

	return ""
}
