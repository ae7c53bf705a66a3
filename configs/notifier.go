package configs

type Notifier struct {
	TelegramToken  string `env:"TELEGRAM_NOTIFIER_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_NOTIFIER_CHAT_ID"`
	WebhookURL     string `env:"NOTIFIER_WEBHOOK_URL"`
}
