package configs

type Logger struct {
	AppName string `env:"LOGGER_APP_NAME" envDefault:"record-consensus"`
	URL     string `env:"LOGGER_LOKI_URL"`
}
