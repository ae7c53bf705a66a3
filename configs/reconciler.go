package configs

import "time"

type Reconciler struct {
	Schedule   string        `env:"RECONCILER_CRON" envDefault:"*/5 * * * *"`
	StaleAfter time.Duration `env:"RECONCILER_STALE_AFTER" envDefault:"10m"`
}
