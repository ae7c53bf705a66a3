package configs

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type APIServiceConfig struct {
	App       App
	DB        DB
	Logger    Logger
	Server    Server
	Notifier  Notifier
	Consensus Consensus
}

func LoadAPIServiceConfig() (APIServiceConfig, error) {
	var config APIServiceConfig

	if err := env.Parse(&config); err != nil {
		return APIServiceConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

type ReconcilerServiceConfig struct {
	App        App
	DB         DB
	Logger     Logger
	Notifier   Notifier
	Consensus  Consensus
	Reconciler Reconciler
}

func LoadReconcilerServiceConfig() (ReconcilerServiceConfig, error) {
	var config ReconcilerServiceConfig

	if err := env.Parse(&config); err != nil {
		return ReconcilerServiceConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
