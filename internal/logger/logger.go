package logger

import (
	"afilia/config"

	"go.uber.org/zap"
)

// New builds the process-wide zap logger from the configured level.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zapcfg := zap.NewProductionConfig()
	zapcfg.Level = lvl
	return zapcfg.Build()
}
