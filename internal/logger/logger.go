// Package logger builds the chat service's process-wide zap logger. Handlers
// log with it instead of returning errors to clients: store failures are
// swallowed at the router boundary, so the log is where they surface.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

type Config struct {
	Development bool
}

// New builds the sugared logger. Repeated calls return the first instance.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		var l *zap.Logger
		if cfg.Development {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return
		}
		instance = l.Named("chat").Sugar()
	})
	return instance, err
}
