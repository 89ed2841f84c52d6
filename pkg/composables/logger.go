package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/pkg/constants"
)

func WithLogger(ctx context.Context, logger *logrus.Logger) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the context logger, or a default logger when none was
// attached.
func UseLogger(ctx context.Context) *logrus.Logger {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Logger)
	if !ok {
		return logrus.StandardLogger()
	}
	return logger
}
