package itf

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/levels/pkg/constants"
)

type txMarker struct{}

// TxContext returns a context carrying a transaction marker so service
// calls join it instead of opening a real transaction against a pool.
// The in-memory repositories never look at the transaction.
func TxContext() context.Context {
	return context.WithValue(context.Background(), constants.TxKey, txMarker{})
}

// NopLogger returns a logger that discards everything.
func NopLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
