package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that trigger a graceful shutdown.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SetupSignalHandler returns a context derived from parent that is canceled
// on SIGINT or SIGTERM. The returned stop function releases the signal
// registration.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, ShutdownSignals...)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
