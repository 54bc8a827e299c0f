package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalHandler waits for shutdown and reload signals.
type SignalHandler struct {
	signals chan os.Signal
	done    chan struct{}
}

// NewSignalHandler creates a new signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Setup registers for SIGINT, SIGTERM and SIGHUP.
func (h *SignalHandler) Setup() {
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
}

// Wait blocks until a shutdown signal arrives or ctx is done. SIGHUP does
// not stop the wait; it calls reload instead.
func (h *SignalHandler) Wait(ctx context.Context, reload func()) os.Signal {
	for {
		select {
		case sig := <-h.signals:
			if sig == syscall.SIGHUP && reload != nil {
				reload()
				continue
			}
			return sig
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		}
	}
}

// Stop stops waiting for signals.
func (h *SignalHandler) Stop() {
	signal.Stop(h.signals)
	close(h.done)
}

// Cleanup unregisters the handler.
func (h *SignalHandler) Cleanup() {
	signal.Stop(h.signals)
}
