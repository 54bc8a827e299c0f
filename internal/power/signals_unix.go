//go:build !windows

package power

import (
	"os"
	"os/signal"
	"syscall"
)

// watchSignals maps SIGUSR1 to Sleep and SIGUSR2 to Wake so sleep hooks
// (systemd-sleep, sleepwatcher) can drive the engine directly.
func (m *Monitor) watchSignals() func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-ch:
				switch sig {
				case syscall.SIGUSR1:
					m.Sleep()
				case syscall.SIGUSR2:
					m.Wake()
				}
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
