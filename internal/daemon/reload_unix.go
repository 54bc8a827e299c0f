//go:build !windows

package daemon

import "syscall"

func signalReload(pid int) error {
	return syscall.Kill(pid, syscall.SIGHUP)
}
