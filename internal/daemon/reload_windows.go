package daemon

import "fmt"

func signalReload(int) error {
	return fmt.Errorf("reload is not supported on windows")
}
