package power

func (m *Monitor) watchSignals() func() {
	return func() {}
}
