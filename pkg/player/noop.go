package player

// Noop discards all key presses. Used when no player is attached.
type Noop struct{}

func (Noop) SendKey(string) error { return nil }

var _ Player = Noop{}
