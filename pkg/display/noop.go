package display

// Noop is a Panel that discards everything. Used when no panel is attached.
type Noop struct{}

func (Noop) ShowDigits(string) {}
func (Noop) ShowCode(string)   {}
func (Noop) ShowChannel(int)   {}
func (Noop) SetBrightness(int) {}
func (Noop) On()               {}
func (Noop) Off()              {}
func (Noop) Clear()            {}
func (Noop) SetLight(string)   {}
func (Noop) Command(string)    {}

// Compile-time interface satisfaction check.
var _ Panel = Noop{}
