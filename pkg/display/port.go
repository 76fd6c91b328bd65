package display

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the serial speed of the segment panel.
const DefaultBaudRate = 9600

// OpenPort opens the panel's serial device and runs a short self test
// (INIT, then clear) so a miswired panel fails loudly at startup.
func OpenPort(device string) (*SegmentDisplay, error) {
	mode := &serial.Mode{BaudRate: DefaultBaudRate}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open display port %s: %w", device, err)
	}

	// Give the panel time to come up before the first command.
	time.Sleep(100 * time.Millisecond)

	d := NewSegmentDisplay(port)
	d.ShowCode("INIT")
	time.Sleep(500 * time.Millisecond)
	d.Clear()
	return d, nil
}
