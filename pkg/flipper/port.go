package flipper

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// BaudRate is the serial speed of the Flipper CLI.
const BaudRate = 115200

// portSettle is how long the CLI needs after the port opens before it
// accepts commands.
const portSettle = 3 * time.Second

// OpenPort opens the Flipper's CLI serial device.
func OpenPort(device string) (serial.Port, error) {
	mode := &serial.Mode{BaudRate: BaudRate}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open flipper port %s: %w", device, err)
	}
	time.Sleep(portSettle)
	return port, nil
}
