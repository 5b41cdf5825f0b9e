package uart

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the scanner firmware's UART configuration.
const DefaultBaudRate = 115200

// ErrBadOptions wraps every rejected PortOptions field.
var ErrBadOptions = errors.New("bad serial options")

// PortOptions are the line settings for the scanner UART. Zero fields take
// the firmware defaults: 115200 baud, 8N1.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

var parities = map[string]struct {
	code string
	mode serial.Parity
}{
	"":     {"N", serial.NoParity},
	"N":    {"N", serial.NoParity},
	"NONE": {"N", serial.NoParity},
	"E":    {"E", serial.EvenParity},
	"EVEN": {"E", serial.EvenParity},
	"O":    {"O", serial.OddParity},
	"ODD":  {"O", serial.OddParity},
}

var stopBits = map[int]serial.StopBits{
	1: serial.OneStopBit,
	2: serial.TwoStopBits,
}

// Normalize fills defaults and reduces Parity to its one-letter code.
func (o PortOptions) Normalize() (PortOptions, error) {
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.DataBits == 0 {
		o.DataBits = 8
	}
	if o.StopBits == 0 {
		o.StopBits = 1
	}

	if o.DataBits < 5 || o.DataBits > 8 {
		return o, fmt.Errorf("%w: data bits %d", ErrBadOptions, o.DataBits)
	}
	if _, ok := stopBits[o.StopBits]; !ok {
		return o, fmt.Errorf("%w: stop bits %d", ErrBadOptions, o.StopBits)
	}
	p, ok := parities[strings.ToUpper(strings.TrimSpace(o.Parity))]
	if !ok {
		return o, fmt.Errorf("%w: parity %q", ErrBadOptions, o.Parity)
	}
	o.Parity = p.code
	return o, nil
}

// SerialMode normalizes o and converts it for serial.Open.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	return &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: stopBits[opts.StopBits],
		Parity:   parities[opts.Parity].mode,
	}, nil
}
