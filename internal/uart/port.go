package uart

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"locator/internal/beacon"
	"locator/internal/geometry"
	"locator/internal/position"
)

var ErrWriteFailed = errors.New("failed to write to serial port")

// Port is the minimal interface needed for a serial port, so tests can run
// without hardware.
type Port interface {
	io.ReadWriter
	io.Closer
}

// Open opens a real serial port at path.
func Open(path string, opts PortOptions) (Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	return serial.Open(path, mode)
}

// Writer sends resolved beacon positions down a serial line, one text line
// per known beacon.
type Writer struct {
	port Port
	mu   sync.Mutex
	log  *slog.Logger
}

func NewWriter(port Port, log *slog.Logger) *Writer {
	return &Writer{port: port, log: log}
}

// Publish writes the text form of res. Resolutions with no known beacon are
// skipped.
func (w *Writer) Publish(res position.Resolution) error {
	data := Format(res)
	if data == "" {
		w.log.Debug("nothing to send over uart")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.port.Write([]byte(data))
	if err != nil {
		return err
	}
	if n != len(data) {
		return ErrWriteFailed
	}
	w.log.Debug("sent over uart", "bytes", n)
	return nil
}

// Close closes the underlying port.
func (w *Writer) Close() error {
	return w.port.Close()
}

// ReadPositions scans r line by line and calls fn for each beacon line until
// r is exhausted or ctx is done. Lines that are not beacon lines are skipped.
func ReadPositions(ctx context.Context, r io.Reader, log *slog.Logger, fn func(beacon.Label, geometry.Point) error) error {
	scan := bufio.NewScanner(r)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			scanErrChan <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return err
				default:
					return nil
				}
			}
			label, p, err := ParseLine(line)
			if err != nil {
				log.Debug("skipping serial line", "line", line)
				continue
			}
			if err := fn(label, p); err != nil {
				log.Error("failed to handle beacon line", "beacon", label.String(), "err", err)
			}
		}
	}
}
