package recorder

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"locator/internal/beacon"
	"locator/internal/position"
)

// PositionSource produces one resolution per call.
type PositionSource interface {
	GetCurrentPosition() (position.Resolution, error)
}

// Sink delivers a resolution downstream (MQTT, UART, ...).
type Sink interface {
	Publish(res position.Resolution) error
}

// FailureObserver is told which sink failed to deliver.
type FailureObserver interface {
	ObservePublishFailure(sink string)
}

type namedSink struct {
	name string
	sink Sink
}

// Recorder polls the position source on a ticker, appends every cycle to a CSV
// file and forwards usable resolutions to its sinks.
type Recorder struct {
	service  PositionSource
	file     *os.File
	writer   *csv.Writer
	sinks    []namedSink
	observer FailureObserver
	now      func() time.Time
	log      *slog.Logger
}

var header = []string{"time", "tier", "a_x", "a_y", "b_x", "b_y", "c_x", "c_y"}

func NewRecorder(service PositionSource, filename string, log *slog.Logger) (*Recorder, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create recorder dir: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create recorder file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("write recorder header: %w", err)
	}
	writer.Flush()

	return &Recorder{
		service: service,
		file:    file,
		writer:  writer,
		now:     time.Now,
		log:     log,
	}, nil
}

// AddSink registers a downstream consumer under name.
func (r *Recorder) AddSink(name string, sink Sink) {
	r.sinks = append(r.sinks, namedSink{name: name, sink: sink})
}

// SetFailureObserver sets who is told about sink failures.
func (r *Recorder) SetFailureObserver(o FailureObserver) {
	r.observer = o
}

// Tick runs one resolution cycle.
func (r *Recorder) Tick() error {
	res, resolveErr := r.service.GetCurrentPosition()
	if resolveErr != nil && !errors.Is(resolveErr, position.ErrNoEstimate) {
		return resolveErr
	}

	if err := r.write(res); err != nil {
		r.log.Error("failed to write record", "err", err)
	}

	if resolveErr != nil {
		r.log.Warn("no position estimate this cycle", "err", resolveErr)
		return nil
	}

	var errs []error
	for _, s := range r.sinks {
		if err := s.sink.Publish(res); err != nil {
			if r.observer != nil {
				r.observer.ObservePublishFailure(s.name)
			}
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Recorder) write(res position.Resolution) error {
	record := make([]string, 0, len(header))
	record = append(record, r.now().UTC().Format(time.RFC3339Nano), res.Estimate.Tier.String())
	for _, l := range beacon.Labels {
		p := res.Positions[l]
		record = append(record,
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
		)
	}
	if err := r.writer.Write(record); err != nil {
		return err
	}
	r.writer.Flush()
	return r.writer.Error()
}

// Start ticks every interval until ctx is done.
func (r *Recorder) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				r.log.Error("resolution cycle failed", "err", err)
			}
		}
	}
}

func (r *Recorder) Close() error {
	r.writer.Flush()
	return r.file.Close()
}
