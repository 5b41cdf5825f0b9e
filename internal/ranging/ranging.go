// Package ranging turns received signal strength into distance estimates.
package ranging

import (
	"fmt"
	"math"

	"locator/internal/beacon"
)

// Model maps one RSSI sample (dBm) to a distance estimate.
type Model interface {
	Distance(rssi float64) float64
}

// PathLoss is the log-distance path loss model:
// d = 10^((TxPower - RSSI) / (10 * Exponent)).
type PathLoss struct {
	TxPower  float64 // RSSI at 1 unit of distance, dBm
	Exponent float64
}

// DefaultPathLoss is the indoor calibration the scanners ship with.
var DefaultPathLoss = PathLoss{TxPower: -43.40, Exponent: 2.4}

func (m PathLoss) Distance(rssi float64) float64 {
	return math.Pow(10, (m.TxPower-rssi)/(10*m.Exponent))
}

// LogLinear predicts log10 of the distance linearly from RSSI:
// d = 10^(Slope*RSSI + Intercept). This is the shape of the per-beacon
// regression models trained on calibration walks.
type LogLinear struct {
	Slope     float64
	Intercept float64
}

func (m LogLinear) Distance(rssi float64) float64 {
	return math.Pow(10, m.Slope*rssi+m.Intercept)
}

// Table holds one model per beacon.
type Table struct {
	models map[beacon.Label]Model
}

func NewTable() *Table {
	return &Table{models: make(map[beacon.Label]Model)}
}

// Set assigns the model used for a beacon.
func (t *Table) Set(label beacon.Label, m Model) {
	t.models[label] = m
}

// Infer returns the distance estimate for label, or false when there is no
// model for the beacon or the model output is not a usable range.
func (t *Table) Infer(label beacon.Label, rssi float64) (float64, bool) {
	m, ok := t.models[label]
	if !ok || math.IsNaN(rssi) {
		return 0, false
	}
	d := m.Distance(rssi)
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, false
	}
	return d, true
}

// ParseModel builds a model from its configured kind.
func ParseModel(kind string, txPower, exponent, slope, intercept float64) (Model, error) {
	switch kind {
	case "", "path_loss":
		if exponent <= 0 {
			return nil, fmt.Errorf("path loss exponent must be positive, got %v", exponent)
		}
		return PathLoss{TxPower: txPower, Exponent: exponent}, nil
	case "log_linear":
		return LogLinear{Slope: slope, Intercept: intercept}, nil
	default:
		return nil, fmt.Errorf("unknown ranging model %q", kind)
	}
}
