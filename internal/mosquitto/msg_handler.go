package mosquitto

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"locator/internal/beacon"
	s "locator/internal/storage"
)

// BeaconMsg is one scanner report for a single beacon.
type BeaconMsg struct {
	TxPower    int     `json:"tx_power"`
	BeaconName string  `json:"beacon_name"`
	AvgRssi    float64 `json:"avg_rssi"`
}

// Inferrer turns a signal strength sample into a distance estimate.
type Inferrer interface {
	Infer(label beacon.Label, rssi float64) (float64, bool)
}

// ReadingObserver is told about every stored reading.
type ReadingObserver interface {
	ObserveReading(beacon string)
}

type MqqtMsgHandler struct {
	storage  *s.Storage
	names    map[string]beacon.Label
	inferrer Inferrer
	observer ReadingObserver
	log      *slog.Logger
}

// NewHandler builds a handler that stores readings for the beacons listed in
// names. observer may be nil.
func NewHandler(storage *s.Storage, names map[string]beacon.Label, inferrer Inferrer, observer ReadingObserver, log *slog.Logger) *MqqtMsgHandler {
	return &MqqtMsgHandler{
		storage:  storage,
		names:    names,
		inferrer: inferrer,
		observer: observer,
		log:      log,
	}
}

func (h *MqqtMsgHandler) HandleMsg(msg []byte) error {
	var beaconMsg BeaconMsg
	if err := json.Unmarshal(msg, &beaconMsg); err != nil {
		return fmt.Errorf("parse scan message: %w", err)
	}

	label, ok := h.names[beaconMsg.BeaconName]
	if !ok {
		h.log.Debug("ignoring unknown beacon", "beacon", beaconMsg.BeaconName)
		return nil
	}

	distance, ok := h.inferrer.Infer(label, beaconMsg.AvgRssi)
	if !ok {
		h.log.Warn("no distance estimate",
			"beacon", beaconMsg.BeaconName,
			"rssi", beaconMsg.AvgRssi,
		)
		return nil
	}

	h.storage.Set(label, beaconMsg.AvgRssi, distance)
	if h.observer != nil {
		h.observer.ObserveReading(label.String())
	}
	h.log.Info("stored beacon data",
		"beacon", beaconMsg.BeaconName,
		"label", label.String(),
		"rssi", beaconMsg.AvgRssi,
		"distance", distance,
	)

	return nil
}
