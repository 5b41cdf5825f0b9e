package position

import (
	"fmt"
	"log/slog"
	"time"

	"locator/internal/beacon"
	"locator/internal/geometry"
	"locator/internal/storage"
)

// TierObserver is notified of the tier reached by every resolution.
type TierObserver interface {
	ObserveTier(tier string)
}

type PositionService struct {
	storage      *storage.Storage
	resolver     *Resolver
	beaconCoords [3]geometry.Point
	maxAge       time.Duration
	observer     TierObserver
}

// NewPositionService builds a service over the reading store. beaconCoords are
// the fixed reference positions indexed by beacon.Label. Readings older than
// maxAge count as missing. observer may be nil.
func NewPositionService(s *storage.Storage, beaconCoords [3]geometry.Point, maxAge time.Duration, observer TierObserver, log *slog.Logger) *PositionService {
	return &PositionService{
		storage:      s,
		resolver:     NewResolver(log),
		beaconCoords: beaconCoords,
		maxAge:       maxAge,
		observer:     observer,
	}
}

// BeaconSet assembles the current snapshot of readings into a BeaconSet.
func (ps *PositionService) BeaconSet() BeaconSet {
	data := ps.storage.Snapshot(ps.maxAge)

	var set BeaconSet
	for _, l := range beacon.Labels {
		set[l].Position = ps.beaconCoords[l]
		if d, ok := data[l]; ok {
			set[l].Distance = d.Distance
			set[l].Observed = true
		}
	}
	return set
}

// GetCurrentPosition resolves the beacon positions from the latest readings.
func (ps *PositionService) GetCurrentPosition() (Resolution, error) {
	res, err := ps.resolver.Resolve(ps.BeaconSet())
	if ps.observer != nil {
		ps.observer.ObserveTier(res.Estimate.Tier.String())
	}
	if err != nil {
		return res, fmt.Errorf("resolve beacon positions: %w", err)
	}
	return res, nil
}
