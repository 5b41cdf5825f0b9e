package position

import (
	"log/slog"

	"locator/internal/beacon"
	"locator/internal/geometry"
)

// Beacon is one labelled entry of a BeaconSet: the fixed reference position
// and the current distance estimate. Observed is false when the scan produced
// no estimate for this beacon.
type Beacon struct {
	Position geometry.Point
	Distance float64
	Observed bool
}

// Circle returns the range circle for b. An unobserved beacon yields a zero
// radius circle, which every pair check rejects.
func (b Beacon) Circle() geometry.Circle {
	if !b.Observed {
		return geometry.Circle{Center: b.Position}
	}
	return geometry.Circle{Center: b.Position, Radius: b.Distance}
}

// BeaconSet holds one snapshot of readings indexed by beacon.Label.
type BeaconSet [3]Beacon

// Resolution is the output of one resolver run.
type Resolution struct {
	Estimate Estimate
	// Positions are the beacons relative to the estimated centroid, in A, B, C
	// order. Non-participating beacons are left at the origin.
	Positions [3]geometry.Point
}

// Known reports whether the position of l is a genuine estimate rather than
// the origin sentinel.
func (r Resolution) Known(l beacon.Label) bool {
	return r.Estimate.Participants()[l]
}

// Relative computes the per-beacon positions for an estimate. It is a pure
// function of its inputs.
func Relative(set BeaconSet, est Estimate) [3]geometry.Point {
	var out [3]geometry.Point
	for l, ok := range est.Participants() {
		if ok {
			out[l] = set[l].Position.Sub(est.Point)
		}
	}
	return out
}

// ResolvePositions runs the trilateration on set and returns each beacon's
// position relative to the centroid, in A, B, C order.
func ResolvePositions(set BeaconSet) [3]geometry.Point {
	est, _ := WeightedCentroid(set[beacon.A].Circle(), set[beacon.B].Circle(), set[beacon.C].Circle())
	return Relative(set, est)
}

// Resolver wraps ResolvePositions with diagnostic logging of the degradation
// tier reached.
type Resolver struct {
	log *slog.Logger
}

func NewResolver(log *slog.Logger) *Resolver {
	return &Resolver{log: log}
}

// Resolve computes the centroid estimate and relative positions for set. A
// TierNone resolution comes back with ErrNoEstimate and all positions at the
// origin.
func (r *Resolver) Resolve(set BeaconSet) (Resolution, error) {
	est, err := WeightedCentroid(set[beacon.A].Circle(), set[beacon.B].Circle(), set[beacon.C].Circle())

	r.log.Debug("pair intersections",
		"ab", est.Valid[PairAB],
		"ac", est.Valid[PairAC],
		"bc", est.Valid[PairBC],
	)

	res := Resolution{Estimate: est, Positions: Relative(set, est)}

	switch est.Tier {
	case TierAllThree:
		r.log.Debug("centroid from all pairs", "centroid", est.Point.String())
	case TierSinglePair:
		args := []any{"pair", est.Pair.String(), "centroid", est.Point.String()}
		if rejected := est.RejectedPairs(); rejected != "" {
			args = append(args, "selection_failed", rejected)
		}
		r.log.Warn("using single pair centroid", args...)
	default:
		if rejected := est.RejectedPairs(); rejected != "" {
			r.log.Warn("no valid centroid found", "selection_failed", rejected)
		} else {
			r.log.Warn("no valid centroid found")
		}
		return res, err
	}

	r.log.Debug("estimated positions",
		"a", res.Positions[beacon.A].String(),
		"b", res.Positions[beacon.B].String(),
		"c", res.Positions[beacon.C].String(),
	)
	return res, nil
}
