package position

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"locator/internal/beacon"
	"locator/internal/geometry"
)

// ErrNoEstimate is returned when no circle pair intersects, so no position can
// be derived from the current readings.
var ErrNoEstimate = errors.New("no valid beacon pair intersection")

// Pair names one of the three circle pairs.
type Pair int

const (
	PairAB Pair = iota
	PairAC
	PairBC
)

// Pairs lists the pairs in degradation ladder order.
var Pairs = [3]Pair{PairAB, PairAC, PairBC}

// Members returns the two beacons forming the pair.
func (p Pair) Members() (beacon.Label, beacon.Label) {
	switch p {
	case PairAB:
		return beacon.A, beacon.B
	case PairAC:
		return beacon.A, beacon.C
	default:
		return beacon.B, beacon.C
	}
}

// Third returns the beacon that disambiguates the pair.
func (p Pair) Third() beacon.Label {
	switch p {
	case PairAB:
		return beacon.C
	case PairAC:
		return beacon.B
	default:
		return beacon.A
	}
}

func (p Pair) String() string {
	i, j := p.Members()
	return i.String() + j.String()
}

// Tier is the level of the degradation ladder an estimate was produced at.
type Tier int

const (
	TierNone Tier = iota
	TierSinglePair
	TierAllThree
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierSinglePair:
		return "single_pair"
	case TierAllThree:
		return "all_three"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Estimate is the tagged result of WeightedCentroid.
type Estimate struct {
	Tier  Tier
	Pair  Pair // set for TierSinglePair only
	Point geometry.Point
	// Valid records which pairs intersected, indexed by Pair.
	Valid [3]bool
	// Rejected records pairs that intersected but had no crossing point
	// consistent with the third circle. A rejected pair is not used as a
	// fallback.
	Rejected [3]bool
}

// Usable reports whether p can supply a single-pair estimate.
func (e Estimate) Usable(p Pair) bool {
	return e.Valid[p] && !e.Rejected[p]
}

// RejectedPairs returns the names of the rejected pairs joined by commas, or
// an empty string when none were rejected.
func (e Estimate) RejectedPairs() string {
	var names []string
	for _, p := range Pairs {
		if e.Rejected[p] {
			names = append(names, p.String())
		}
	}
	return strings.Join(names, ",")
}

// Participants reports, per beacon, whether its reading contributed to the
// estimate.
func (e Estimate) Participants() [3]bool {
	switch e.Tier {
	case TierAllThree:
		return [3]bool{true, true, true}
	case TierSinglePair:
		var out [3]bool
		i, j := e.Pair.Members()
		out[i], out[j] = true, true
		return out
	default:
		return [3]bool{}
	}
}

// selectTolerance absorbs rounding when a candidate sits exactly on the
// reference circle, as happens at tangency.
func selectTolerance(radius float64) float64 {
	return 1e-9 * math.Max(1, radius)
}

// Select picks the crossing point of in that lies within radius of ref,
// checking P1 before P2. It reports false when neither candidate is
// consistent with the reference, or when in is not valid.
func Select(in geometry.Intersection, ref geometry.Point, radius float64) (geometry.Point, bool) {
	if !in.Valid {
		return geometry.Point{}, false
	}
	limit := radius + selectTolerance(radius)
	if in.P1.DistanceTo(ref) <= limit {
		return in.P1, true
	}
	if in.P2.DistanceTo(ref) <= limit {
		return in.P2, true
	}
	return geometry.Point{}, false
}

// intersectUsable treats a pair containing an unusable reading as invalid
// without attempting the intersection.
func intersectUsable(c1, c2 geometry.Circle) geometry.Intersection {
	if !c1.Usable() || !c2.Usable() {
		return geometry.Intersection{}
	}
	return geometry.Intersect(c1, c2)
}

// CentroidOfPair returns the midpoint of the two crossing points of c1 and
// c2, or false if they do not intersect.
func CentroidOfPair(c1, c2 geometry.Circle) (geometry.Point, bool) {
	in := intersectUsable(c1, c2)
	if !in.Valid {
		return geometry.Point{}, false
	}
	return in.Midpoint(), true
}

// WeightedCentroid combines the three pairwise intersections of a, b and c
// into one position estimate.
//
// With all three pairs intersecting, each pair contributes the crossing point
// consistent with the third circle, weighted by 1/(ri+rj). A pair whose
// selection fails is marked rejected and the ladder continues without it.
// Otherwise the first usable pair in AB, AC, BC order supplies its two-circle
// centroid. If no pair is usable, ErrNoEstimate is returned with a TierNone
// estimate.
func WeightedCentroid(a, b, c geometry.Circle) (Estimate, error) {
	circles := [3]geometry.Circle{a, b, c}

	var est Estimate
	var pairs [3]geometry.Intersection
	for _, p := range Pairs {
		i, j := p.Members()
		pairs[p] = intersectUsable(circles[i], circles[j])
		est.Valid[p] = pairs[p].Valid
	}

	for _, tier := range []func(*Estimate, [3]geometry.Circle, [3]geometry.Intersection) bool{
		allThree,
		singlePair,
	} {
		if tier(&est, circles, pairs) {
			return est, nil
		}
	}

	est.Tier = TierNone
	return est, ErrNoEstimate
}

func allThree(est *Estimate, circles [3]geometry.Circle, pairs [3]geometry.Intersection) bool {
	if !est.Valid[PairAB] || !est.Valid[PairAC] || !est.Valid[PairBC] {
		return false
	}

	var sum geometry.Point
	var weights float64
	for _, p := range Pairs {
		ref := circles[p.Third()]
		pt, ok := Select(pairs[p], ref.Center, ref.Radius)
		if !ok {
			est.Rejected[p] = true
			continue
		}
		i, j := p.Members()
		w := 1 / (circles[i].Radius + circles[j].Radius)
		sum = sum.Add(pt.Scale(w))
		weights += w
	}
	if est.RejectedPairs() != "" {
		return false
	}
	est.Tier = TierAllThree
	est.Point = sum.Scale(1 / weights)
	return true
}

func singlePair(est *Estimate, _ [3]geometry.Circle, pairs [3]geometry.Intersection) bool {
	for _, p := range Pairs {
		if !est.Usable(p) {
			continue
		}
		est.Tier = TierSinglePair
		est.Pair = p
		est.Point = pairs[p].Midpoint()
		return true
	}
	return false
}
