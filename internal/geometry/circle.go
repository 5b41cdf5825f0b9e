package geometry

import "math"

// Circle is a beacon's reference position with its distance estimate as radius.
type Circle struct {
	Center Point
	Radius float64
}

// Usable reports whether c is a well-formed range reading: finite center and a
// finite, strictly positive radius. Callers must filter readings with it before
// handing circles to Intersect.
func (c Circle) Usable() bool {
	return c.Center.IsFinite() && c.Radius > 0 && !math.IsInf(c.Radius, 0)
}

// Intersection holds the two crossing points of a circle pair. P1 and P2 are
// meaningless unless Valid is set. At tangency both points coincide.
type Intersection struct {
	P1, P2 Point
	Valid  bool
}

// Midpoint returns the midpoint of the two crossing points.
func (in Intersection) Midpoint() Point { return in.P1.Midpoint(in.P2) }

// Intersect solves the two-circle intersection of c1 and c2.
//
// The result is invalid when the circles are too far apart to touch, when one
// encloses the other without crossing its boundary, or when they share a
// center. Tangency (d == r1+r2 or d == |r1-r2|) is valid and yields a doubled
// point.
func Intersect(c1, c2 Circle) Intersection {
	r1, r2 := c1.Radius, c2.Radius
	d := c1.Center.DistanceTo(c2.Center)

	if d > r1+r2 || d < math.Abs(r1-r2) || d == 0 {
		return Intersection{}
	}

	// a is the signed distance from c1 to the chord midpoint along the axis.
	a := (r1*r1 - r2*r2 + d*d) / (2 * d)

	// float error at the tangent boundaries can push this just below zero
	hh := r1*r1 - a*a
	if hh < 0 {
		hh = 0
	}
	h := math.Sqrt(hh)

	axis := c2.Center.Sub(c1.Center).Scale(1 / d)
	mid := c1.Center.Add(axis.Scale(a))
	perp := Point{X: axis.Y, Y: -axis.X}

	return Intersection{
		P1:    mid.Add(perp.Scale(h)),
		P2:    mid.Sub(perp.Scale(h)),
		Valid: true,
	}
}
