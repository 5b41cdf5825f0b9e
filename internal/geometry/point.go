package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in the shared 2-D frame (meters, centred on the observer).
type Point struct {
	X, Y float64
}

// Origin is the frame origin. Resolvers also use it as the "unknown" sentinel.
var Origin = Point{}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point { return fromVec(r2.Scale(f, p.vec())) }

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 { return r2.Norm(r2.Sub(p.vec(), q.vec())) }

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point { return p.Add(q).Scale(0.5) }

// IsOrigin reports whether p is exactly the frame origin.
func (p Point) IsOrigin() bool { return p.X == 0 && p.Y == 0 }

// IsFinite reports whether both coordinates are finite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}
