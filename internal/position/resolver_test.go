package position

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locator/internal/beacon"
	"locator/internal/geometry"
)

func observed(x, y, d float64) Beacon {
	return Beacon{Position: geometry.Point{X: x, Y: y}, Distance: d, Observed: true}
}

func TestResolvePositions_AllThree(t *testing.T) {
	set := BeaconSet{
		observed(300, 0, 300),
		observed(-300, 0, 300),
		observed(0, 300, 300),
	}

	got := ResolvePositions(set)

	assertPointNear(t, geometry.Point{X: 300, Y: 0}, got[beacon.A], 1e-6)
	assertPointNear(t, geometry.Point{X: -300, Y: 0}, got[beacon.B], 1e-6)
	assertPointNear(t, geometry.Point{X: 0, Y: 300}, got[beacon.C], 1e-6)
	for _, p := range got {
		assert.False(t, p.IsOrigin())
	}
}

func TestResolvePositions_OnlyOneReading(t *testing.T) {
	set := BeaconSet{
		observed(300, 0, 250),
		{Position: geometry.Point{X: -300, Y: 0}},
		{Position: geometry.Point{X: 0, Y: 300}},
	}

	assert.Equal(t, [3]geometry.Point{}, ResolvePositions(set))
}

func TestResolvePositions_UnreachableBeacon(t *testing.T) {
	set := BeaconSet{
		observed(300, 0, 250),
		observed(-300, 0, 400),
		observed(0, 300, 1),
	}

	centroid, ok := CentroidOfPair(set[beacon.A].Circle(), set[beacon.B].Circle())
	require.True(t, ok)

	got := ResolvePositions(set)
	assert.Equal(t, set[beacon.A].Position.Sub(centroid), got[beacon.A])
	assert.Equal(t, set[beacon.B].Position.Sub(centroid), got[beacon.B])
	assert.Equal(t, geometry.Point{}, got[beacon.C])
	assertPointNear(t, geometry.Point{X: 218.75, Y: 0}, got[beacon.A], 1e-9)
	assertPointNear(t, geometry.Point{X: -381.25, Y: 0}, got[beacon.B], 1e-9)
}

func TestResolvePositions_Deterministic(t *testing.T) {
	set := BeaconSet{
		observed(0, 0, 1.6),
		observed(4, 0, 3.5),
		observed(0, 4, 3.5),
	}
	assert.Equal(t, ResolvePositions(set), ResolvePositions(set))
}

func TestBeaconCircle(t *testing.T) {
	b := Beacon{Position: geometry.Point{X: 1, Y: 2}, Distance: 7}
	assert.Equal(t, 0.0, b.Circle().Radius, "unobserved beacons have no range")

	b.Observed = true
	assert.Equal(t, geometry.Circle{Center: geometry.Point{X: 1, Y: 2}, Radius: 7}, b.Circle())
}

func TestResolver_LogsDegradation(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	res, err := r.Resolve(BeaconSet{
		observed(300, 0, 250),
		observed(-300, 0, 400),
		observed(0, 300, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, TierSinglePair, res.Estimate.Tier)
	assert.True(t, res.Known(beacon.A))
	assert.True(t, res.Known(beacon.B))
	assert.False(t, res.Known(beacon.C))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "using single pair centroid")
	assert.Contains(t, out, "pair=AB")
	assert.Contains(t, out, "ab=true")
	assert.NotContains(t, out, "selection_failed")
}

func TestResolver_LogsRejectedPairs(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(slog.New(slog.NewTextHandler(&buf, nil)))

	res, err := r.Resolve(BeaconSet{
		observed(0, 0, 3),
		observed(2, 0, 4),
		observed(4, 1, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, PairAC, res.Estimate.Pair)
	assert.True(t, res.Known(beacon.A))
	assert.False(t, res.Known(beacon.B))
	assert.True(t, res.Known(beacon.C))

	out := buf.String()
	assert.Contains(t, out, "using single pair centroid")
	assert.Contains(t, out, "pair=AC")
	assert.Contains(t, out, "selection_failed=AB,BC")
}

func TestResolver_AllSelectionsFail(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(slog.New(slog.NewTextHandler(&buf, nil)))

	res, err := r.Resolve(BeaconSet{
		observed(0, 0, 1),
		observed(1.5, 0, 1),
		observed(0.75, 5, 4.2),
	})
	assert.ErrorIs(t, err, ErrNoEstimate)
	assert.Equal(t, TierNone, res.Estimate.Tier)
	assert.Equal(t, [3]geometry.Point{}, res.Positions)
	assert.Contains(t, buf.String(), "no valid centroid found")
	assert.Contains(t, buf.String(), "selection_failed=AB,AC,BC")
}

func TestResolver_NoEstimate(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(slog.New(slog.NewTextHandler(&buf, nil)))

	res, err := r.Resolve(BeaconSet{
		observed(0, 0, 1),
		observed(100, 0, 1),
		observed(0, 100, 1),
	})
	assert.ErrorIs(t, err, ErrNoEstimate)
	assert.Equal(t, [3]geometry.Point{}, res.Positions)
	assert.Contains(t, buf.String(), "no valid centroid found")
}
