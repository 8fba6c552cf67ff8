package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"floorplan-editor/internal/editor/models"
)

func pts(coords ...float64) []models.Point {
	out := make([]models.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, models.Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func TestBoundsAndIntersects(t *testing.T) {
	a := Bounds(pts(0, 0, 10, 0, 10, 10, 0, 10))
	b := Bounds(pts(5, 5, 15, 5, 15, 15, 5, 15))
	c := Bounds(pts(10, 0, 20, 0, 20, 10, 10, 10))

	require.Equal(t, BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, a)
	require.True(t, a.Intersects(b))
	require.False(t, a.Intersects(c), "shared edge is not an overlap")
	require.True(t, a.Touches(c))
	require.Equal(t, models.Point{X: 5, Y: 5}, a.Center())
	require.Equal(t, BoundingBox{}, Bounds(nil))
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name string
		seg  []models.Point
		want bool
	}{
		{"crossing diagonals", pts(0, 0, 10, 10, 10, 0, 0, 10), true},
		{"parallel", pts(0, 0, 10, 0, 0, 5, 10, 5), false},
		{"shared endpoint", pts(0, 0, 10, 0, 10, 0, 10, 10), false},
		{"t-junction at endpoint", pts(0, 0, 10, 0, 5, 0, 5, 10), false},
		{"disjoint", pts(0, 0, 1, 1, 5, 5, 6, 7), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SegmentsIntersect(tt.seg[0], tt.seg[1], tt.seg[2], tt.seg[3]))
		})
	}
}

func TestSelfIntersects(t *testing.T) {
	require.False(t, SelfIntersects(pts(0, 0, 10, 0, 10, 10, 0, 10)))
	require.False(t, SelfIntersects(pts(0, 0, 10, 0, 10, 10, 0, 10, 0, 0)), "explicitly closed ring")
	require.True(t, SelfIntersects(pts(0, 0, 10, 10, 10, 0, 0, 10)))
	require.False(t, SelfIntersects(pts(0, 0, 10, 0, 5, 8)))
	// concave L-shape
	require.False(t, SelfIntersects(pts(0, 0, 10, 0, 10, 5, 5, 5, 5, 10, 0, 10)))
}

func TestPointToSegmentDistance(t *testing.T) {
	a, b := models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 0}
	require.InDelta(t, 3.0, PointToSegmentDistance(models.Point{X: 5, Y: 3}, a, b), 1e-9)
	require.InDelta(t, 5.0, PointToSegmentDistance(models.Point{X: 13, Y: 4}, a, b), 1e-9, "clamped to endpoint")
	require.InDelta(t, 5.0, PointToSegmentDistance(models.Point{X: 3, Y: 4}, a, a), 1e-9, "degenerate segment")
	require.InDelta(t, 0.0, DistanceToBoundary(models.Point{X: 10, Y: 5}, pts(0, 0, 10, 0, 10, 10, 0, 10)), 1e-9)
}

func TestPointsPerGeometryType(t *testing.T) {
	require.Len(t, Points(models.NewRect(1, 2, 3, 4)), 4)
	require.Equal(t, pts(1, 2, 4, 2, 4, 6, 1, 6), Points(models.NewRect(1, 2, 3, 4)))
	require.Equal(t, BoundingBox{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}, Bounds(Points(models.NewCircle(0, 0, 1))))
	require.Equal(t, pts(0, 0, 3, 4), Points(models.NewLine(models.Point{}, models.Point{X: 3, Y: 4})))
	require.Equal(t, pts(7, 8), Points(models.NewPoint(7, 8)))
	require.Nil(t, Points(models.Geometry{Type: "hexagon"}))
}

func TestApplyTransform(t *testing.T) {
	p := models.Point{X: 1, Y: 0}
	require.Equal(t, p, ApplyTransform(p, nil))

	tr := &models.Transform{Translate: models.Point{X: 10, Y: 10}, Rotation: 90, Scale: &models.Point{X: 2, Y: 2}}
	got := ApplyTransform(p, tr)
	require.InDelta(t, 10.0, got.X, 1e-9)
	require.InDelta(t, 12.0, got.Y, 1e-9)

	box := WorldBounds(models.NewRect(0, 0, 2, 2), &models.Transform{Translate: models.Point{X: 5, Y: -1}})
	require.Equal(t, BoundingBox{MinX: 5, MinY: -1, MaxX: 7, MaxY: 1}, box)
	require.False(t, math.IsNaN(box.Width()))
}
