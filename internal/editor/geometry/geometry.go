// Package geometry holds the pure 2D helpers used to validate editor mutations.
package geometry

import (
	"math"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Bounding boxes
// ============================================================

type BoundingBox struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

func (b BoundingBox) Center() models.Point {
	return models.Point{X: b.MinX + b.Width()/2, Y: b.MinY + b.Height()/2}
}

// Intersects reports whether the boxes share a region of positive area.
// Boxes that only touch along an edge or corner do not intersect.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MinX < o.MaxX && o.MinX < b.MaxX &&
		b.MinY < o.MaxY && o.MinY < b.MaxY
}

// Touches is Intersects with closed bounds: shared edges and corners count.
func (b BoundingBox) Touches(o BoundingBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX &&
		b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Bounds returns the axis-aligned box around points. Empty input yields a zero box.
func Bounds(points []models.Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		box.MinX = math.Min(box.MinX, p.X)
		box.MinY = math.Min(box.MinY, p.Y)
		box.MaxX = math.Max(box.MaxX, p.X)
		box.MaxY = math.Max(box.MaxY, p.Y)
	}
	return box
}

// ============================================================
// Point extraction
// ============================================================

// Points returns the characteristic points of g: polygon vertices, the four
// rect corners (clockwise from top-left), the circle's bounding corners,
// line endpoints or the single point.
func Points(g models.Geometry) []models.Point {
	d := g.Data
	switch g.Type {
	case models.GeometryPolygon:
		return append([]models.Point(nil), d.Points...)
	case models.GeometryRect:
		return []models.Point{
			{X: d.X, Y: d.Y},
			{X: d.X + d.Width, Y: d.Y},
			{X: d.X + d.Width, Y: d.Y + d.Height},
			{X: d.X, Y: d.Y + d.Height},
		}
	case models.GeometryCircle:
		return []models.Point{
			{X: d.X - d.Radius, Y: d.Y - d.Radius},
			{X: d.X + d.Radius, Y: d.Y - d.Radius},
			{X: d.X + d.Radius, Y: d.Y + d.Radius},
			{X: d.X - d.Radius, Y: d.Y + d.Radius},
		}
	case models.GeometryLine:
		var out []models.Point
		if d.Start != nil {
			out = append(out, *d.Start)
		}
		if d.End != nil {
			out = append(out, *d.End)
		}
		return out
	case models.GeometryPoint:
		return []models.Point{{X: d.X, Y: d.Y}}
	}
	return nil
}

// ============================================================
// Transforms
// ============================================================

// ApplyTransform maps p through t (scale, rotate in degrees, translate).
// A nil transform is the identity.
func ApplyTransform(p models.Point, t *models.Transform) models.Point {
	if t == nil {
		return p
	}
	x, y := p.X, p.Y
	if t.Scale != nil {
		x *= t.Scale.X
		y *= t.Scale.Y
	}
	if t.Rotation != 0 {
		rad := t.Rotation * math.Pi / 180
		sin, cos := math.Sincos(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return models.Point{X: x + t.Translate.X, Y: y + t.Translate.Y}
}

// WorldPoints returns the points of g after applying t.
func WorldPoints(g models.Geometry, t *models.Transform) []models.Point {
	pts := Points(g)
	for i := range pts {
		pts[i] = ApplyTransform(pts[i], t)
	}
	return pts
}

// RoomBoundary returns the room's boundary in world space, preferring its
// boundary point list over its geometry.
func RoomBoundary(r models.Room) []models.Point {
	if len(r.Points) == 0 {
		return WorldPoints(r.Geometry, r.Transform)
	}
	out := make([]models.Point, len(r.Points))
	for i, p := range r.Points {
		out[i] = ApplyTransform(p, r.Transform)
	}
	return out
}

func WorldBounds(g models.Geometry, t *models.Transform) BoundingBox {
	return Bounds(WorldPoints(g, t))
}

// ============================================================
// Segments
// ============================================================

func Distance(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 cross at a
// point strictly inside both. Shared endpoints and collinear overlaps are
// not intersections.
func SegmentsIntersect(a1, a2, b1, b2 models.Point) bool {
	det := (a2.X-a1.X)*(b2.Y-b1.Y) - (b2.X-b1.X)*(a2.Y-a1.Y)
	if det == 0 {
		return false
	}
	lambda := ((b2.Y-b1.Y)*(b2.X-a1.X) + (b1.X-b2.X)*(b2.Y-a1.Y)) / det
	gamma := ((a1.Y-a2.Y)*(b2.X-a1.X) + (a2.X-a1.X)*(b2.Y-a1.Y)) / det
	return 0 < lambda && lambda < 1 && 0 < gamma && gamma < 1
}

// PointToSegmentDistance is the distance from p to the closest point of a-b.
func PointToSegmentDistance(p, a, b models.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Distance(p, models.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// Edge is one side of a polygon.
type Edge struct {
	A models.Point
	B models.Point
}

// Edges returns the closed ring of edges of a polygon. A trailing point equal
// to the first one is treated as an explicit close and dropped.
func Edges(points []models.Point) []Edge {
	points = OpenRing(points)
	if len(points) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(points))
	for i := range points {
		edges = append(edges, Edge{A: points[i], B: points[(i+1)%len(points)]})
	}
	return edges
}

// SelfIntersects tests every pair of non-adjacent polygon edges.
func SelfIntersects(points []models.Point) bool {
	edges := Edges(points)
	n := len(edges)
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // first and last edges share the closing vertex
			}
			if SegmentsIntersect(edges[i].A, edges[i].B, edges[j].A, edges[j].B) {
				return true
			}
		}
	}
	return false
}

// DistanceToBoundary is the smallest distance from p to any polygon edge.
func DistanceToBoundary(p models.Point, polygon []models.Point) float64 {
	best := math.Inf(1)
	for _, e := range Edges(polygon) {
		best = math.Min(best, PointToSegmentDistance(p, e.A, e.B))
	}
	return best
}

// OpenRing drops a duplicated closing point, if present. The result aliases points.
func OpenRing(points []models.Point) []models.Point {
	if len(points) > 1 && points[0] == points[len(points)-1] {
		return points[:len(points)-1]
	}
	return points
}
