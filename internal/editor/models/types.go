package models

import "time"

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type GeometryType string

const (
	GeometryPoint   GeometryType = "point"
	GeometryLine    GeometryType = "line"
	GeometryRect    GeometryType = "rect"
	GeometryPolygon GeometryType = "polygon"
	GeometryCircle  GeometryType = "circle"
)

// Geometry is a tagged union: Type selects which fields of Data are meaningful.
//
//	point:   X, Y
//	line:    Start, End
//	rect:    X, Y (top-left), Width, Height
//	polygon: Points
//	circle:  X, Y (center), Radius
type Geometry struct {
	Type GeometryType `json:"type" yaml:"type"`
	Data GeometryData `json:"data" yaml:"data"`
}

type GeometryData struct {
	X      float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Start  *Point  `json:"start,omitempty" yaml:"start,omitempty"`
	End    *Point  `json:"end,omitempty" yaml:"end,omitempty"`
	Points []Point `json:"points,omitempty" yaml:"points,omitempty"`
}

func NewPolygon(points ...Point) Geometry {
	return Geometry{Type: GeometryPolygon, Data: GeometryData{Points: append([]Point(nil), points...)}}
}

func NewRect(x, y, width, height float64) Geometry {
	return Geometry{Type: GeometryRect, Data: GeometryData{X: x, Y: y, Width: width, Height: height}}
}

func NewCircle(cx, cy, radius float64) Geometry {
	return Geometry{Type: GeometryCircle, Data: GeometryData{X: cx, Y: cy, Radius: radius}}
}

func NewLine(start, end Point) Geometry {
	return Geometry{Type: GeometryLine, Data: GeometryData{Start: &start, End: &end}}
}

func NewPoint(x, y float64) Geometry {
	return Geometry{Type: GeometryPoint, Data: GeometryData{X: x, Y: y}}
}

// Clone returns a deep copy.
func (g Geometry) Clone() Geometry {
	out := g
	if g.Data.Start != nil {
		p := *g.Data.Start
		out.Data.Start = &p
	}
	if g.Data.End != nil {
		p := *g.Data.End
		out.Data.End = &p
	}
	if g.Data.Points != nil {
		out.Data.Points = append([]Point(nil), g.Data.Points...)
	}
	return out
}

// Transform is applied to an object's geometry as scale, then rotation
// (degrees, around the origin), then translation. A nil Scale means 1:1.
type Transform struct {
	Translate Point   `json:"translate" yaml:"translate"`
	Rotation  float64 `json:"rotation" yaml:"rotation"`
	Scale     *Point  `json:"scale,omitempty" yaml:"scale,omitempty"`
}

func (t *Transform) Clone() *Transform {
	if t == nil {
		return nil
	}
	out := *t
	if t.Scale != nil {
		s := *t.Scale
		out.Scale = &s
	}
	return &out
}

// ============================================================
// Editor entities
// ============================================================

type Metadata struct {
	Name  string            `json:"name" yaml:"name"`
	Type  string            `json:"type" yaml:"type"`
	Style map[string]string `json:"style,omitempty" yaml:"style,omitempty"`
}

func (m Metadata) Clone() Metadata {
	out := m
	out.Style = cloneStyle(m.Style)
	return out
}

type Room struct {
	ID        string `json:"id" yaml:"id"`
	Metadata  `yaml:",inline"`
	Geometry  Geometry   `json:"geometry" yaml:"geometry"`
	Points    []Point    `json:"points" yaml:"points"`
	Transform *Transform `json:"transform,omitempty" yaml:"transform,omitempty"`
}

func (r Room) Clone() Room {
	out := r
	out.Metadata = r.Metadata.Clone()
	out.Geometry = r.Geometry.Clone()
	out.Points = append([]Point(nil), r.Points...)
	out.Transform = r.Transform.Clone()
	return out
}

type Door struct {
	ID        string `json:"id" yaml:"id"`
	Metadata  `yaml:",inline"`
	RoomID    string     `json:"roomId,omitempty" yaml:"roomId,omitempty"`
	Geometry  Geometry   `json:"geometry" yaml:"geometry"`
	Transform *Transform `json:"transform,omitempty" yaml:"transform,omitempty"`
}

func (d Door) Clone() Door {
	out := d
	out.Metadata = d.Metadata.Clone()
	out.Geometry = d.Geometry.Clone()
	out.Transform = d.Transform.Clone()
	return out
}

// Group references rooms and doors by id. Groups never contain groups.
type Group struct {
	ID        string `json:"id" yaml:"id"`
	Metadata  `yaml:",inline"`
	ObjectIDs []string `json:"objectIds" yaml:"objectIds"`
}

func (g Group) Clone() Group {
	out := g
	out.Metadata = g.Metadata.Clone()
	out.ObjectIDs = append([]string(nil), g.ObjectIDs...)
	return out
}

// ============================================================
// Partial updates
// ============================================================

type RoomChanges struct {
	Name      *string           `json:"name,omitempty" yaml:"name,omitempty"`
	Type      *string           `json:"type,omitempty" yaml:"type,omitempty"`
	Style     map[string]string `json:"style,omitempty" yaml:"style,omitempty"`
	Geometry  *Geometry         `json:"geometry,omitempty" yaml:"geometry,omitempty"`
	Points    []Point           `json:"points,omitempty" yaml:"points,omitempty"`
	Transform *Transform        `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// Clone returns a deep copy, so later writes through the caller's pointers
// and maps do not reach it.
func (c RoomChanges) Clone() RoomChanges {
	out := c
	out.Name = cloneString(c.Name)
	out.Type = cloneString(c.Type)
	out.Style = cloneStyle(c.Style)
	if c.Geometry != nil {
		g := c.Geometry.Clone()
		out.Geometry = &g
	}
	if c.Points != nil {
		out.Points = append([]Point{}, c.Points...)
	}
	out.Transform = c.Transform.Clone()
	return out
}

func (r Room) Apply(c RoomChanges) Room {
	out := r.Clone()
	out.Metadata = mergeMetadata(out.Metadata, c.Name, c.Type, c.Style)
	if c.Geometry != nil {
		out.Geometry = c.Geometry.Clone()
	}
	if c.Points != nil {
		out.Points = append([]Point(nil), c.Points...)
	}
	if c.Transform != nil {
		out.Transform = c.Transform.Clone()
	}
	return out
}

type DoorChanges struct {
	Name      *string           `json:"name,omitempty" yaml:"name,omitempty"`
	Type      *string           `json:"type,omitempty" yaml:"type,omitempty"`
	Style     map[string]string `json:"style,omitempty" yaml:"style,omitempty"`
	RoomID    *string           `json:"roomId,omitempty" yaml:"roomId,omitempty"`
	Geometry  *Geometry         `json:"geometry,omitempty" yaml:"geometry,omitempty"`
	Transform *Transform        `json:"transform,omitempty" yaml:"transform,omitempty"`
}

func (c DoorChanges) Clone() DoorChanges {
	out := c
	out.Name = cloneString(c.Name)
	out.Type = cloneString(c.Type)
	out.Style = cloneStyle(c.Style)
	out.RoomID = cloneString(c.RoomID)
	if c.Geometry != nil {
		g := c.Geometry.Clone()
		out.Geometry = &g
	}
	out.Transform = c.Transform.Clone()
	return out
}

func (d Door) Apply(c DoorChanges) Door {
	out := d.Clone()
	out.Metadata = mergeMetadata(out.Metadata, c.Name, c.Type, c.Style)
	if c.RoomID != nil {
		out.RoomID = *c.RoomID
	}
	if c.Geometry != nil {
		out.Geometry = c.Geometry.Clone()
	}
	if c.Transform != nil {
		out.Transform = c.Transform.Clone()
	}
	return out
}

type GroupChanges struct {
	Name      *string           `json:"name,omitempty" yaml:"name,omitempty"`
	Type      *string           `json:"type,omitempty" yaml:"type,omitempty"`
	Style     map[string]string `json:"style,omitempty" yaml:"style,omitempty"`
	ObjectIDs []string          `json:"objectIds,omitempty" yaml:"objectIds,omitempty"`
}

func (c GroupChanges) Clone() GroupChanges {
	out := c
	out.Name = cloneString(c.Name)
	out.Type = cloneString(c.Type)
	out.Style = cloneStyle(c.Style)
	if c.ObjectIDs != nil {
		out.ObjectIDs = append([]string{}, c.ObjectIDs...)
	}
	return out
}

func (g Group) Apply(c GroupChanges) Group {
	out := g.Clone()
	out.Metadata = mergeMetadata(out.Metadata, c.Name, c.Type, c.Style)
	if c.ObjectIDs != nil {
		out.ObjectIDs = append([]string(nil), c.ObjectIDs...)
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneStyle(style map[string]string) map[string]string {
	if style == nil {
		return nil
	}
	out := make(map[string]string, len(style))
	for k, v := range style {
		out[k] = v
	}
	return out
}

// mergeMetadata overwrites set fields; style keys are merged, an empty value removes the key.
func mergeMetadata(m Metadata, name, typ *string, style map[string]string) Metadata {
	if name != nil {
		m.Name = *name
	}
	if typ != nil {
		m.Type = *typ
	}
	for k, v := range style {
		if m.Style == nil {
			m.Style = make(map[string]string)
		}
		if v == "" {
			delete(m.Style, k)
			continue
		}
		m.Style[k] = v
	}
	return m
}

// ============================================================
// Persisted plan
// ============================================================

const PlanVersion = 1

type PlanDocument struct {
	Rooms     []Room    `json:"rooms" yaml:"rooms"`
	Doors     []Door    `json:"doors" yaml:"doors"`
	Groups    []Group   `json:"groups,omitempty" yaml:"groups,omitempty"`
	Version   int       `json:"version" yaml:"version"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
