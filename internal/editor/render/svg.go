package render

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
)

// Margin pads the drawing on every side.
const Margin = 10

const (
	roomStroke   = "#888"
	doorStroke   = "#d62728"
	windowStroke = "#1f77b4"
)

// ============================================================
// Renderer
// ============================================================

// SVG draws rooms as closed paths and doors as outlines. Objects of a group
// are wrapped in a <g> carrying the group id; grouped objects are drawn in
// the first group that lists them.
func SVG(doc models.PlanDocument) ([]byte, error) {
	box, ok := planBounds(doc)
	if !ok {
		return nil, fmt.Errorf("plan has no rooms or doors")
	}

	minX, minY := box.MinX-Margin, box.MinY-Margin
	width, height := box.Width()+2*Margin, box.Height()+2*Margin

	rooms := make(map[string]models.Room, len(doc.Rooms))
	for _, r := range doc.Rooms {
		rooms[r.ID] = r
	}
	doors := make(map[string]models.Door, len(doc.Doors))
	for _, d := range doc.Doors {
		doors[d.ID] = d
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(minX), formatFloat(minY), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	drawn := make(map[string]bool)
	ids := make(idSet)
	for _, g := range doc.Groups {
		var elements []string
		for _, id := range g.ObjectIDs {
			if drawn[id] {
				continue
			}
			if r, ok := rooms[id]; ok {
				elements = append(elements, renderRoom(r, ids))
				drawn[id] = true
			} else if d, ok := doors[id]; ok {
				elements = append(elements, renderDoor(d))
				drawn[id] = true
			}
		}
		if len(elements) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf(`  <g id="%s">`, escape(g.ID)))
		builder.WriteString("\n")
		for _, elem := range elements {
			builder.WriteString("    ")
			builder.WriteString(elem)
			builder.WriteString("\n")
		}
		builder.WriteString("  </g>\n")
	}

	for _, elem := range renderLoose(doc, drawn, ids) {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	builder.WriteString("\n")
	return []byte(builder.String()), nil
}

func renderLoose(doc models.PlanDocument, drawn map[string]bool, ids idSet) []string {
	var out []string
	for _, r := range sortedRooms(doc.Rooms) {
		if !drawn[r.ID] {
			out = append(out, renderRoom(r, ids))
		}
	}
	for _, d := range sortedDoors(doc.Doors) {
		if !drawn[d.ID] {
			out = append(out, renderDoor(d))
		}
	}
	return out
}

// ============================================================
// Element renderers
// ============================================================

func renderRoom(r models.Room, ids idSet) string {
	points := geometry.OpenRing(geometry.RoomBoundary(r))

	var path strings.Builder
	path.WriteString(`<path id="`)
	path.WriteString(escape(ids.room(r)))
	path.WriteString(`" d="`)
	path.WriteString(pathData(points))
	path.WriteString(`" fill="`)
	path.WriteString(escape(styleOr(r.Style, "fill", "none")))
	path.WriteString(`" stroke="`)
	path.WriteString(escape(styleOr(r.Style, "stroke", roomStroke)))
	path.WriteString(`" />`)
	return path.String()
}

func renderDoor(d models.Door) string {
	prefix, stroke := "Door_", doorStroke
	if strings.EqualFold(d.Type, "window") {
		prefix, stroke = "Window_", windowStroke
	}
	id := escape(prefix + d.ID)
	stroke = escape(styleOr(d.Style, "stroke", stroke))

	// Untransformed rects keep their rect form so they import back unchanged.
	if d.Geometry.Type == models.GeometryRect && d.Transform == nil {
		g := d.Geometry.Data
		return fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" />`,
			id, formatFloat(g.X), formatFloat(g.Y), formatFloat(g.Width), formatFloat(g.Height), stroke)
	}

	points := geometry.WorldPoints(d.Geometry, d.Transform)
	if len(points) < 2 {
		return fmt.Sprintf(`<!-- door %s has no outline -->`, id)
	}
	return fmt.Sprintf(`<path id="%s" d="%s" fill="none" stroke="%s" />`, id, pathData(points), stroke)
}

// ============================================================
// Geometry helpers
// ============================================================

func planBounds(doc models.PlanDocument) (geometry.BoundingBox, bool) {
	var points []models.Point
	for _, r := range doc.Rooms {
		points = append(points, geometry.RoomBoundary(r)...)
	}
	for _, d := range doc.Doors {
		points = append(points, geometry.WorldPoints(d.Geometry, d.Transform)...)
	}
	if len(points) == 0 {
		return geometry.BoundingBox{}, false
	}
	return geometry.Bounds(points), true
}

func pathData(points []models.Point) string {
	if len(points) == 0 {
		return ""
	}
	var d strings.Builder
	d.WriteString("M ")
	d.WriteString(formatPoint(points[0]))
	for _, p := range points[1:] {
		d.WriteString(" L ")
		d.WriteString(formatPoint(p))
	}
	if len(points) > 2 {
		d.WriteString(" Z")
	}
	return d.String()
}

func sortedRooms(in []models.Room) []models.Room {
	out := append([]models.Room(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedDoors(in []models.Door) []models.Door {
	out := append([]models.Door(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ============================================================
// Formatting helpers
// ============================================================

// idSet hands out unique element ids.
type idSet map[string]bool

// room names a room "<Name>_room", the form the SVG importer reads back as
// a room called Name. Repeated names get a numeric suffix.
func (s idSet) room(r models.Room) string {
	base := strings.ReplaceAll(strings.TrimSpace(r.Name), " ", "_")
	if base == "" {
		base = r.ID
	}
	id := base + "_room"
	for n := 2; s[id]; n++ {
		id = base + "_" + strconv.Itoa(n) + "_room"
	}
	s[id] = true
	return id
}

func styleOr(style map[string]string, key, def string) string {
	if v, ok := style[key]; ok && v != "" {
		return v
	}
	return def
}

func escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}

func formatFloat(val float64) string {
	if math.Abs(val) < 1e-9 {
		val = 0
	}
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
