// Package importer turns an annotated floor-plan SVG into editor commands.
// Elements are recognised by their id: Room_*, *_room and Balcony* become
// rooms, Door_* and Window_* become door rectangles.
package importer

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// XML Structures
// ============================================================

type svgDoc struct {
	XMLName xml.Name `xml:"svg"`
	svgGroup
}

type svgGroup struct {
	Rects  []svgRect  `xml:"rect"`
	Paths  []svgPath  `xml:"path"`
	Groups []svgGroup `xml:"g"`
}

type svgRect struct {
	ID     string  `xml:"id,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type svgPath struct {
	ID string `xml:"id,attr"`
	D  string `xml:"d,attr"`
}

// ============================================================
// Elements
// ============================================================

type ElementKind string

const (
	KindWall    ElementKind = "wall"
	KindDoor    ElementKind = "door"
	KindWindow  ElementKind = "window"
	KindRoom    ElementKind = "room"
	KindBalcony ElementKind = "balcony"
)

// Element is one recognised SVG shape, as a closed outline without the
// duplicated closing point.
type Element struct {
	ID     string
	Kind   ElementKind
	Points []models.Point
	// Rect is set when the source element was a <rect>.
	Rect bool
}

func (e Element) Bounds() geometry.BoundingBox {
	return geometry.Bounds(e.Points)
}

// ParseSVG reads every recognised rect and path, including those nested in
// groups, in document order per group.
func ParseSVG(r io.Reader) ([]Element, error) {
	var doc svgDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode svg: %w", err)
	}

	var elements []Element
	if err := collect(doc.svgGroup, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

func collect(g svgGroup, out *[]Element) error {
	for _, rect := range g.Rects {
		kind := classifyElementByID(rect.ID)
		if kind == "" {
			continue
		}
		*out = append(*out, Element{
			ID:   rect.ID,
			Kind: kind,
			Rect: true,
			Points: []models.Point{
				{X: rect.X, Y: rect.Y},
				{X: rect.X + rect.Width, Y: rect.Y},
				{X: rect.X + rect.Width, Y: rect.Y + rect.Height},
				{X: rect.X, Y: rect.Y + rect.Height},
			},
		})
	}

	for _, path := range g.Paths {
		kind := classifyElementByID(path.ID)
		if kind == "" {
			continue
		}
		points, err := ParsePath(path.D)
		if err != nil {
			return fmt.Errorf("path %s: %w", path.ID, err)
		}
		*out = append(*out, Element{ID: path.ID, Kind: kind, Points: geometry.OpenRing(points)})
	}

	for _, child := range g.Groups {
		if err := collect(child, out); err != nil {
			return err
		}
	}
	return nil
}

func classifyElementByID(id string) ElementKind {
	switch {
	case strings.HasPrefix(id, "Wall_"), strings.HasPrefix(id, "Hui_Wall_"):
		return KindWall
	case strings.HasPrefix(id, "Door_"):
		return KindDoor
	case strings.HasPrefix(id, "Window_"):
		return KindWindow
	case strings.HasPrefix(id, "Room_"), strings.HasSuffix(id, "_room"), strings.HasSuffix(id, "_Room"):
		return KindRoom
	case strings.HasPrefix(id, "Balcony"):
		return KindBalcony
	}
	return ""
}
