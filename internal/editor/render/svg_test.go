package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"floorplan-editor/internal/editor/importer"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/render"
)

func square(id, name string, x float64) models.Room {
	pts := []models.Point{{X: x, Y: 0}, {X: x + 10, Y: 0}, {X: x + 10, Y: 10}, {X: x, Y: 10}}
	return models.Room{
		ID:       id,
		Metadata: models.Metadata{Name: name, Type: "room"},
		Geometry: models.NewPolygon(pts...),
		Points:   pts,
	}
}

func planDocument() models.PlanDocument {
	return models.PlanDocument{
		Rooms: []models.Room{square("r1", "Hall", 0), square("r2", "Kitchen", 10)},
		Doors: []models.Door{
			{ID: "d1", Metadata: models.Metadata{Name: "Front", Type: "door"}, RoomID: "r1", Geometry: models.NewRect(4, -0.5, 2, 1)},
			{ID: "w1", Metadata: models.Metadata{Name: "North", Type: "window"}, Geometry: models.NewRect(14, -0.5, 2, 1)},
		},
		Groups:  []models.Group{{ID: "g1", ObjectIDs: []string{"r1", "d1"}}},
		Version: models.PlanVersion,
	}
}

func TestSVGLayout(t *testing.T) {
	data, err := render.SVG(planDocument())
	require.NoError(t, err)
	out := string(data)

	require.Contains(t, out, `viewBox="-10 -10.5 40 30.5"`)
	require.Contains(t, out, `<g id="g1">`)
	require.Contains(t, out, `<path id="Hall_room" d="M 0 0 L 10 0 L 10 10 L 0 10 Z"`)
	require.Contains(t, out, `<rect id="Door_d1" x="4" y="-0.5" width="2" height="1"`)
	require.Contains(t, out, `<rect id="Window_w1"`)

	// Grouped objects are drawn once, inside their group.
	require.Equal(t, 1, strings.Count(out, `id="Hall_room"`))
	require.Less(t, strings.Index(out, `id="Hall_room"`), strings.Index(out, `</g>`))
	require.Greater(t, strings.Index(out, `id="Kitchen_room"`), strings.Index(out, `</g>`))
}

func TestSVGReadsBackThroughImporter(t *testing.T) {
	data, err := render.SVG(planDocument())
	require.NoError(t, err)

	elements, err := importer.ParseSVG(bytes.NewReader(data))
	require.NoError(t, err)

	kinds := map[string]importer.ElementKind{}
	for _, el := range elements {
		kinds[el.ID] = el.Kind
	}
	require.Equal(t, map[string]importer.ElementKind{
		"Hall_room":    importer.KindRoom,
		"Kitchen_room": importer.KindRoom,
		"Door_d1":      importer.KindDoor,
		"Window_w1":    importer.KindWindow,
	}, kinds)
}

func TestSVGRoomIDs(t *testing.T) {
	doc := models.PlanDocument{Rooms: []models.Room{
		square("r1", "Hall", 0),
		square("r2", "Hall", 10),
		square("r3", "A&B", 20),
		square("r4", "", 30),
	}}
	data, err := render.SVG(doc)
	require.NoError(t, err)
	out := string(data)

	require.Contains(t, out, `id="Hall_room"`)
	require.Contains(t, out, `id="Hall_2_room"`)
	require.Contains(t, out, `id="A&amp;B_room"`)
	require.Contains(t, out, `id="r4_room"`)
}

func TestSVGTransformedDoor(t *testing.T) {
	doc := models.PlanDocument{Doors: []models.Door{{
		ID:        "d1",
		Geometry:  models.NewRect(0, 0, 2, 1),
		Transform: &models.Transform{Translate: models.Point{X: 5, Y: 5}},
	}}}
	data, err := render.SVG(doc)
	require.NoError(t, err)
	require.Contains(t, string(data), `<path id="Door_d1" d="M 5 5 L 7 5 L 7 6 L 5 6 Z"`)
}

func TestSVGEmptyPlan(t *testing.T) {
	_, err := render.SVG(models.PlanDocument{})
	require.Error(t, err)
}
