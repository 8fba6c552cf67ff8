package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/geometry"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/service"
)

type Options struct {
	// SkipValidation imports shapes that would fail the editor's checks,
	// such as rooms whose bounding boxes overlap.
	SkipValidation bool `json:"skipValidation"`
}

// Summary counts what an import produced.
type Summary struct {
	Rooms   int      `json:"rooms"`
	Doors   int      `json:"doors"`
	Windows int      `json:"windows"`
	Skipped []string `json:"skipped,omitempty"`
}

// ============================================================
// Command building
// ============================================================

// Build turns elements into one composite command. Rooms come first so that
// doors can reference them; a door is attached to the first room whose
// boundary its center lies on. Walls are not editor objects and are skipped.
func Build(f *commands.Factory, elements []Element, opts Options) (*commands.Command, Summary, error) {
	var sum Summary
	childOpts := commands.Options{SkipValidation: opts.SkipValidation}
	b := f.NewComposite()

	type placed struct {
		id       string
		boundary []models.Point
	}
	var rooms []placed

	for _, el := range elements {
		if el.Kind != KindRoom && el.Kind != KindBalcony {
			continue
		}
		if len(el.Points) < 3 {
			sum.Skipped = append(sum.Skipped, el.ID)
			continue
		}
		cmd, err := f.CreateCommand(commands.KindAddRoom, commands.AddRoomPayload{
			Geometry: models.NewPolygon(el.Points...),
			Metadata: models.Metadata{Name: displayName(el.ID), Type: string(el.Kind)},
		}, childOpts)
		if err != nil {
			return nil, sum, fmt.Errorf("room %s: %w", el.ID, err)
		}
		b.AddCommand(cmd)
		id, _ := cmd.Result().(string)
		rooms = append(rooms, placed{id: id, boundary: el.Points})
		sum.Rooms++
	}

	for _, el := range elements {
		if el.Kind != KindDoor && el.Kind != KindWindow {
			continue
		}
		box := el.Bounds()
		if len(el.Points) == 0 || (box.Width() == 0 && box.Height() == 0) {
			sum.Skipped = append(sum.Skipped, el.ID)
			continue
		}
		// A composite validates against the state before it runs, where the
		// new rooms do not exist yet; wall placement is checked here instead.
		roomID, doorOpts := "", childOpts
		for _, r := range rooms {
			if geometry.DistanceToBoundary(box.Center(), r.boundary) <= commands.DoorWallTolerance {
				roomID, doorOpts.SkipValidation = r.id, true
				break
			}
		}
		cmd, err := f.CreateCommand(commands.KindAddDoor, commands.AddDoorPayload{
			Geometry: models.NewRect(box.MinX, box.MinY, box.Width(), box.Height()),
			Metadata: models.Metadata{Name: displayName(el.ID), Type: string(el.Kind)},
			RoomID:   roomID,
		}, doorOpts)
		if err != nil {
			return nil, sum, fmt.Errorf("%s %s: %w", el.Kind, el.ID, err)
		}
		b.AddCommand(cmd)
		if el.Kind == KindWindow {
			sum.Windows++
		} else {
			sum.Doors++
		}
	}

	if b.Len() == 0 {
		return nil, sum, fmt.Errorf("svg contains no rooms, doors or windows")
	}
	cmd, err := b.Build(commands.Options{})
	if err != nil {
		return nil, sum, err
	}
	return cmd, sum, nil
}

// Import parses r and executes the result in ws as a single undo step.
func Import(ctx context.Context, ws *service.Workspace, r io.Reader, opts Options) (Summary, error) {
	elements, err := ParseSVG(r)
	if err != nil {
		return Summary{}, err
	}
	cmd, sum, err := Build(ws.Factory(), elements, opts)
	if err != nil {
		return sum, err
	}
	if _, err := ws.Execute(ctx, cmd); err != nil {
		return sum, err
	}
	log.Printf("[IMPORT] imported %d rooms, %d doors, %d windows (%d skipped)", sum.Rooms, sum.Doors, sum.Windows, len(sum.Skipped))
	return sum, nil
}

// displayName turns "Hall_room" or "Room_Kitchen_2" into "Hall" or "Kitchen 2".
func displayName(id string) string {
	name := id
	for _, prefix := range []string{"Room_", "Door_", "Window_", "Balcony_"} {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.TrimSuffix(strings.TrimSuffix(name, "_room"), "_Room")
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return id
	}
	return name
}
