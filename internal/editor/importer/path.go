package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Path Parser
// ============================================================

var pathCommand = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// ParsePath reads the straight-line subset of SVG path data (M, L, H, V, Z
// and their relative forms). Extra coordinate pairs after M or L are
// implicit line-tos. Z appends the first point again.
func ParsePath(d string) ([]models.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	var points []models.Point
	var cur models.Point

	for _, match := range pathCommand.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		coords := parseCoords(match[2])

		switch cmd {
		case "M", "L":
			for i := 0; i+1 < len(coords); i += 2 {
				cur = models.Point{X: coords[i], Y: coords[i+1]}
				points = append(points, cur)
			}
		case "m", "l":
			for i := 0; i+1 < len(coords); i += 2 {
				cur = models.Point{X: cur.X + coords[i], Y: cur.Y + coords[i+1]}
				points = append(points, cur)
			}
		case "H", "h":
			for _, c := range coords {
				if cmd == "H" {
					cur.X = c
				} else {
					cur.X += c
				}
				points = append(points, cur)
			}
		case "V", "v":
			for _, c := range coords {
				if cmd == "V" {
					cur.Y = c
				} else {
					cur.Y += c
				}
				points = append(points, cur)
			}
		case "Z", "z":
			if len(points) > 0 {
				cur = points[0]
				points = append(points, cur)
			}
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("path %q has no points", d)
	}
	return points, nil
}

func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, ",", " ")
	var coords []float64
	for _, part := range strings.Fields(s) {
		if val, err := strconv.ParseFloat(part, 64); err == nil {
			coords = append(coords, val)
		}
	}
	return coords
}
