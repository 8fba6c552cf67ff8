package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/render"
)

// ============================================================
// Plan codec
// ============================================================

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatSVG is export only; SVG drawings come back in through the importer.
	FormatSVG Format = "svg"
)

// ParseFormat accepts json, yaml, yml and svg in any case. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported plan format %q", s)
}

func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatSVG:
		return ".svg"
	}
	return ".json"
}

func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/json"
}

func EncodePlan(doc models.PlanDocument, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatSVG:
		return render.SVG(doc)
	}
	return nil, fmt.Errorf("unsupported plan format %q", f)
}

// DecodePlan parses a plan document and rejects versions newer than PlanVersion.
// A missing version is read as the current one.
func DecodePlan(data []byte, f Format) (models.PlanDocument, error) {
	var doc models.PlanDocument
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatSVG:
		return doc, fmt.Errorf("svg plans are read with the svg importer")
	default:
		return doc, fmt.Errorf("unsupported plan format %q", f)
	}

	if doc.Version == 0 {
		doc.Version = models.PlanVersion
	}
	if doc.Version > models.PlanVersion {
		return doc, fmt.Errorf("unsupported plan version %d", doc.Version)
	}
	return doc, nil
}
