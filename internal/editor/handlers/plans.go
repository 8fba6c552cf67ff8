package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/importer"
	"floorplan-editor/internal/editor/persistence"
)

// ============================================================
// Plans
// ============================================================

type savePlanRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *EditorHandler) SavePlan(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req savePlanRequest
	if len(c.Body()) > 0 {
		if err := decodeBody(c, &req); err != nil {
			return writeError(c, err)
		}
	}
	plan, err := h.plans.Save(c.Context(), s.Workspace, req.ID, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(plan.Summary())
}

func (h *EditorHandler) LoadPlan(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	plan, err := h.plans.Load(c.Context(), s.Workspace, c.Params("pid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan.Summary())
}

func (h *EditorHandler) ResetPlan(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Reset(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.State())
}

// ExportPlan sends the session's current plan as JSON, YAML or SVG (?format=).
func (h *EditorHandler) ExportPlan(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	f, err := persistence.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, errBadRequest(err.Error()))
	}
	data, err := h.plans.Export(s.Workspace, f)
	if err != nil {
		return writeError(c, errBadRequest(err.Error()))
	}
	c.Set("Content-Type", f.ContentType())
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "plan"+f.Extension()))
	return c.Send(data)
}

// ImportPlan replaces the session's plan with the request body (?format=).
func (h *EditorHandler) ImportPlan(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	f, err := persistence.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, errBadRequest(err.Error()))
	}
	if len(c.Body()) == 0 {
		return writeError(c, errBadRequest("empty body"))
	}
	if _, err := h.plans.Import(s.Workspace, c.Body(), f); err != nil {
		return writeError(c, errBadRequest(err.Error()))
	}
	return c.JSON(s.Workspace.State())
}

func (h *EditorHandler) ListPlans(c fiber.Ctx) error {
	plans, err := h.plans.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plans)
}

func (h *EditorHandler) DeletePlan(c fiber.Ctx) error {
	if err := h.plans.Delete(c.Context(), c.Params("pid")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) ExportSavedPlan(c fiber.Ctx) error {
	f, err := persistence.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, errBadRequest(err.Error()))
	}
	path, err := h.plans.ExportSaved(c.Context(), c.Params("pid"), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"path": path})
}

// ============================================================
// SVG import
// ============================================================

// ImportSVG accepts the SVG as a multipart "file" field or as the raw body.
// The whole import is one undo step.
func (h *EditorHandler) ImportSVG(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}

	data, err := svgBody(c)
	if err != nil {
		return writeError(c, err)
	}
	opts := importer.Options{}
	if v := c.Query("skipValidation"); v != "" {
		if opts.SkipValidation, err = strconv.ParseBool(v); err != nil {
			return writeError(c, errBadRequest("skipValidation must be a boolean"))
		}
	}

	log.Printf("[IMPORT] session %s: importing svg, %d bytes", s.ID, len(data))
	sum, err := importer.Import(c.Context(), s.Workspace, bytes.NewReader(data), opts)
	if err != nil {
		log.Printf("[IMPORT] session %s: import failed: %v", s.ID, err)
		if commands.CodeOf(err) == "" {
			err = errBadRequest(err.Error())
		}
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(sum)
}

func svgBody(c fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		if len(c.Body()) == 0 {
			return nil, errBadRequest("svg required as multipart file or request body")
		}
		return c.Body(), nil
	}
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
