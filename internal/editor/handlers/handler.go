package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"floorplan-editor/internal/common/middleware"
	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/persistence"
	"floorplan-editor/internal/editor/service"
	"floorplan-editor/internal/editor/session"
)

// ============================================================
// Editor Handler
// ============================================================

type EditorHandler struct {
	sessions *session.Manager
	plans    *service.PlanService
}

func NewEditorHandler(sessions *session.Manager, plans *service.PlanService) *EditorHandler {
	return &EditorHandler{sessions: sessions, plans: plans}
}

// Register mounts the editor API on r.
func (h *EditorHandler) Register(r fiber.Router) {
	r.Post("/sessions", h.OpenSession)
	r.Get("/sessions", h.ListSessions)
	r.Delete("/sessions/:sid", h.CloseSession)

	s := r.Group("/sessions/:sid")
	s.Get("/state", h.GetState)
	s.Post("/commands", h.ExecuteCommand)

	s.Get("/rooms", h.ListRooms)
	s.Post("/rooms", h.AddRoom)
	s.Patch("/rooms/:id", h.UpdateRoom)
	s.Delete("/rooms/:id", h.DeleteRoom)

	s.Get("/doors", h.ListDoors)
	s.Post("/doors", h.AddDoor)
	s.Patch("/doors/:id", h.UpdateDoor)
	s.Delete("/doors/:id", h.DeleteDoor)

	s.Get("/groups", h.ListGroups)
	s.Post("/groups", h.GroupObjects)
	s.Patch("/groups/:id", h.UpdateGroup)
	s.Delete("/groups/:id", h.Ungroup)

	s.Post("/transform", h.TransformObjects)

	s.Post("/undo", h.Undo)
	s.Post("/redo", h.Redo)
	s.Get("/history", h.GetHistory)
	s.Delete("/history", h.ClearHistory)
	s.Put("/history/limit", h.SetHistoryLimit)

	s.Post("/plan/save", h.SavePlan)
	s.Post("/plan/load/:pid", h.LoadPlan)
	s.Post("/plan/reset", h.ResetPlan)
	s.Get("/plan/export", h.ExportPlan)
	s.Post("/plan/import", h.ImportPlan)
	s.Post("/import/svg", h.ImportSVG)

	r.Get("/plans", h.ListPlans)
	r.Delete("/plans/:pid", h.DeletePlan)
	r.Post("/plans/:pid/export", h.ExportSavedPlan)
}

// session resolves the :sid route parameter.
func (h *EditorHandler) session(c fiber.Ctx) (*session.Session, error) {
	s, err := h.sessions.Get(c.Params("sid"))
	if err != nil {
		return nil, err
	}
	c.Set(middleware.SessionHeader, s.ID)
	return s, nil
}

func decodeBody(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errBadRequest("empty body")
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return errBadRequest("invalid json: " + err.Error())
	}
	return nil
}

type badRequest string

func (e badRequest) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequest(msg) }

// writeError maps err onto an HTTP status and a JSON error body.
func writeError(c fiber.Ctx, err error) error {
	var (
		cmdErr *commands.Error
		bad    badRequest
	)
	switch {
	case errors.As(err, &bad):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, persistence.ErrPlanNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &cmdErr):
		body := fiber.Map{"error": err.Error(), "code": cmdErr.Code}
		if len(cmdErr.Errors) > 0 {
			body["errors"] = cmdErr.Errors
		}
		return c.Status(statusOf(cmdErr.Code, cmdErr.Message)).JSON(body)
	default:
		log.Printf("[EDITOR] internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// writeResult sends an executor Result with the status its code maps to.
func writeResult(c fiber.Ctx, res commands.Result, okStatus int) error {
	if res.Success {
		return c.Status(okStatus).JSON(res)
	}
	return c.Status(statusOf(res.Code, res.Error)).JSON(res)
}

func statusOf(code commands.Code, msg string) int {
	if msg == commands.ErrBusyMessage {
		return http.StatusConflict
	}
	return code.HTTPStatus()
}
