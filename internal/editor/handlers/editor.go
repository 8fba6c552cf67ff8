package handlers

import (
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Sessions
// ============================================================

func (h *EditorHandler) OpenSession(c fiber.Ctx) error {
	s := h.sessions.Open()
	log.Printf("[EDITOR] session %s opened", s.ID)
	c.Set("Location", "/api/sessions/"+s.ID)
	return c.Status(http.StatusCreated).JSON(s)
}

func (h *EditorHandler) ListSessions(c fiber.Ctx) error {
	return c.JSON(h.sessions.List())
}

func (h *EditorHandler) CloseSession(c fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("sid")); err != nil {
		return writeError(c, err)
	}
	log.Printf("[EDITOR] session %s closed", c.Params("sid"))
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) GetState(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.State())
}

// ============================================================
// Commands
// ============================================================

// ExecuteCommand runs any command in its wire form, composites included,
// and answers with the executor's Result.
func (h *EditorHandler) ExecuteCommand(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req commands.Request
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}

	res := s.Workspace.ExecuteRequest(c.Context(), req)
	if !res.Success {
		log.Printf("[EDITOR] %s failed: %s", req.Type, res.Error)
	}
	return writeResult(c, res, http.StatusOK)
}

type addRoomRequest struct {
	commands.AddRoomPayload
	Options commands.Options `json:"options"`
}

type addDoorRequest struct {
	commands.AddDoorPayload
	Options commands.Options `json:"options"`
}

func (h *EditorHandler) ListRooms(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.Rooms.List())
}

func (h *EditorHandler) AddRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req addRoomRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}
	id, err := s.Workspace.Rooms.Add(c.Context(), req.AddRoomPayload, req.Options)
	if err != nil {
		return writeError(c, err)
	}
	room, _ := s.Workspace.Rooms.Get(id)
	return c.Status(http.StatusCreated).JSON(room)
}

func (h *EditorHandler) UpdateRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var changes models.RoomChanges
	if err := decodeBody(c, &changes); err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Rooms.Update(c.Context(), c.Params("id"), changes); err != nil {
		return writeError(c, err)
	}
	room, _ := s.Workspace.Rooms.Get(c.Params("id"))
	return c.JSON(room)
}

func (h *EditorHandler) DeleteRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Rooms.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) ListDoors(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.Doors.List())
}

func (h *EditorHandler) AddDoor(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req addDoorRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}
	id, err := s.Workspace.Doors.Add(c.Context(), req.AddDoorPayload, req.Options)
	if err != nil {
		return writeError(c, err)
	}
	door, _ := s.Workspace.Doors.Get(id)
	return c.Status(http.StatusCreated).JSON(door)
}

func (h *EditorHandler) UpdateDoor(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var changes models.DoorChanges
	if err := decodeBody(c, &changes); err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Doors.Update(c.Context(), c.Params("id"), changes); err != nil {
		return writeError(c, err)
	}
	door, _ := s.Workspace.Doors.Get(c.Params("id"))
	return c.JSON(door)
}

func (h *EditorHandler) DeleteDoor(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Doors.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Groups & transforms
// ============================================================

type groupRequest struct {
	ObjectIDs []string        `json:"objectIds"`
	Metadata  models.Metadata `json:"metadata"`
}

func (h *EditorHandler) ListGroups(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.Groups.List())
}

func (h *EditorHandler) GroupObjects(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req groupRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}
	id, err := s.Workspace.Groups.Group(c.Context(), req.ObjectIDs, req.Metadata)
	if err != nil {
		return writeError(c, err)
	}
	group, _ := s.Workspace.Groups.Get(id)
	return c.Status(http.StatusCreated).JSON(group)
}

func (h *EditorHandler) UpdateGroup(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var changes models.GroupChanges
	if err := decodeBody(c, &changes); err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Groups.Update(c.Context(), c.Params("id"), changes); err != nil {
		return writeError(c, err)
	}
	group, _ := s.Workspace.Groups.Get(c.Params("id"))
	return c.JSON(group)
}

func (h *EditorHandler) Ungroup(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Groups.Ungroup(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) TransformObjects(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req commands.TransformObjectsPayload
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Transform(c.Context(), req.ObjectIDs, req.Transform); err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.State())
}

// ============================================================
// History
// ============================================================

func (h *EditorHandler) Undo(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, s.Workspace.Executor().Undo(c.Context()), http.StatusOK)
}

func (h *EditorHandler) Redo(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return writeResult(c, s.Workspace.Executor().Redo(c.Context()), http.StatusOK)
}

func (h *EditorHandler) GetHistory(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.Workspace.History())
}

func (h *EditorHandler) ClearHistory(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	s.Workspace.ClearHistory()
	return c.SendStatus(http.StatusNoContent)
}

type historyLimitRequest struct {
	MaxHistorySize int `json:"maxHistorySize"`
}

func (h *EditorHandler) SetHistoryLimit(c fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return writeError(c, err)
	}
	var req historyLimitRequest
	if err := decodeBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if err := s.Workspace.Executor().SetMaxHistorySize(req.MaxHistorySize); err != nil {
		return writeError(c, errBadRequest(err.Error()))
	}
	return c.JSON(s.Workspace.History())
}
