package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"floorplan-editor/internal/common/middleware"
	"floorplan-editor/internal/editor/commands"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/persistence"
	"floorplan-editor/internal/editor/service"
	"floorplan-editor/internal/editor/session"
)

type testServer struct {
	t   *testing.T
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	db, err := persistence.OpenSQLite(filepath.Join(dir, "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := persistence.New(db)
	require.NoError(t, repo.Init(context.Background()))

	app := fiber.New()
	RegisterHealth(app, nil)
	RegisterDocs(app)
	h := NewEditorHandler(session.NewManager(), service.NewPlanService(repo, persistence.NewFileStorage(filepath.Join(dir, "exports"))))
	h.Register(app.Group("/api"))
	return &testServer{t: t, app: app}
}

func (s *testServer) do(method, path string, body any) (*http.Response, []byte) {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func (s *testServer) send(req *http.Request) (*http.Response, []byte) {
	s.t.Helper()
	resp, err := s.app.Test(req)
	require.NoError(s.t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	resp.Body.Close()
	return resp, data
}

func (s *testServer) openSession() string {
	s.t.Helper()
	resp, body := s.do(http.MethodPost, "/api/sessions", nil)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var sess session.Session
	require.NoError(s.t, json.Unmarshal(body, &sess))
	require.NotEmpty(s.t, sess.ID)
	return "/api/sessions/" + sess.ID
}

func squareJSON(x, y, size float64) map[string]any {
	return map[string]any{
		"geometry": models.NewPolygon(
			models.Point{X: x, Y: y}, models.Point{X: x + size, Y: y},
			models.Point{X: x + size, Y: y + size}, models.Point{X: x, Y: y + size},
		),
		"metadata": map[string]string{"name": "Room", "type": "room"},
	}
}

// historyBody mirrors service.HistoryView without the payload union.
type historyBody struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Undo    []struct {
		Kind commands.Kind `json:"kind"`
	} `json:"undo"`
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDocsDescribeEveryRoute(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(http.MethodGet, "/docs/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Paths map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(body, &doc))

	app := fiber.New()
	NewEditorHandler(session.NewManager(), nil).Register(app.Group("/api"))
	param := regexp.MustCompile(`:(\w+)`)
	methods := map[string]bool{"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true}
	for _, route := range app.GetRoutes(true) {
		if !methods[route.Method] {
			continue
		}
		path := param.ReplaceAllString(strings.TrimPrefix(route.Path, "/api"), "{${1}}")
		ops, ok := doc.Paths[path]
		require.True(t, ok, "undocumented path %s", path)
		require.Contains(t, ops, strings.ToLower(route.Method), "undocumented %s %s", route.Method, path)
	}

	resp, body = s.do(http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "swagger-ui")
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(http.MethodGet, "/api/sessions/nope/state", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoomEndpointsWithUndoRedo(t *testing.T) {
	s := newTestServer(t)
	base := s.openSession()

	resp, body := s.do(http.MethodPost, base+"/rooms", squareJSON(0, 0, 10))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.NotEmpty(t, resp.Header.Get(middleware.SessionHeader))
	room := decode[models.Room](t, body)
	require.NotEmpty(t, room.ID)

	resp, body = s.do(http.MethodPost, base+"/rooms", squareJSON(5, 5, 10))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errBody := decode[map[string]any](t, body)
	require.Equal(t, string(commands.CodeValidation), errBody["code"])
	require.Equal(t, []any{"Room overlaps with existing room " + room.ID}, errBody["errors"])

	resp, body = s.do(http.MethodPatch, base+"/rooms/"+room.ID, map[string]any{"name": "Kitchen"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, "Kitchen", decode[models.Room](t, body).Name)

	resp, _ = s.do(http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = s.do(http.MethodGet, base+"/rooms", nil)
	rooms := decode[[]models.Room](t, body)
	require.Len(t, rooms, 1)
	require.Equal(t, "Room", rooms[0].Name)

	resp, _ = s.do(http.MethodPost, base+"/redo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = s.do(http.MethodPost, base+"/redo", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, commands.CodeRedo, decode[commands.Result](t, body).Code)

	_, body = s.do(http.MethodGet, base+"/history", nil)
	hist := decode[historyBody](t, body)
	require.True(t, hist.CanUndo)
	require.Len(t, hist.Undo, 2)

	resp, _ = s.do(http.MethodDelete, base+"/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.do(http.MethodDelete, base+"/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenericCommandEndpoint(t *testing.T) {
	s := newTestServer(t)
	base := s.openSession()

	payload, err := json.Marshal(squareJSON(0, 0, 10))
	require.NoError(t, err)
	resp, body := s.do(http.MethodPost, base+"/commands", commands.Request{Type: commands.KindAddRoom, Payload: payload})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	res := decode[commands.Result](t, body)
	require.True(t, res.Success)
	require.NotEmpty(t, res.Data)

	resp, body = s.do(http.MethodPost, base+"/commands", `{"type":"ADD_ROOM","payload":{"geometry":{"type":"polygon"},"extra":1}}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, commands.CodeInvalidPayload, decode[commands.Result](t, body).Code)

	resp, _ = s.do(http.MethodPost, base+"/commands", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGroupsAndTransform(t *testing.T) {
	s := newTestServer(t)
	base := s.openSession()

	_, body := s.do(http.MethodPost, base+"/rooms", squareJSON(0, 0, 10))
	a := decode[models.Room](t, body).ID
	_, body = s.do(http.MethodPost, base+"/rooms", squareJSON(10, 0, 10))
	b := decode[models.Room](t, body).ID

	resp, body := s.do(http.MethodPost, base+"/groups", map[string]any{"objectIds": []string{a, b}, "metadata": map[string]string{"name": "Wing"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	group := decode[models.Group](t, body)
	require.Equal(t, []string{a, b}, group.ObjectIDs)

	resp, _ = s.do(http.MethodPost, base+"/groups", map[string]any{"objectIds": []string{a, b}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = s.do(http.MethodPost, base+"/transform", map[string]any{"objectIds": []string{a}, "transform": map[string]any{"rotation": 90}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	st := decode[models.State](t, body)
	require.Equal(t, 90.0, st.Rooms.Rooms[a].Transform.Rotation)

	resp, _ = s.do(http.MethodDelete, base+"/groups/"+group.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestPlanSaveLoadAndExport(t *testing.T) {
	s := newTestServer(t)
	base := s.openSession()

	s.do(http.MethodPost, base+"/rooms", squareJSON(0, 0, 10))
	resp, body := s.do(http.MethodPost, base+"/plan/save", map[string]string{"id": "p1", "name": "Ground"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, base+"/plan/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	exported := body

	resp, body = s.do(http.MethodGet, base+"/plan/export?format=svg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	require.Contains(t, string(body), "<svg")

	other := s.openSession()
	resp, body = s.do(http.MethodPost, other+"/plan/load/p1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	_, body = s.do(http.MethodGet, other+"/rooms", nil)
	require.Len(t, decode[[]models.Room](t, body), 1)

	resp, _ = s.do(http.MethodPost, other+"/plan/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, other+"/plan/export?format=svg", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, other+"/plan/import?format=yaml", bytes.NewReader(exported))
	resp, body = s.send(req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Len(t, decode[models.State](t, body).Rooms.Rooms, 1)

	_, body = s.do(http.MethodGet, "/api/plans", nil)
	require.Len(t, decode[[]models.PlanSummary](t, body), 1)

	resp, body = s.do(http.MethodPost, "/api/plans/p1/export?format=json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = s.do(http.MethodPost, other+"/plan/load/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, base+"/plan/export?format=xml", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, "/api/plans/p1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestImportSVGMultipart(t *testing.T) {
	s := newTestServer(t)
	base := s.openSession()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "plan.svg")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`<svg><rect id="Room_A" x="0" y="0" width="10" height="10"/><rect id="Door_1" x="4" y="-0.5" width="2" height="1"/></svg>`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, base+"/import/svg", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body := s.send(req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.Equal(t, float64(1), decode[map[string]any](t, body)["rooms"])

	_, body = s.do(http.MethodGet, base+"/history", nil)
	require.Len(t, decode[historyBody](t, body).Undo, 1)

	resp, _ = s.do(http.MethodPost, base+"/import/svg", "<svg>")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryLimitAndSessions(t *testing.T) {
	s := newTestServer(t)
	base := s.openSession()

	s.do(http.MethodPost, base+"/rooms", squareJSON(0, 0, 10))
	s.do(http.MethodPost, base+"/rooms", squareJSON(20, 0, 10))

	resp, body := s.do(http.MethodPut, base+"/history/limit", map[string]int{"maxHistorySize": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Len(t, decode[historyBody](t, body).Undo, 1)

	resp, _ = s.do(http.MethodPut, base+"/history/limit", map[string]int{"maxHistorySize": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, base+"/history", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = s.do(http.MethodGet, "/api/sessions", nil)
	require.Len(t, decode[[]session.Session](t, body), 1)

	resp, _ = s.do(http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.do(http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
