package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/persistence"
)

// ============================================================
// Plans
// ============================================================

// PlanRepository stores named plan documents.
type PlanRepository interface {
	Save(ctx context.Context, plan models.Plan) (models.Plan, error)
	Get(ctx context.Context, id string) (models.Plan, error)
	List(ctx context.Context) ([]models.PlanSummary, error)
	Delete(ctx context.Context, id string) error
}

// PlanService moves plans between workspaces, the repository and export files.
type PlanService struct {
	repo    PlanRepository
	exports *persistence.FileStorage
	now     func() time.Time
}

func NewPlanService(repo PlanRepository, exports *persistence.FileStorage) *PlanService {
	return &PlanService{repo: repo, exports: exports, now: time.Now}
}

// Save stores the workspace's current plan. An empty id saves a new plan.
func (s *PlanService) Save(ctx context.Context, ws *Workspace, id, name string) (models.Plan, error) {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	if strings.TrimSpace(name) == "" {
		name = "Untitled plan"
	}
	plan, err := s.repo.Save(ctx, models.Plan{ID: id, Name: name, Document: ws.Document(s.now().UTC())})
	if err != nil {
		return plan, err
	}
	log.Printf("[PLANS] saved plan %s (%s)", plan.ID, plan.Name)
	return plan, nil
}

// Load replaces the workspace's plan with the saved plan id and clears its history.
func (s *PlanService) Load(ctx context.Context, ws *Workspace, id string) (models.Plan, error) {
	plan, err := s.repo.Get(ctx, id)
	if err != nil {
		return plan, err
	}
	if err := ws.Load(plan.Document); err != nil {
		return plan, fmt.Errorf("load plan %s: %w", id, err)
	}
	log.Printf("[PLANS] loaded plan %s (%s)", plan.ID, plan.Name)
	return plan, nil
}

func (s *PlanService) Get(ctx context.Context, id string) (models.Plan, error) {
	return s.repo.Get(ctx, id)
}

func (s *PlanService) List(ctx context.Context) ([]models.PlanSummary, error) {
	return s.repo.List(ctx)
}

func (s *PlanService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Export encodes the workspace's current plan.
func (s *PlanService) Export(ws *Workspace, f persistence.Format) ([]byte, error) {
	return persistence.EncodePlan(ws.Document(s.now().UTC()), f)
}

// ExportSaved writes a saved plan to the export storage and returns the file path.
func (s *PlanService) ExportSaved(ctx context.Context, id string, f persistence.Format) (string, error) {
	if s.exports == nil {
		return "", fmt.Errorf("export storage is not configured")
	}
	plan, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := persistence.EncodePlan(plan.Document, f)
	if err != nil {
		return "", err
	}
	path, err := s.exports.WriteExport(plan.ID, f, data)
	if err != nil {
		return "", err
	}
	log.Printf("[PLANS] exported plan %s to %s", plan.ID, path)
	return path, nil
}

// Import decodes data and loads it into the workspace.
func (s *PlanService) Import(ws *Workspace, data []byte, f persistence.Format) (models.PlanDocument, error) {
	doc, err := persistence.DecodePlan(data, f)
	if err != nil {
		return doc, err
	}
	return doc, ws.Load(doc)
}
