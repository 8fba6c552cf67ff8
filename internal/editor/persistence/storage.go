package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage lays out exported plan files under a root directory.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) Root() string {
	return s.root
}

func (s *FileStorage) PlanDir(planID string) string {
	return filepath.Join(s.root, safeName(planID))
}

func (s *FileStorage) ExportPath(planID string, f Format) string {
	return filepath.Join(s.PlanDir(planID), "plan"+f.Extension())
}

func (s *FileStorage) EnsurePlanDir(planID string) error {
	if err := os.MkdirAll(s.PlanDir(planID), 0o755); err != nil {
		return fmt.Errorf("mkdir plan dir: %w", err)
	}
	return nil
}

// WriteExport stores data as the plan's export in format f and returns its path.
func (s *FileStorage) WriteExport(planID string, f Format, data []byte) (string, error) {
	if err := s.EnsurePlanDir(planID); err != nil {
		return "", err
	}
	path := s.ExportPath(planID, f)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// safeName keeps ids from escaping the storage root.
func safeName(id string) string {
	id = strings.TrimSpace(id)
	id = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
	if id == "" {
		return "_"
	}
	return id
}
