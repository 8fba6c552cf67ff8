package persistence

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"floorplan-editor/internal/editor/models"
)

var ErrPlanNotFound = errors.New("plan not found")

//go:embed migrations/*.sql
var migrations embed.FS

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the embedded migrations in file name order.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Save inserts the plan, or replaces it when the id already exists. The
// creation time of an existing plan is kept.
func (r *Repository) Save(ctx context.Context, plan models.Plan) (models.Plan, error) {
	data, err := json.Marshal(plan.Document)
	if err != nil {
		return plan, fmt.Errorf("encode plan: %w", err)
	}

	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO plans (id, name, document, version, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            document = excluded.document,
            version = excluded.version,
            updated_at = excluded.updated_at
    `, plan.ID, plan.Name, string(data), plan.Document.Version, formatTime(plan.CreatedAt), formatTime(plan.UpdatedAt))
	if err != nil {
		return plan, fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return r.Get(ctx, plan.ID)
}

func (r *Repository) Get(ctx context.Context, id string) (models.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, document, created_at, updated_at
        FROM plans
        WHERE id = ?
    `, id)

	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
		}
		return models.Plan{}, err
	}
	return plan, nil
}

// List returns every saved plan, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]models.PlanSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, document, created_at, updated_at
        FROM plans
    `)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].UpdatedAt.After(plans[j].UpdatedAt)
	})
	out := make([]models.PlanSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Summary())
	}
	return out, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plan %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (models.Plan, error) {
	var (
		plan             models.Plan
		document         string
		created, updated string
	)
	if err := s.Scan(&plan.ID, &plan.Name, &document, &created, &updated); err != nil {
		return plan, err
	}
	if err := json.Unmarshal([]byte(document), &plan.Document); err != nil {
		return plan, fmt.Errorf("decode plan %s: %w", plan.ID, err)
	}

	var err error
	if plan.CreatedAt, err = parseTime(created); err != nil {
		return plan, err
	}
	if plan.UpdatedAt, err = parseTime(updated); err != nil {
		return plan, err
	}
	return plan, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	files, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, f := range files {
		data, err := migrations.ReadFile("migrations/" + f.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.Name(), err)
		}
	}
	return nil
}

// OpenSQLite opens the sqlite database at dbPath, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
