package models

import "time"

// Plan is a named, saved PlanDocument.
type Plan struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Document  PlanDocument `json:"document"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// PlanSummary is the listing view of a saved plan.
type PlanSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rooms     int       `json:"rooms"`
	Doors     int       `json:"doors"`
	Groups    int       `json:"groups"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Plan) Summary() PlanSummary {
	return PlanSummary{
		ID:        p.ID,
		Name:      p.Name,
		Rooms:     len(p.Document.Rooms),
		Doors:     len(p.Document.Doors),
		Groups:    len(p.Document.Groups),
		UpdatedAt: p.UpdatedAt,
	}
}
