// Package visits covers visit creation and the per-patient visit list the
// prescription workflow depends on.
package visits

import (
	"context"
	"fmt"
	"time"

	"github.com/maueyecare/clinic/internal/api"
)

// Visit belongs to exactly one patient.
type Visit struct {
	ID        int            `json:"id"`
	PatientID int            `json:"patient_id"`
	VisitDate time.Time      `json:"visit_date"`
	Issue     string         `json:"issue,omitempty"`
	Advice    string         `json:"advice,omitempty"`
	Metrics   map[string]any `json:"metrics,omitempty"`
}

// CreateRequest is the new-visit form payload.
type CreateRequest struct {
	PatientID int            `json:"patient_id"`
	Issue     string         `json:"issue,omitempty"`
	Advice    string         `json:"advice,omitempty"`
	Metrics   map[string]any `json:"metrics,omitempty"`
}

type createResponse struct {
	ID int `json:"id"`
}

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (int, error) {
	if req.PatientID <= 0 {
		return 0, fmt.Errorf("patient_id is required")
	}
	var res createResponse
	if err := s.c.Post(ctx, "/api/visits", req, &res); err != nil {
		return 0, err
	}
	return res.ID, nil
}

// ListByPatient fetches the visits scoped to one patient.
func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]Visit, error) {
	var rows []Visit
	path := fmt.Sprintf("/api/patients/%d/visits", patientID)
	if err := s.c.Get(ctx, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
