// Package lab reads the optical lab job queue shown on the dashboard alerts.
package lab

import (
	"context"
	"time"

	"github.com/maueyecare/clinic/internal/api"
)

// Job is one pending lab work order.
type Job struct {
	ID        int       `json:"id"`
	Status    string    `json:"status"`
	PatientID *int      `json:"patient_id,omitempty"`
	OrderID   *int      `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// Jobs lists pending lab jobs.
func (s *Service) Jobs(ctx context.Context) ([]Job, error) {
	var rows []Job
	if err := s.c.Get(ctx, "/api/lab/jobs", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
