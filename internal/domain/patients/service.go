package patients

import (
	"context"
	"fmt"
	"strings"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/pkg/pagination"
)

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// List fetches patients matching the free-text query (name or phone,
// substring matched server-side). The query round-trips as the q parameter.
func (s *Service) List(ctx context.Context, q string, pg pagination.Params) ([]Patient, error) {
	query := pg.Query()
	query.Set("q", q)

	var rows []Patient
	if err := s.c.Get(ctx, "/api/patients", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create registers a patient and returns the server-assigned id. Names and
// phone are trimmed the way the add form trims them.
func (s *Service) Create(ctx context.Context, req CreateRequest) (int, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.FirstName == "" {
		return 0, fmt.Errorf("first_name is required")
	}

	var res CreateResponse
	if err := s.c.Post(ctx, "/api/patients", req, &res); err != nil {
		return 0, err
	}
	return res.ID, nil
}
