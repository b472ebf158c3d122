// Package insights reads the backend's suggestion feed.
package insights

import (
	"context"

	"github.com/maueyecare/clinic/internal/api"
)

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// Suggestions returns the idea list, empty when the backend has none.
func (s *Service) Suggestions(ctx context.Context) ([]string, error) {
	var res suggestionsResponse
	if err := s.c.Get(ctx, "/api/insights/suggestions", nil, &res); err != nil {
		return nil, err
	}
	return res.Suggestions, nil
}
