// Package inventory covers the spectacle catalog (read-mostly, filtered and
// paginated server-side) and the bulk upload endpoints.
package inventory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/pkg/pagination"
)

// Spectacle is one catalog item.
type Spectacle struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Brand          string         `json:"brand"`
	Price          float64        `json:"price"`
	ImageURL       string         `json:"image_url,omitempty"`
	FrameMaterial  string         `json:"frame_material"`
	FrameShape     string         `json:"frame_shape"`
	LensType       string         `json:"lens_type"`
	Gender         string         `json:"gender"`
	AgeGroup       string         `json:"age_group"`
	Description    string         `json:"description,omitempty"`
	Specifications map[string]any `json:"specifications,omitempty"`
	InStock        bool           `json:"in_stock"`
	Quantity       int            `json:"quantity"`
}

// Filter holds the catalog predicates, all applied server-side as query
// parameters. Zero values mean "no constraint".
type Filter struct {
	Search     string
	Brand      string
	FrameShape string
	LensType   string
	Gender     string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
}

// Query encodes the filter on top of the skip/limit paging values.
func (f Filter) Query(pg pagination.Params) url.Values {
	q := pg.SkipLimit()
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Brand != "" {
		q.Set("brand", f.Brand)
	}
	if f.FrameShape != "" {
		q.Set("frame_shape", f.FrameShape)
	}
	if f.LensType != "" {
		q.Set("lens_type", f.LensType)
	}
	if f.Gender != "" {
		q.Set("gender", f.Gender)
	}
	if f.MinPrice != nil {
		q.Set("min_price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.InStock != nil {
		q.Set("in_stock", strconv.FormatBool(*f.InStock))
	}
	return q
}

// UploadResult summarizes a bulk import.
type UploadResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message,omitempty"`
}

// AnalyzeResult carries the server-side image analysis suggestions; the
// analysis itself is entirely backend work.
type AnalyzeResult struct {
	Suggestions map[string]any `json:"suggestions"`
}

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// ListSpectacles fetches one catalog page under the given filter.
func (s *Service) ListSpectacles(ctx context.Context, f Filter, pg pagination.Params) (*pagination.Page[Spectacle], error) {
	var page pagination.Page[Spectacle]
	if err := s.c.Get(ctx, "/api/inventory/spectacles", f.Query(pg), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetSpectacle fetches one catalog item.
func (s *Service) GetSpectacle(ctx context.Context, id int) (*Spectacle, error) {
	var sp Spectacle
	path := fmt.Sprintf("/api/inventory/spectacles/%d", id)
	if err := s.c.Get(ctx, path, nil, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// UploadCSV imports catalog rows from a CSV stream.
func (s *Service) UploadCSV(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var res UploadResult
	if err := s.c.Upload(ctx, "/api/inventory/upload-csv", "file", filename, r, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Upload sends arbitrary inventory files for server-side ingestion.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	var res UploadResult
	if err := s.c.Upload(ctx, "/api/inventory/upload", "file", filename, r, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UploadImage attaches a product photo to a catalog item.
func (s *Service) UploadImage(ctx context.Context, spectacleID int, filename string, r io.Reader) (*UploadResult, error) {
	extra := map[string]string{"spectacle_id": strconv.Itoa(spectacleID)}
	var res UploadResult
	if err := s.c.Upload(ctx, "/api/inventory/upload-image", "file", filename, r, extra, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AnalyzeImage submits a photo for the backend's attribute analysis.
func (s *Service) AnalyzeImage(ctx context.Context, filename string, r io.Reader) (*AnalyzeResult, error) {
	var res AnalyzeResult
	if err := s.c.Upload(ctx, "/api/inventory/analyze-image", "file", filename, r, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
