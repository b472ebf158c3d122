package prescriptions

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/maueyecare/clinic/internal/api"
)

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// ListByPatient fetches a patient's prescriptions, newest first per the
// backend's ordering.
func (s *Service) ListByPatient(ctx context.Context, patientID int) ([]Prescription, error) {
	var rows []Prescription
	path := fmt.Sprintf("/api/prescriptions/patient/%d", patientID)
	if err := s.c.Get(ctx, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create submits the composite prescription payload.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.PatientID <= 0 {
		return nil, fmt.Errorf("patient_id is required")
	}
	var res CreateResult
	if err := s.c.Post(ctx, "/api/prescriptions", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Export asks the backend to re-render the stored document.
func (s *Service) Export(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/prescriptions/%d/export", id)
	return s.c.Post(ctx, path, nil, nil)
}

// DownloadPDF fetches the rendered PDF bytes.
func (s *Service) DownloadPDF(ctx context.Context, id int) ([]byte, error) {
	path := fmt.Sprintf("/api/prescriptions/%d/pdf", id)
	data, _, err := s.c.Download(ctx, path, nil)
	return data, err
}

// DownloadQR fetches the prescription QR stamp as a PNG. Size is clamped
// server-side to 50-500 px.
func (s *Service) DownloadQR(ctx context.Context, id, size int) ([]byte, error) {
	q := url.Values{}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	path := fmt.Sprintf("/api/prescriptions/%d/qr.png", id)
	data, _, err := s.c.Download(ctx, path, q)
	return data, err
}
