package devstub

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/maueyecare/clinic/internal/domain/patients"
	"github.com/maueyecare/clinic/internal/domain/prescriptions"
	"github.com/maueyecare/clinic/internal/domain/visits"
	"github.com/maueyecare/clinic/pkg/pagination"
)

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

func intQuery(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) handleListPatients(c echo.Context) error {
	pg := pagination.Params{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", pagination.DefaultPageSize),
	}.Normalize()

	rows := s.store.SearchPatients(c.QueryParam("q"), pg.Offset(), pg.PageSize)
	if rows == nil {
		rows = []patients.Patient{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCreatePatient(c echo.Context) error {
	var req patients.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.FirstName == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "first_name is required")
	}
	id := s.store.CreatePatient(req)
	return c.JSON(http.StatusOK, map[string]int{"id": id})
}

func (s *Server) handlePatientVisits(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if !s.store.PatientExists(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	rows := s.store.VisitsByPatient(id)
	if rows == nil {
		rows = []visits.Visit{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCreateVisit(c echo.Context) error {
	var req visits.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.PatientID <= 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "patient_id is required")
	}
	id, ok := s.store.CreateVisit(req)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	return c.JSON(http.StatusOK, map[string]int{"id": id})
}

func (s *Server) handlePrescriptionsByPatient(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if !s.store.PatientExists(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	rows := s.store.PrescriptionsByPatient(id)
	if rows == nil {
		rows = []prescriptions.Prescription{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCreatePrescription(c echo.Context) error {
	var req prescriptions.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.PatientID <= 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "patient_id is required")
	}
	if req.VisitID != nil && !s.store.VisitBelongsTo(*req.VisitID, req.PatientID) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Visit does not belong to patient")
	}

	// Rendered lazily on download; the stored path mirrors the backend's
	// file layout.
	pdfPath := fmt.Sprintf("prescriptions/patient_%d.pdf", req.PatientID)
	id, ok := s.store.CreatePrescription(req, pdfPath)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":       id,
		"pdf_path": pdfPath,
	})
}

func (s *Server) handleExportPrescription(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if !s.store.PrescriptionExists(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Prescription not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "exported"})
}

func (s *Server) handlePrescriptionPDF(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if !s.store.PrescriptionExists(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Prescription not found")
	}
	return c.Blob(http.StatusOK, "application/pdf", stubPDF(id))
}

func (s *Server) handlePrescriptionQR(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	if !s.store.PrescriptionExists(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Prescription not found")
	}
	size := intQuery(c, "size", 150)
	if size < 50 {
		size = 50
	}
	if size > 500 {
		size = 500
	}
	return c.Blob(http.StatusOK, "image/png", stubPNG())
}

// stubPDF is a one-page placeholder document. Enough structure for viewers
// and content-type sniffing, nothing more.
func stubPDF(id int) []byte {
	body := fmt.Sprintf("%%PDF-1.4\n%% prescription %d\n%%%%EOF\n", id)
	return []byte(body)
}

// stubPNG is the 8-byte PNG signature plus an empty IEND chunk.
func stubPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44,
		0xAE, 0x42, 0x60, 0x82,
	}
}
