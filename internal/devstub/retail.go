package devstub

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/maueyecare/clinic/internal/domain/inventory"
	"github.com/maueyecare/clinic/internal/domain/pos"
	"github.com/maueyecare/clinic/pkg/pagination"
)

func (s *Server) handleCheckout(c echo.Context) error {
	var req pos.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if len(req.Lines) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "order has no lines")
	}
	if req.PatientID != nil && !s.store.PatientExists(*req.PatientID) {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}

	totals := pos.Compute(req.Lines, req.DiscountAmount)
	var paid float64
	for _, p := range req.Payments {
		paid += p.Amount
	}

	orderID := s.store.RecordOrder(req.PatientID, totals.Total, paid)
	return c.JSON(http.StatusOK, pos.CheckoutResult{
		OrderID: orderID,
		Total:   totals.Total,
		Paid:    paid,
	})
}

func floatQuery(c echo.Context, name string) *float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func boolQuery(c echo.Context, name string) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (s *Server) handleListSpectacles(c echo.Context) error {
	f := SpectacleFilter{
		Search:     c.QueryParam("search"),
		Brand:      c.QueryParam("brand"),
		FrameShape: c.QueryParam("frame_shape"),
		LensType:   c.QueryParam("lens_type"),
		Gender:     c.QueryParam("gender"),
		MinPrice:   floatQuery(c, "min_price"),
		MaxPrice:   floatQuery(c, "max_price"),
		InStock:    boolQuery(c, "in_stock"),
	}
	skip := intQuery(c, "skip", 0)
	limit := intQuery(c, "limit", pagination.DefaultPageSize)
	if limit <= 0 || limit > pagination.MaxPageSize {
		limit = pagination.DefaultPageSize
	}

	items, total := s.store.ListSpectacles(f, skip, limit)
	if items == nil {
		items = []inventory.Spectacle{}
	}
	return c.JSON(http.StatusOK, pagination.Page[inventory.Spectacle]{
		Items:    items,
		Total:    total,
		PageNum:  skip/limit + 1,
		PageSize: limit,
	})
}

func (s *Server) handleGetSpectacle(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}
	sp, ok := s.store.Spectacle(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Spectacle not found")
	}
	return c.JSON(http.StatusOK, sp)
}

func formFile(c echo.Context) (io.ReadCloser, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusUnprocessableEntity, "file field is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	return f, fh.Filename, nil
}

// handleUploadCSV imports catalog rows. Expected columns are name, brand,
// price, frame_material, frame_shape, lens_type, gender, age_group,
// quantity; rows missing a name or carrying an unparseable price are
// skipped, not fatal.
func (s *Server) handleUploadCSV(c echo.Context) error {
	f, _, err := formFile(c)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "empty or unreadable CSV")
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	imported, skipped := 0, 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		name := field(row, "name")
		price, perr := strconv.ParseFloat(field(row, "price"), 64)
		if name == "" || perr != nil {
			skipped++
			continue
		}
		qty, _ := strconv.Atoi(field(row, "quantity"))
		s.store.AddSpectacle(inventory.Spectacle{
			Name:          name,
			Brand:         field(row, "brand"),
			Price:         price,
			FrameMaterial: field(row, "frame_material"),
			FrameShape:    field(row, "frame_shape"),
			LensType:      field(row, "lens_type"),
			Gender:        field(row, "gender"),
			AgeGroup:      field(row, "age_group"),
			Quantity:      qty,
		})
		imported++
	}

	return c.JSON(http.StatusOK, inventory.UploadResult{
		Imported: imported,
		Skipped:  skipped,
		Message:  "import complete",
	})
}

// handleUpload accepts arbitrary inventory files. The stub just drains and
// acknowledges them.
func (s *Server) handleUpload(c echo.Context) error {
	f, _, err := formFile(c)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inventory.UploadResult{Message: "received"})
}

func (s *Server) handleUploadImage(c echo.Context) error {
	id, err := strconv.Atoi(c.FormValue("spectacle_id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "spectacle_id is required")
	}
	if _, ok := s.store.Spectacle(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Spectacle not found")
	}
	f, _, err := formFile(c)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inventory.UploadResult{Imported: 1, Message: "image attached"})
}

func (s *Server) handleAnalyzeImage(c echo.Context) error {
	f, filename, err := formFile(c)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return err
	}
	// Canned analysis; the real backend runs an attribute model here.
	return c.JSON(http.StatusOK, map[string]any{
		"suggestions": map[string]any{
			"source_file": filename,
			"frame_shape": "rectangle",
			"material":    "acetate",
		},
	})
}
