package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/pkg/pagination"
)

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := api.NewClient(srv.URL, 5*time.Second, api.StaticToken("tok"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewService(c)
}

func TestFilter_Query(t *testing.T) {
	min, max := 1000.0, 9000.0
	inStock := true
	f := Filter{
		Search:     "aviator",
		Brand:      "RayBan",
		FrameShape: "round",
		Gender:     "unisex",
		MinPrice:   &min,
		MaxPrice:   &max,
		InStock:    &inStock,
	}

	q := f.Query(pagination.Params{Page: 2, PageSize: 20})
	want := map[string]string{
		"search":      "aviator",
		"brand":       "RayBan",
		"frame_shape": "round",
		"gender":      "unisex",
		"min_price":   "1000",
		"max_price":   "9000",
		"in_stock":    "true",
		"skip":        "20",
		"limit":       "20",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, q.Get(k), v)
		}
	}
	if q.Has("lens_type") {
		t.Error("unset predicates must not be sent")
	}
}

func TestListSpectacles_DecodesPage(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/inventory/spectacles" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"items": [{"id": 1, "name": "Aviator", "brand": "RayBan",
			"price": 8500, "frame_material": "metal", "frame_shape": "aviator",
			"lens_type": "single", "gender": "unisex", "age_group": "adult",
			"in_stock": true, "quantity": 4}], "total": 37, "page": 1, "page_size": 20}`))
	})

	page, err := svc.ListSpectacles(context.Background(), Filter{}, pagination.Params{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Brand != "RayBan" {
		t.Errorf("unexpected items %+v", page.Items)
	}
	if page.Total != 37 || !page.HasMore() {
		t.Errorf("unexpected paging %+v", page)
	}
}

func TestUploadCSV(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("multipart: %v", err)
		}
		_, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		if hdr.Filename != "stock.csv" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		w.Write([]byte(`{"imported": 12, "skipped": 1}`))
	})

	res, err := svc.UploadCSV(context.Background(), "stock.csv", strings.NewReader("name,price\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Imported != 12 || res.Skipped != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestUploadImage_CarriesSpectacleID(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if got := r.FormValue("spectacle_id"); got != "9" {
			t.Errorf("spectacle_id = %q, want 9", got)
		}
		w.Write([]byte(`{"imported": 1}`))
	})

	if _, err := svc.UploadImage(context.Background(), 9, "frame.jpg", strings.NewReader("jpeg")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
