package visits

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maueyecare/clinic/internal/api"
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

func TestCreate_PostsVisit(t *testing.T) {
	var got CreateRequest
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/visits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]int{"id": 5})
	})

	id, err := svc.Create(context.Background(), CreateRequest{
		PatientID: 3,
		Issue:     "blurred vision",
		Advice:    "rest",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 5 {
		t.Errorf("id = %d, want 5", id)
	}
	if got.PatientID != 3 || got.Issue != "blurred vision" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestCreate_RequiresPatient(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a patient")
	})
	if _, err := svc.Create(context.Background(), CreateRequest{Issue: "x"}); err == nil {
		t.Error("expected error for missing patient_id")
	}
}

func TestListByPatient_ScopesPath(t *testing.T) {
	var gotPath string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]Visit{{ID: 1, PatientID: 7}})
	})

	rows, err := svc.ListByPatient(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/patients/7/visits" {
		t.Errorf("path = %q", gotPath)
	}
	if len(rows) != 1 || rows[0].PatientID != 7 {
		t.Errorf("unexpected rows %+v", rows)
	}
}
