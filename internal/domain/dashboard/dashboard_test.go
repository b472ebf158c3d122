package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
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

func overviewHandler(delayStats time.Duration, posStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/stats":
			time.Sleep(delayStats)
			w.Write([]byte(`{"total_patients": 120, "today_visits": 7, "total_prescriptions": 85}`))
		case "/api/dashboard/operations":
			w.Write([]byte(`{"today": [{"id": 1, "patient_id": 3, "time": "2025-01-15T10:30:00Z", "issue": "dry eyes"}]}`))
		case "/api/dashboard/pos-summary":
			if posStatus != 0 {
				w.WriteHeader(posStatus)
				return
			}
			w.Write([]byte(`{"total_today": 12500, "orders_today": 4}`))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestOverview_ParallelFetchIntoNamedSlots(t *testing.T) {
	// Stats resolves last; each summary must still land in its own slot.
	svc := newService(t, overviewHandler(50*time.Millisecond, 0))

	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.Stats == nil || ov.Stats.TotalPatients != 120 {
		t.Errorf("stats slot = %+v", ov.Stats)
	}
	if ov.Operations == nil || len(ov.Operations.Today) != 1 || ov.Operations.Today[0].Issue != "dry eyes" {
		t.Errorf("operations slot = %+v", ov.Operations)
	}
	if ov.POSSummary == nil || ov.POSSummary.OrdersToday != 4 {
		t.Errorf("pos slot = %+v", ov.POSSummary)
	}
}

func TestOverview_POSFailureDegradesToZeros(t *testing.T) {
	svc := newService(t, overviewHandler(0, http.StatusServiceUnavailable))

	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.POSSummary == nil || ov.POSSummary.TotalToday != 0 || ov.POSSummary.OrdersToday != 0 {
		t.Errorf("expected zeroed pos summary, got %+v", ov.POSSummary)
	}
	if ov.Stats == nil {
		t.Error("other slots must survive a pos failure")
	}
}

func TestOverview_StatsFailurePropagates(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/dashboard/stats" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		overviewHandler(0, 0)(w, r)
	})

	if _, err := svc.Overview(context.Background()); err == nil {
		t.Error("expected stats failure to propagate")
	}
}

func TestMarketing(t *testing.T) {
	var calls int32
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/api/dashboard/marketing" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"top_issues": [{"issue": "headache", "count": 9}]}`))
	})

	m, err := svc.Marketing(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.TopIssues) != 1 || m.TopIssues[0].Count != 9 {
		t.Errorf("unexpected marketing %+v", m)
	}
	if calls != 1 {
		t.Errorf("expected one request, got %d", calls)
	}
}
