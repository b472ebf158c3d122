package prescriptions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/internal/domain/visits"
)

// gatedVisits records the patient ids it was asked about and can hold a
// response until released.
type gatedVisits struct {
	mu    sync.Mutex
	calls []int
	rows  map[int][]visits.Visit
	gates map[int]chan struct{}
}

func newGatedVisits() *gatedVisits {
	return &gatedVisits{
		rows:  make(map[int][]visits.Visit),
		gates: make(map[int]chan struct{}),
	}
}

func (g *gatedVisits) gate(patientID int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[patientID] = ch
	return ch
}

func (g *gatedVisits) ListByPatient(ctx context.Context, patientID int) ([]visits.Visit, error) {
	g.mu.Lock()
	g.calls = append(g.calls, patientID)
	gate := g.gates[patientID]
	rows := g.rows[patientID]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rows, nil
}

func (g *gatedVisits) called() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, len(g.calls))
	copy(out, g.calls)
	return out
}

func newTestService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := api.NewClient(srv.URL, 5*time.Second, api.StaticToken("tok"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewService(c)
}

func waitVisits(t *testing.T, w *Workflow) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.WaitVisits(ctx); err != nil {
		t.Fatalf("wait visits: %v", err)
	}
}

func TestWorkflow_SelectPatientLoadsScopedVisits(t *testing.T) {
	lister := newGatedVisits()
	lister.rows[1] = []visits.Visit{{ID: 10, PatientID: 1}}

	w := NewWorkflow(nil, lister, zerolog.Nop(), nil)
	w.SelectPatient(context.Background(), 1)
	waitVisits(t, w)

	if got := lister.called(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected one fetch scoped to patient 1, got %v", got)
	}
	if vs := w.Visits(); len(vs) != 1 || vs[0].ID != 10 {
		t.Errorf("unexpected visit list %+v", vs)
	}
	if w.State() != SelectingVisit {
		t.Errorf("state = %v, want SelectingVisit", w.State())
	}
}

func TestWorkflow_ChangingPatientClearsVisitsAndDiscardsStale(t *testing.T) {
	lister := newGatedVisits()
	lister.rows[1] = []visits.Visit{{ID: 10, PatientID: 1}}
	lister.rows[2] = []visits.Visit{{ID: 20, PatientID: 2}}
	gate1 := lister.gate(1)

	w := NewWorkflow(nil, lister, zerolog.Nop(), nil)

	// Patient 1's fetch hangs on the gate.
	w.SelectPatient(context.Background(), 1)

	// Switch to patient 2: the old list must be gone immediately.
	w.SelectPatient(context.Background(), 2)
	if vs := w.Visits(); len(vs) != 0 {
		t.Errorf("visit list not cleared on patient change: %+v", vs)
	}
	waitVisits(t, w)

	// Release the stale fetch; its result must not land.
	close(gate1)
	time.Sleep(50 * time.Millisecond)

	vs := w.Visits()
	if len(vs) != 1 || vs[0].PatientID != 2 {
		t.Errorf("expected patient 2's visits only, got %+v", vs)
	}
}

func TestWorkflow_SubmitRequiresPatient(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a patient")
	})
	w := NewWorkflow(svc, newGatedVisits(), zerolog.Nop(), nil)

	if _, err := w.Submit(context.Background()); err != ErrNoPatient {
		t.Errorf("err = %v, want ErrNoPatient", err)
	}
}

func TestWorkflow_SubmitSuccessResetsAndSignalsReload(t *testing.T) {
	var got CreateRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(CreateResult{ID: 99, PDFPath: "/tmp/rx.pdf"})
	})

	var reloaded bool
	lister := newGatedVisits()
	lister.rows[1] = []visits.Visit{{ID: 5, PatientID: 1}}

	w := NewWorkflow(svc, lister, zerolog.Nop(), func() { reloaded = true })
	w.SelectPatient(context.Background(), 1)
	waitVisits(t, w)
	w.SelectVisit(5)

	w.SetRx(RxValues{OD: RxEye{Sphere: "-2.00"}})
	i := w.AddSpectacle()
	w.UpdateSpectacle(i, SpectacleLine{Name: "Aviator", Price: 8500, Quantity: 1})
	key := w.AddMedicine()
	w.UpdateMedicine(key, MedicineRecord{Name: "Tears", Price: 150, Quantity: 1})

	if w.Total() != 8650 {
		t.Fatalf("total = %v, want 8650", w.Total())
	}

	res, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.ID != 99 {
		t.Errorf("result id = %d, want 99", res.ID)
	}
	if got.PatientID != 1 || got.VisitID == nil || *got.VisitID != 5 {
		t.Errorf("unexpected payload %+v", got)
	}
	if got.Totals.Total != 8650 {
		t.Errorf("submitted total = %v, want 8650", got.Totals.Total)
	}

	if w.State() != Succeeded {
		t.Errorf("state = %v, want Succeeded", w.State())
	}
	if !reloaded {
		t.Error("expected reload signal after success")
	}
	if len(w.Spectacles()) != 0 || len(w.Medicines()) != 0 || w.Total() != 0 {
		t.Error("expected form reset after success")
	}
}

func TestWorkflow_SubmitFailureSurfacesServerMessage(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "visit does not belong to patient"}`))
	})

	w := NewWorkflow(svc, newGatedVisits(), zerolog.Nop(), nil)
	w.SelectPatient(context.Background(), 1)
	waitVisits(t, w)

	if _, err := w.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}
	if w.State() != Failed {
		t.Errorf("state = %v, want Failed", w.State())
	}
	if w.Failure() != "visit does not belong to patient" {
		t.Errorf("failure = %q, want server message verbatim", w.Failure())
	}
}

func TestWorkflow_SubmitFailureGenericMessage(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	w := NewWorkflow(svc, newGatedVisits(), zerolog.Nop(), nil)
	w.SelectPatient(context.Background(), 1)
	waitVisits(t, w)

	w.Submit(context.Background())
	if w.Failure() != genericFailure {
		t.Errorf("failure = %q, want generic message", w.Failure())
	}
}

func TestWorkflow_MedicineKeysUniqueWithinSameMillisecond(t *testing.T) {
	w := NewWorkflow(nil, newGatedVisits(), zerolog.Nop(), nil)
	fixed := time.UnixMilli(1700000000000)
	w.now = func() time.Time { return fixed }

	k1 := w.AddMedicine()
	k2 := w.AddMedicine()
	if k1 == k2 {
		t.Errorf("expected distinct keys, both %q", k1)
	}
	if len(w.Medicines()) != 2 {
		t.Errorf("expected 2 lines, got %d", len(w.Medicines()))
	}
}

func TestWorkflow_SpectacleLineEditing(t *testing.T) {
	w := NewWorkflow(nil, newGatedVisits(), zerolog.Nop(), nil)

	i0 := w.AddSpectacle()
	i1 := w.AddSpectacle()
	w.UpdateSpectacle(i0, SpectacleLine{Name: "A", Price: 10, Quantity: 1})
	w.UpdateSpectacle(i1, SpectacleLine{Name: "B", Price: 20, Quantity: 1})

	if err := w.RemoveSpectacle(i0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	lines := w.Spectacles()
	if len(lines) != 1 || lines[0].Name != "B" {
		t.Errorf("unexpected lines %+v", lines)
	}

	if err := w.UpdateSpectacle(5, SpectacleLine{}); err == nil {
		t.Error("expected out-of-range error")
	}
	if err := w.RemoveSpectacle(-1); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestWorkflow_RemoveMedicineByKey(t *testing.T) {
	w := NewWorkflow(nil, newGatedVisits(), zerolog.Nop(), nil)
	k := w.AddMedicine()

	if err := w.RemoveMedicine(k); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(w.Medicines()) != 0 {
		t.Error("expected empty medicine list")
	}
	if err := w.RemoveMedicine("missing"); err == nil {
		t.Error("expected error for unknown key")
	}
}
