package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maueyecare/clinic/internal/api"
	"github.com/maueyecare/clinic/internal/domain/visits"
)

// State is the workflow's position in the composite form.
type State int

const (
	SelectingPatient State = iota
	SelectingVisit
	EditingRxAndLines
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case SelectingPatient:
		return "selecting_patient"
	case SelectingVisit:
		return "selecting_visit"
	case EditingRxAndLines:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNoPatient is returned by Submit when no patient has been selected.
var ErrNoPatient = errors.New("select a patient before submitting")

// genericFailure is shown when the server gave no message of its own.
const genericFailure = "Failed to create prescription"

// VisitLister is the dependent-fetch side of the workflow.
type VisitLister interface {
	ListByPatient(ctx context.Context, patientID int) ([]visits.Visit, error)
}

// Workflow drives the multi-entity prescription form: patient selection, the
// dependent visit fetch, RX values, spectacle and medicine line items, the
// reactively recomputed total, and submission. A single goroutine owns each
// workflow from the caller's side; the internal lock only protects against
// the async visit fetch landing concurrently.
type Workflow struct {
	mu sync.Mutex

	state     State
	patientID int
	visitID   int

	visitList []visits.Visit
	// visitGen invalidates in-flight visit fetches when the patient changes:
	// only the latest generation's result is committed.
	visitGen  uint64
	visitDone chan struct{}

	rx         RxValues
	spectacles []SpectacleLine
	medicines  MedicineLines

	failure string

	svc      *Service
	visits   VisitLister
	log      zerolog.Logger
	onReload func()
	now      func() time.Time
}

// NewWorkflow builds a fresh form. onReload is invoked after a successful
// submit so the parent can refetch its prescription list; it may be nil.
func NewWorkflow(svc *Service, visitLister VisitLister, log zerolog.Logger, onReload func()) *Workflow {
	done := make(chan struct{})
	close(done)
	return &Workflow{
		state:     SelectingPatient,
		svc:       svc,
		visits:    visitLister,
		log:       log,
		onReload:  onReload,
		now:       time.Now,
		visitDone: done,
	}
}

// State returns the current form state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Failure returns the message shown after a failed submit, empty otherwise.
func (w *Workflow) Failure() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

// SelectPatient picks the patient and starts the dependent visit fetch.
// Changing the patient resets the visit selection and clears the loaded
// visit list before the new one arrives; a fetch already in flight for the
// previous patient is discarded when it lands.
func (w *Workflow) SelectPatient(ctx context.Context, patientID int) {
	w.mu.Lock()
	w.patientID = patientID
	w.visitID = 0
	w.visitList = nil
	w.visitGen++
	gen := w.visitGen
	done := make(chan struct{})
	w.visitDone = done

	if patientID <= 0 {
		w.state = SelectingPatient
		w.mu.Unlock()
		close(done)
		return
	}
	w.state = SelectingVisit
	w.mu.Unlock()

	go w.loadVisits(ctx, gen, patientID, done)
}

func (w *Workflow) loadVisits(ctx context.Context, gen uint64, patientID int, done chan struct{}) {
	defer close(done)

	rows, err := w.visits.ListByPatient(ctx, patientID)
	if err != nil {
		w.log.Debug().Err(err).Int("patient_id", patientID).Msg("visit fetch failed")
		rows = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.visitGen != gen {
		return
	}
	w.visitList = rows
}

// WaitVisits blocks until the most recent visit fetch settles.
func (w *Workflow) WaitVisits(ctx context.Context) error {
	w.mu.Lock()
	done := w.visitDone
	w.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Visits returns the loaded visit list for the selected patient.
func (w *Workflow) Visits() []visits.Visit {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]visits.Visit, len(w.visitList))
	copy(out, w.visitList)
	return out
}

// SelectVisit attaches the prescription to a visit; zero skips the visit.
func (w *Workflow) SelectVisit(visitID int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.patientID <= 0 {
		return
	}
	w.visitID = visitID
	w.state = EditingRxAndLines
}

// SetRx replaces the RX values wholesale; values stay raw strings.
func (w *Workflow) SetRx(rx RxValues) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rx = rx
}

// AddSpectacle appends an empty spectacle line and returns its index.
func (w *Workflow) AddSpectacle() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spectacles = append(w.spectacles, SpectacleLine{Quantity: 1})
	return len(w.spectacles) - 1
}

// UpdateSpectacle replaces the line at index.
func (w *Workflow) UpdateSpectacle(index int, line SpectacleLine) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.spectacles) {
		return fmt.Errorf("spectacle index %d out of range", index)
	}
	w.spectacles[index] = line
	return nil
}

// RemoveSpectacle deletes the line at index, shifting later lines down.
func (w *Workflow) RemoveSpectacle(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.spectacles) {
		return fmt.Errorf("spectacle index %d out of range", index)
	}
	w.spectacles = append(w.spectacles[:index], w.spectacles[index+1:]...)
	return nil
}

// Spectacles returns a copy of the spectacle lines.
func (w *Workflow) Spectacles() []SpectacleLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]SpectacleLine, len(w.spectacles))
	copy(out, w.spectacles)
	return out
}

// AddMedicine appends an empty medicine line under a fresh key and returns
// the key. Keys derive from the creation timestamp; a suffix disambiguates
// two adds landing on the same millisecond.
func (w *Workflow) AddMedicine() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := fmt.Sprintf("medicine_%d", w.now().UnixMilli())
	for w.hasMedicine(key) {
		key += "_1"
	}
	w.medicines = append(w.medicines, MedicineLine{
		Key:    key,
		Record: MedicineRecord{Quantity: 1},
	})
	return key
}

func (w *Workflow) hasMedicine(key string) bool {
	for _, m := range w.medicines {
		if m.Key == key {
			return true
		}
	}
	return false
}

// UpdateMedicine replaces the record under key.
func (w *Workflow) UpdateMedicine(key string, rec MedicineRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.medicines {
		if w.medicines[i].Key == key {
			w.medicines[i].Record = rec
			return nil
		}
	}
	return fmt.Errorf("no medicine line %q", key)
}

// RemoveMedicine deletes the line under key.
func (w *Workflow) RemoveMedicine(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.medicines {
		if w.medicines[i].Key == key {
			w.medicines = append(w.medicines[:i], w.medicines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no medicine line %q", key)
}

// Medicines returns a copy of the medicine lines in creation order.
func (w *Workflow) Medicines() MedicineLines {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(MedicineLines, len(w.medicines))
	copy(out, w.medicines)
	return out
}

// Total recomputes the advisory grand total from the current lines.
func (w *Workflow) Total() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Total(w.spectacles, w.medicines)
}

// Submit posts the composite payload. On success the form resets for the
// next prescription and the parent reload hook fires. On failure the server
// message, when present, is kept verbatim for display.
func (w *Workflow) Submit(ctx context.Context) (*CreateResult, error) {
	w.mu.Lock()
	if w.patientID <= 0 {
		w.mu.Unlock()
		return nil, ErrNoPatient
	}

	req := CreateRequest{
		PatientID:  w.patientID,
		RxValues:   w.rx,
		Spectacles: append([]SpectacleLine(nil), w.spectacles...),
		Medicines:  append(MedicineLines(nil), w.medicines...),
		Totals:     Totals{Total: Total(w.spectacles, w.medicines)},
	}
	if w.visitID > 0 {
		id := w.visitID
		req.VisitID = &id
	}
	if req.Spectacles == nil {
		req.Spectacles = []SpectacleLine{}
	}
	if req.Medicines == nil {
		req.Medicines = MedicineLines{}
	}
	w.state = Submitting
	w.failure = ""
	w.mu.Unlock()

	res, err := w.svc.Create(ctx, req)

	w.mu.Lock()
	if err != nil {
		w.state = Failed
		w.failure = genericFailure
		var he *api.HTTPError
		if errors.As(err, &he) && he.Message != "" {
			w.failure = he.Message
		}
		w.mu.Unlock()
		return nil, err
	}

	w.resetLocked()
	w.state = Succeeded
	reload := w.onReload
	w.mu.Unlock()

	if reload != nil {
		reload()
	}
	return res, nil
}

// Reset returns the form to its initial state.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
	w.state = SelectingPatient
}

func (w *Workflow) resetLocked() {
	w.patientID = 0
	w.visitID = 0
	w.visitList = nil
	w.visitGen++
	w.rx = RxValues{}
	w.spectacles = nil
	w.medicines = nil
	w.failure = ""
}
