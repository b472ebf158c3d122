// Package devstub is an in-memory stand-in for the clinic backend. It serves
// the same REST surface the SDK talks to so the CLI and tests can run
// without a live deployment. Data lives in process memory and resets on
// restart.
package devstub

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maueyecare/clinic/internal/domain/dashboard"
	"github.com/maueyecare/clinic/internal/domain/inventory"
	"github.com/maueyecare/clinic/internal/domain/lab"
	"github.com/maueyecare/clinic/internal/domain/patients"
	"github.com/maueyecare/clinic/internal/domain/prescriptions"
	"github.com/maueyecare/clinic/internal/domain/visits"
	"github.com/maueyecare/clinic/internal/session"
)

// DefaultEmail and DefaultPassword are the bootstrap credentials.
const (
	DefaultEmail    = "doctor@maueyecare.dev"
	DefaultPassword = "password"
)

type user struct {
	ID       int
	Email    string
	Password string
	FullName string
	Role     string
}

type order struct {
	ID        int
	PatientID *int
	Total     float64
	Paid      float64
	CreatedAt time.Time
}

type storedPrescription struct {
	prescriptions.Prescription
	PatientID int
}

// Store holds the stub's entire dataset behind one mutex. Handler volume is
// a single operator clicking around, so contention is not a concern.
type Store struct {
	mu sync.Mutex

	users         []*user
	patients      []*patients.Patient
	visits        []*visits.Visit
	prescriptions []*storedPrescription
	spectacles    []*inventory.Spectacle
	orders        []*order
	labJobs       []lab.Job

	nextUser, nextPatient, nextVisit, nextRx, nextSpectacle, nextOrder int

	now func() time.Time
}

// NewStore returns a store pre-seeded with a small demo catalog. The default
// user is NOT seeded; that is what the bootstrap endpoint is for.
func NewStore() *Store {
	s := &Store{
		nextUser:      1,
		nextPatient:   1,
		nextVisit:     1,
		nextRx:        1,
		nextSpectacle: 1,
		nextOrder:     1,
		now:           time.Now,
	}
	s.seedSpectacles()
	return s
}

func (s *Store) seedSpectacles() {
	seed := []inventory.Spectacle{
		{Name: "Aviator Classic", Brand: "RayBan", Price: 4500, FrameMaterial: "metal", FrameShape: "aviator", LensType: "single_vision", Gender: "unisex", AgeGroup: "adult", InStock: true, Quantity: 12},
		{Name: "Round Acetate", Brand: "Lenskart", Price: 1800, FrameMaterial: "acetate", FrameShape: "round", LensType: "single_vision", Gender: "unisex", AgeGroup: "adult", InStock: true, Quantity: 30},
		{Name: "Kids Flex", Brand: "Titan", Price: 1200, FrameMaterial: "tr90", FrameShape: "rectangle", LensType: "single_vision", Gender: "unisex", AgeGroup: "kids", InStock: true, Quantity: 8},
		{Name: "Progressive Comfort", Brand: "Titan", Price: 6200, FrameMaterial: "titanium", FrameShape: "rectangle", LensType: "progressive", Gender: "men", AgeGroup: "adult", InStock: false, Quantity: 0},
	}
	for i := range seed {
		sp := seed[i]
		sp.ID = s.nextSpectacle
		s.nextSpectacle++
		s.spectacles = append(s.spectacles, &sp)
	}
}

// Bootstrap ensures the default doctor account exists. Returns true when it
// was created on this call.
func (s *Store) Bootstrap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUser(DefaultEmail) != nil {
		return false
	}
	s.users = append(s.users, &user{
		ID:       s.nextUser,
		Email:    DefaultEmail,
		Password: DefaultPassword,
		FullName: "Dr. Default",
		Role:     session.RoleDoctor,
	})
	s.nextUser++
	return true
}

func (s *Store) findUser(email string) *user {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// authenticate checks credentials and returns the matched user.
func (s *Store) authenticate(email, password string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUser(email)
	if u == nil || u.Password != password {
		return nil, false
	}
	return u, true
}

// userByID resolves the identity endpoint's lookup.
func (s *Store) userByID(id int) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// CreatePatient inserts and returns the assigned id.
func (s *Store) CreatePatient(req patients.CreateRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &patients.Patient{
		ID:        s.nextPatient,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Age:       req.Age,
		Gender:    req.Gender,
		CreatedAt: s.now(),
	}
	s.nextPatient++
	s.patients = append(s.patients, p)
	return p.ID
}

// SearchPatients substring-matches name and phone, case-insensitive for
// names. Empty query matches everyone.
func (s *Store) SearchPatients(q string, offset, limit int) []patients.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	q = strings.ToLower(strings.TrimSpace(q))
	var matched []patients.Patient
	for _, p := range s.patients {
		if q == "" ||
			strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), q) ||
			strings.Contains(p.Phone, q) {
			matched = append(matched, *p)
		}
	}
	return slicePage(matched, offset, limit)
}

// PatientExists reports whether the id is known.
func (s *Store) PatientExists(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientLocked(id) != nil
}

func (s *Store) patientLocked(id int) *patients.Patient {
	for _, p := range s.patients {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CreateVisit inserts a visit stamped with the current time.
func (s *Store) CreateVisit(req visits.CreateRequest) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patientLocked(req.PatientID) == nil {
		return 0, false
	}
	v := &visits.Visit{
		ID:        s.nextVisit,
		PatientID: req.PatientID,
		VisitDate: s.now(),
		Issue:     req.Issue,
		Advice:    req.Advice,
		Metrics:   req.Metrics,
	}
	s.nextVisit++
	s.visits = append(s.visits, v)
	return v.ID, true
}

// VisitsByPatient lists a patient's visits newest first.
func (s *Store) VisitsByPatient(patientID int) []visits.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []visits.Visit
	for _, v := range s.visits {
		if v.PatientID == patientID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return out
}

// VisitBelongsTo reports whether the visit exists under the given patient.
func (s *Store) VisitBelongsTo(visitID, patientID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.visits {
		if v.ID == visitID {
			return v.PatientID == patientID
		}
	}
	return false
}

// CreatePrescription stores the composite payload, recomputing the total
// from the lines rather than trusting the client's advisory figure.
func (s *Store) CreatePrescription(req prescriptions.CreateRequest, pdfPath string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patientLocked(req.PatientID) == nil {
		return 0, false
	}
	rx := req.RxValues
	sp := &storedPrescription{
		Prescription: prescriptions.Prescription{
			ID:         s.nextRx,
			VisitID:    req.VisitID,
			PDFPath:    pdfPath,
			RxValues:   &rx,
			Spectacles: req.Spectacles,
			Medicines:  req.Medicines,
			Totals:     &prescriptions.Totals{Total: prescriptions.Total(req.Spectacles, req.Medicines)},
		},
		PatientID: req.PatientID,
	}
	now := s.now()
	sp.CreatedAt = &now
	s.nextRx++
	s.prescriptions = append(s.prescriptions, sp)
	return sp.ID, true
}

// PrescriptionsByPatient lists newest first.
func (s *Store) PrescriptionsByPatient(patientID int) []prescriptions.Prescription {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []prescriptions.Prescription
	for _, p := range s.prescriptions {
		if p.PatientID == patientID {
			out = append(out, p.Prescription)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// PrescriptionExists reports whether the id is known.
func (s *Store) PrescriptionExists(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prescriptions {
		if p.ID == id {
			return true
		}
	}
	return false
}

// AddSpectacle inserts a catalog item and returns its id.
func (s *Store) AddSpectacle(sp inventory.Spectacle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp.ID = s.nextSpectacle
	s.nextSpectacle++
	sp.InStock = sp.Quantity > 0
	s.spectacles = append(s.spectacles, &sp)
	return sp.ID
}

// Spectacle resolves one catalog item.
func (s *Store) Spectacle(id int) (*inventory.Spectacle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.spectacles {
		if sp.ID == id {
			cp := *sp
			return &cp, true
		}
	}
	return nil, false
}

// SpectacleFilter mirrors the catalog query parameters.
type SpectacleFilter struct {
	Search     string
	Brand      string
	FrameShape string
	LensType   string
	Gender     string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
}

func (f SpectacleFilter) matches(sp *inventory.Spectacle) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(sp.Name), needle) &&
			!strings.Contains(strings.ToLower(sp.Brand), needle) {
			return false
		}
	}
	if f.Brand != "" && !strings.EqualFold(f.Brand, sp.Brand) {
		return false
	}
	if f.FrameShape != "" && !strings.EqualFold(f.FrameShape, sp.FrameShape) {
		return false
	}
	if f.LensType != "" && !strings.EqualFold(f.LensType, sp.LensType) {
		return false
	}
	if f.Gender != "" && !strings.EqualFold(f.Gender, sp.Gender) {
		return false
	}
	if f.MinPrice != nil && sp.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && sp.Price > *f.MaxPrice {
		return false
	}
	if f.InStock != nil && sp.InStock != *f.InStock {
		return false
	}
	return true
}

// ListSpectacles applies the filter then skip/limit, returning the page and
// the filtered total.
func (s *Store) ListSpectacles(f SpectacleFilter, skip, limit int) ([]inventory.Spectacle, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []inventory.Spectacle
	for _, sp := range s.spectacles {
		if f.matches(sp) {
			matched = append(matched, *sp)
		}
	}
	total := len(matched)
	return slicePage(matched, skip, limit), total
}

// RecordOrder stores a checkout result and queues a lab job when the order
// is tied to a patient.
func (s *Store) RecordOrder(patientID *int, total, paid float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &order{
		ID:        s.nextOrder,
		PatientID: patientID,
		Total:     total,
		Paid:      paid,
		CreatedAt: s.now(),
	}
	s.nextOrder++
	s.orders = append(s.orders, o)

	if patientID != nil {
		oid := o.ID
		s.labJobs = append(s.labJobs, lab.Job{
			ID:        len(s.labJobs) + 1,
			Status:    "pending",
			PatientID: patientID,
			OrderID:   &oid,
			CreatedAt: o.CreatedAt,
		})
	}
	return o.ID
}

// LabJobs lists the pending queue.
func (s *Store) LabJobs() []lab.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]lab.Job, len(s.labJobs))
	copy(out, s.labJobs)
	return out
}

// Counts returns the headline dashboard numbers.
func (s *Store) Counts() (patientCount, todayVisits, prescriptionCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := dayOf(s.now())
	for _, v := range s.visits {
		if dayOf(v.VisitDate).Equal(today) {
			todayVisits++
		}
	}
	return len(s.patients), todayVisits, len(s.prescriptions)
}

// TodayVisits returns today's schedule in arrival order.
func (s *Store) TodayVisits() []visits.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := dayOf(s.now())
	var out []visits.Visit
	for _, v := range s.visits {
		if dayOf(v.VisitDate).Equal(today) {
			out = append(out, *v)
		}
	}
	return out
}

// TopIssues aggregates presenting issues across all visits, most frequent
// first with ties broken alphabetically.
func (s *Store) TopIssues(limit int) []dashboard.TopIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	for _, v := range s.visits {
		if v.Issue != "" {
			counts[v.Issue]++
		}
	}
	rows := make([]dashboard.TopIssue, 0, len(counts))
	for issue, n := range counts {
		rows = append(rows, dashboard.TopIssue{Issue: issue, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Issue < rows[j].Issue
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// POSToday sums today's orders.
func (s *Store) POSToday() (total float64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := dayOf(s.now())
	for _, o := range s.orders {
		if dayOf(o.CreatedAt).Equal(today) {
			total += o.Total
			count++
		}
	}
	return total, count
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func slicePage[T any](rows []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
