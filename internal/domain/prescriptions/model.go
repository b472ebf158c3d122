package prescriptions

import (
	"encoding/json"
	"sort"
	"time"
)

// RxEye holds the refractive values for one eye. The fields are free-form
// strings: the form accepts whatever was typed and range validation is
// deferred to the server, so no numeric parsing happens here.
type RxEye struct {
	Sphere   string `json:"Sphere"`
	Cylinder string `json:"Cylinder"`
	Axis     string `json:"Axis"`
	Add      string `json:"Add"`
}

// RxValues carries both eyes, OD right and OS left.
type RxValues struct {
	OD RxEye `json:"OD"`
	OS RxEye `json:"OS"`
}

// SpectacleLine is one spectacle row, addressed by slice index.
type SpectacleLine struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// MedicineRecord is the value half of a medicine line.
type MedicineRecord struct {
	Name     string  `json:"name"`
	Dosage   string  `json:"dosage"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// MedicineLine pairs the generated key with its record.
type MedicineLine struct {
	Key    string
	Record MedicineRecord
}

// MedicineLines is kept as an ordered list for deterministic rendering and
// diffing even though the wire format is a keyed map. Keys are generated from
// the creation timestamp, so ordering by key is creation order.
type MedicineLines []MedicineLine

func (m MedicineLines) MarshalJSON() ([]byte, error) {
	out := make(map[string]MedicineRecord, len(m))
	for _, line := range m {
		out[line.Key] = line.Record
	}
	return json.Marshal(out)
}

func (m *MedicineLines) UnmarshalJSON(data []byte) error {
	var raw map[string]MedicineRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	lines := make(MedicineLines, 0, len(raw))
	for k, v := range raw {
		lines = append(lines, MedicineLine{Key: k, Record: v})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key < lines[j].Key })
	*m = lines
	return nil
}

// Totals is advisory: the client computes it for display and submits it, but
// the server recomputes the stored value.
type Totals struct {
	Total float64 `json:"total"`
}

// Total sums price×quantity across both line collections.
func Total(spectacles []SpectacleLine, medicines MedicineLines) float64 {
	var sum float64
	for _, s := range spectacles {
		sum += s.Price * float64(s.Quantity)
	}
	for _, m := range medicines {
		sum += m.Record.Price * float64(m.Record.Quantity)
	}
	return sum
}

// CreateRequest is the composite submit payload.
type CreateRequest struct {
	PatientID  int             `json:"patient_id"`
	VisitID    *int            `json:"visit_id"`
	RxValues   RxValues        `json:"rx_values"`
	Spectacles []SpectacleLine `json:"spectacles"`
	Medicines  MedicineLines   `json:"medicines"`
	Totals     Totals          `json:"totals"`
}

// CreateResult is the create response; the PDF is rendered server-side.
type CreateResult struct {
	ID      int    `json:"id"`
	PDFPath string `json:"pdf_path,omitempty"`
}

// Prescription is a stored prescription as listed by the backend.
type Prescription struct {
	ID         int             `json:"id"`
	VisitID    *int            `json:"visit_id,omitempty"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
	PDFPath    string          `json:"pdf_path,omitempty"`
	RxValues   *RxValues       `json:"rx_values,omitempty"`
	Spectacles []SpectacleLine `json:"spectacles,omitempty"`
	Medicines  MedicineLines   `json:"medicines,omitempty"`
	Totals     *Totals         `json:"totals,omitempty"`
}
