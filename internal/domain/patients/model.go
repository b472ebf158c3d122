package patients

import "time"

// Patient as the backend returns it. Identity is the server-assigned id.
type Patient struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName renders "First Last", dropping the optional last name cleanly.
func (p *Patient) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// CreateRequest is the add-patient form payload. Age is optional and omitted
// when unset rather than sent as zero.
type CreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// CreateResponse carries the new server-assigned id.
type CreateResponse struct {
	ID int `json:"id"`
}
