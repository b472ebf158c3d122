package patients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func TestList_RoundTripsQueryAndPaging(t *testing.T) {
	var gotQuery string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]Patient{
			{ID: 1, FirstName: "John", LastName: "Doe", Phone: "1234567890"},
		})
	})

	rows, err := svc.List(context.Background(), "John", pagination.Params{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].DisplayName() != "John Doe" || rows[0].Phone != "1234567890" {
		t.Errorf("unexpected rows: %+v", rows)
	}

	q, _ := http.NewRequest(http.MethodGet, "/?"+gotQuery, nil)
	values := q.URL.Query()
	if values.Get("q") != "John" || values.Get("page") != "1" || values.Get("page_size") != "50" {
		t.Errorf("unexpected query string %q", gotQuery)
	}
}

func TestCreate_TrimsAndReturnsID(t *testing.T) {
	var got CreateRequest
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(CreateResponse{ID: 42})
	})

	id, err := svc.Create(context.Background(), CreateRequest{
		FirstName: "  John ",
		LastName:  "Doe  ",
		Phone:     " 1234567890 ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
	if got.FirstName != "John" || got.LastName != "Doe" || got.Phone != "1234567890" {
		t.Errorf("payload not trimmed: %+v", got)
	}
	if got.Age != nil {
		t.Errorf("unset age must be omitted, got %v", *got.Age)
	}
}

func TestCreate_RequiresFirstName(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty first name")
	})

	if _, err := svc.Create(context.Background(), CreateRequest{FirstName: "   "}); err == nil {
		t.Error("expected error for missing first name")
	}
}

func TestDisplayName_NoLastName(t *testing.T) {
	p := &Patient{FirstName: "Asha"}
	if p.DisplayName() != "Asha" {
		t.Errorf("got %q", p.DisplayName())
	}
}
