package pos

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

func TestCompute(t *testing.T) {
	lines := []Line{
		{Price: 1000, Quantity: 2, GSTRate: 18},
		{Price: 150, Quantity: 1, GSTRate: 0},
	}

	got := Compute(lines, 50)
	if got.Subtotal != 2150 {
		t.Errorf("subtotal = %v, want 2150", got.Subtotal)
	}
	if got.GST != 360 {
		t.Errorf("gst = %v, want 360", got.GST)
	}
	if got.Total != 2460 {
		t.Errorf("total = %v, want 2460", got.Total)
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	got := Compute(nil, 0)
	if got.Subtotal != 0 || got.GST != 0 || got.Total != 0 {
		t.Errorf("unexpected totals %+v", got)
	}
}

func TestCheckout_DropsEmptyPayments(t *testing.T) {
	var got CheckoutRequest
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(CheckoutResult{OrderID: 1, Total: 1180, Paid: 1180})
	})

	res, err := svc.Checkout(context.Background(), CheckoutRequest{
		Lines: []Line{{ProductID: 2, Quantity: 1, Price: 1000, GSTRate: 18}},
		Payments: []Payment{
			{Method: "cash", Amount: 1180},
			{Method: "card", Amount: 0},
			{Method: "upi", Amount: -5},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderID != 1 || res.Paid != 1180 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(got.Payments) != 1 || got.Payments[0].Method != "cash" {
		t.Errorf("expected only filled tenders, got %+v", got.Payments)
	}
}

func TestCheckout_RequiresLines(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty cart")
	})
	if _, err := svc.Checkout(context.Background(), CheckoutRequest{}); err == nil {
		t.Error("expected error for empty cart")
	}
}
