// Package pos drives the point-of-sale checkout: retail lines, split
// payments, and the advisory client-side totals. The server recomputes
// everything; nothing here reconciles payments against the total.
package pos

import (
	"context"
	"fmt"

	"github.com/maueyecare/clinic/internal/api"
)

// Line is one cart row.
type Line struct {
	ProductID    int     `json:"product_id"`
	BatchID      *int    `json:"batch_id,omitempty"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	GSTRate      float64 `json:"gst_rate"`
	DiscountRate float64 `json:"discount_rate"`
}

// Payment is one tender row. Methods in use are cash, card, and upi.
type Payment struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// CheckoutRequest is the checkout payload. PatientID is optional; the
// backend credits loyalty points when it is set.
type CheckoutRequest struct {
	PatientID      *int      `json:"patient_id,omitempty"`
	Lines          []Line    `json:"lines"`
	Payments       []Payment `json:"payments"`
	DiscountAmount float64   `json:"discount_amount"`
}

// CheckoutResult is the server's word on the order.
type CheckoutResult struct {
	OrderID int     `json:"order_id"`
	Total   float64 `json:"total"`
	Paid    float64 `json:"paid"`
}

// Totals is the advisory local computation shown before checkout.
type Totals struct {
	Subtotal float64
	GST      float64
	Total    float64
}

// Compute derives subtotal, GST, and total from the cart. GST applies per
// line at its own rate; the flat discount comes off at the end.
func Compute(lines []Line, discount float64) Totals {
	var t Totals
	for _, ln := range lines {
		lineTotal := ln.Price * float64(ln.Quantity)
		t.Subtotal += lineTotal
		t.GST += lineTotal * ln.GSTRate / 100
	}
	t.Total = t.Subtotal + t.GST - discount
	return t
}

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

// Checkout submits the order. Payments with zero or negative amounts are
// dropped, matching how the form only adds tenders that were filled in.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("checkout needs at least one line")
	}

	kept := req.Payments[:0:0]
	for _, p := range req.Payments {
		if p.Amount > 0 {
			kept = append(kept, p)
		}
	}
	req.Payments = kept
	if req.Payments == nil {
		req.Payments = []Payment{}
	}

	var res CheckoutResult
	if err := s.c.Post(ctx, "/api/pos/checkout", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
