package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/domain/pos"
	"github.com/maueyecare/clinic/internal/session"
)

func (a *app) posCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pos",
		Short: "Point-of-sale checkout",
	}
	cmd.AddCommand(a.posCheckoutCmd())
	return cmd
}

func (a *app) posCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit a retail order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), session.RoleAdmin, session.RoleDoctor, session.RoleStaff); err != nil {
				return err
			}

			req := pos.CheckoutRequest{}
			if pid, _ := cmd.Flags().GetInt("patient"); pid > 0 {
				req.PatientID = &pid
			}
			req.DiscountAmount, _ = cmd.Flags().GetFloat64("discount")

			lines, _ := cmd.Flags().GetStringArray("line")
			for _, raw := range lines {
				line, err := parseLineFlag(raw)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, line)
			}

			pays, _ := cmd.Flags().GetStringArray("pay")
			for _, raw := range pays {
				p, err := parsePayFlag(raw)
				if err != nil {
					return err
				}
				req.Payments = append(req.Payments, p)
			}

			totals := pos.Compute(req.Lines, req.DiscountAmount)
			fmt.Fprintf(cmd.OutOrStdout(), "Subtotal %.2f  GST %.2f  Total %.2f\n",
				totals.Subtotal, totals.GST, totals.Total)

			res, err := pos.NewService(a.client).Checkout(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %d confirmed: total %.2f, paid %.2f\n",
				res.OrderID, res.Total, res.Paid)
			return nil
		},
	}
	cmd.Flags().Int("patient", 0, "Patient id for loyalty credit")
	cmd.Flags().Float64("discount", 0, "Flat discount amount")
	cmd.Flags().StringArray("line", nil, "Cart line as product:qty:price[:gst_rate] (repeatable)")
	cmd.Flags().StringArray("pay", nil, "Tender as method:amount (repeatable)")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

func parseLineFlag(raw string) (pos.Line, error) {
	var line pos.Line
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return line, fmt.Errorf("line %q: expected product:qty:price[:gst_rate]", raw)
	}
	var err error
	if line.ProductID, err = strconv.Atoi(parts[0]); err != nil {
		return line, fmt.Errorf("line %q: bad product id: %w", raw, err)
	}
	if line.Quantity, err = strconv.Atoi(parts[1]); err != nil {
		return line, fmt.Errorf("line %q: bad quantity: %w", raw, err)
	}
	if line.Price, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return line, fmt.Errorf("line %q: bad price: %w", raw, err)
	}
	if len(parts) == 4 {
		if line.GSTRate, err = strconv.ParseFloat(parts[3], 64); err != nil {
			return line, fmt.Errorf("line %q: bad gst rate: %w", raw, err)
		}
	}
	return line, nil
}

func parsePayFlag(raw string) (pos.Payment, error) {
	var p pos.Payment
	method, amount, ok := strings.Cut(raw, ":")
	if !ok {
		return p, fmt.Errorf("pay %q: expected method:amount", raw)
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return p, fmt.Errorf("pay %q: bad amount: %w", raw, err)
	}
	p.Method = strings.TrimSpace(method)
	p.Amount = v
	return p, nil
}
