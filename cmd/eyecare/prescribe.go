package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/domain/prescriptions"
	"github.com/maueyecare/clinic/internal/domain/visits"
	"github.com/maueyecare/clinic/internal/session"
)

func (a *app) prescriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prescriptions",
		Aliases: []string{"rx"},
		Short:   "Create and retrieve prescriptions",
	}
	cmd.AddCommand(
		a.rxListCmd(),
		a.rxNewCmd(),
		a.rxExportCmd(),
		a.rxPDFCmd(),
		a.rxQRCmd(),
	)
	return cmd
}

func (a *app) rxListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a patient's prescriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			patientID, _ := cmd.Flags().GetInt("patient")
			rows, err := prescriptions.NewService(a.client).ListByPatient(cmd.Context(), patientID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %-20s %-10s %s\n", "ID", "CREATED", "TOTAL", "PDF")
			for _, p := range rows {
				created, total := "-", "-"
				if p.CreatedAt != nil {
					created = p.CreatedAt.Format("2006-01-02 15:04")
				}
				if p.Totals != nil {
					total = fmt.Sprintf("%.2f", p.Totals.Total)
				}
				fmt.Fprintf(w, "%-6d %-20s %-10s %s\n", p.ID, created, total, p.PDFPath)
			}
			return nil
		},
	}
	cmd.Flags().Int("patient", 0, "Patient id (required)")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

// rxNewCmd drives the full prescription workflow: select patient, pick the
// visit, set refraction values, add line items, submit.
func (a *app) rxNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a prescription",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), session.RoleAdmin, session.RoleDoctor); err != nil {
				return err
			}
			ctx := cmd.Context()

			patientID, _ := cmd.Flags().GetInt("patient")
			visitID, _ := cmd.Flags().GetInt("visit")
			latestVisit, _ := cmd.Flags().GetBool("latest-visit")

			svc := prescriptions.NewService(a.client)
			visitSvc := visits.NewService(a.client)
			wf := prescriptions.NewWorkflow(svc, visitSvc, a.log, nil)

			wf.SelectPatient(ctx, patientID)
			if err := wf.WaitVisits(ctx); err != nil {
				return fmt.Errorf("loading visits: %w", err)
			}

			loaded := wf.Visits()
			switch {
			case visitID > 0:
				wf.SelectVisit(visitID)
			case latestVisit && len(loaded) > 0:
				wf.SelectVisit(loaded[0].ID)
			}

			rx, err := rxFromFlags(cmd)
			if err != nil {
				return err
			}
			wf.SetRx(rx)

			specs, _ := cmd.Flags().GetStringArray("spectacle")
			for _, raw := range specs {
				line, err := parseSpectacleFlag(raw)
				if err != nil {
					return err
				}
				idx := wf.AddSpectacle()
				if err := wf.UpdateSpectacle(idx, line); err != nil {
					return err
				}
			}

			meds, _ := cmd.Flags().GetStringArray("medicine")
			for _, raw := range meds {
				rec, err := parseMedicineFlag(raw)
				if err != nil {
					return err
				}
				key := wf.AddMedicine()
				if err := wf.UpdateMedicine(key, rec); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Line total: %.2f\n", wf.Total())

			res, err := wf.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created prescription %d", res.ID)
			if res.PDFPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (pdf: %s)", res.PDFPath)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().Int("patient", 0, "Patient id (required)")
	cmd.Flags().Int("visit", 0, "Visit id to attach")
	cmd.Flags().Bool("latest-visit", false, "Attach the patient's most recent visit")
	cmd.Flags().String("od", "", "Right eye as sphere/cylinder/axis/add")
	cmd.Flags().String("os", "", "Left eye as sphere/cylinder/axis/add")
	cmd.Flags().StringArray("spectacle", nil, "Spectacle line as name:price:qty (repeatable)")
	cmd.Flags().StringArray("medicine", nil, "Medicine line as name:dosage:qty:price (repeatable)")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func rxFromFlags(cmd *cobra.Command) (prescriptions.RxValues, error) {
	var rx prescriptions.RxValues
	od, _ := cmd.Flags().GetString("od")
	osFlag, _ := cmd.Flags().GetString("os")

	var err error
	if rx.OD, err = parseEye(od); err != nil {
		return rx, fmt.Errorf("--od: %w", err)
	}
	if rx.OS, err = parseEye(osFlag); err != nil {
		return rx, fmt.Errorf("--os: %w", err)
	}
	return rx, nil
}

// parseEye splits sphere/cylinder/axis/add; trailing parts may be omitted.
// Values stay strings end to end, matching how the form submits them.
func parseEye(raw string) (prescriptions.RxEye, error) {
	var eye prescriptions.RxEye
	if raw == "" {
		return eye, nil
	}
	parts := strings.Split(raw, "/")
	if len(parts) > 4 {
		return eye, fmt.Errorf("expected sphere/cylinder/axis/add, got %q", raw)
	}
	fields := []*string{&eye.Sphere, &eye.Cylinder, &eye.Axis, &eye.Add}
	for i, p := range parts {
		*fields[i] = strings.TrimSpace(p)
	}
	return eye, nil
}

func parseSpectacleFlag(raw string) (prescriptions.SpectacleLine, error) {
	var line prescriptions.SpectacleLine
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return line, fmt.Errorf("spectacle %q: expected name:price:qty", raw)
	}
	price, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return line, fmt.Errorf("spectacle %q: bad price: %w", raw, err)
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil {
		return line, fmt.Errorf("spectacle %q: bad quantity: %w", raw, err)
	}
	line.Name = strings.TrimSpace(parts[0])
	line.Price = price
	line.Quantity = qty
	return line, nil
}

func parseMedicineFlag(raw string) (prescriptions.MedicineRecord, error) {
	var rec prescriptions.MedicineRecord
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return rec, fmt.Errorf("medicine %q: expected name:dosage:qty:price", raw)
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil {
		return rec, fmt.Errorf("medicine %q: bad quantity: %w", raw, err)
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return rec, fmt.Errorf("medicine %q: bad price: %w", raw, err)
	}
	rec.Name = strings.TrimSpace(parts[0])
	rec.Dosage = strings.TrimSpace(parts[1])
	rec.Quantity = qty
	rec.Price = price
	return rec, nil
}

func (a *app) rxExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-render a prescription's stored document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, _ := cmd.Flags().GetInt("id")
			if err := prescriptions.NewService(a.client).Export(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exported.")
			return nil
		},
	}
	cmd.Flags().Int("id", 0, "Prescription id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) rxPDFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Download a prescription PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, _ := cmd.Flags().GetInt("id")
			data, err := prescriptions.NewService(a.client).DownloadPDF(cmd.Context(), id)
			if err != nil {
				return err
			}
			path := filepath.Join(a.cfg.DownloadDir, fmt.Sprintf("prescription_%d.pdf", id))
			if err := writeDownload(path, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))
			return nil
		},
	}
	cmd.Flags().Int("id", 0, "Prescription id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) rxQRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Download a prescription QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, _ := cmd.Flags().GetInt("id")
			size, _ := cmd.Flags().GetInt("size")
			data, err := prescriptions.NewService(a.client).DownloadQR(cmd.Context(), id, size)
			if err != nil {
				return err
			}
			path := filepath.Join(a.cfg.DownloadDir, fmt.Sprintf("prescription_%d_qr.png", id))
			if err := writeDownload(path, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))
			return nil
		},
	}
	cmd.Flags().Int("id", 0, "Prescription id (required)")
	cmd.Flags().Int("size", 150, "QR size in pixels (50-500)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func writeDownload(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
