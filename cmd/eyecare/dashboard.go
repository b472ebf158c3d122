package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/domain/dashboard"
	"github.com/maueyecare/clinic/internal/domain/insights"
	"github.com/maueyecare/clinic/internal/domain/lab"
)

func (a *app) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Clinic overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			ov, err := dashboard.NewService(a.client).Overview(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Patients: %d   Today's visits: %d   Prescriptions: %d\n",
				ov.Stats.TotalPatients, ov.Stats.TodayVisits, ov.Stats.TotalPrescriptions)
			fmt.Fprintf(w, "Revenue today: %.2f across %d order(s)\n",
				ov.POSSummary.TotalToday, ov.POSSummary.OrdersToday)

			if len(ov.Operations.Today) > 0 {
				fmt.Fprintln(w, "\nToday's schedule:")
				for _, v := range ov.Operations.Today {
					fmt.Fprintf(w, "  %-7s patient %-5d %s\n",
						v.Time.Format("15:04"), v.PatientID, v.Issue)
				}
			}
			return nil
		},
	}
	cmd.AddCommand(a.marketingCmd())
	return cmd
}

func (a *app) marketingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "marketing",
		Short: "Most common presenting issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			m, err := dashboard.NewService(a.client).Marketing(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-30s %s\n", "ISSUE", "COUNT")
			for _, row := range m.TopIssues {
				fmt.Fprintf(w, "%-30s %d\n", row.Issue, row.Count)
			}
			return nil
		},
	}
}

func (a *app) labCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lab",
		Short: "Pending optical lab jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			jobs, err := lab.NewService(a.client).Jobs(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %-10s %-8s %-8s %s\n", "ID", "STATUS", "PATIENT", "ORDER", "CREATED")
			for _, j := range jobs {
				patient, order := "-", "-"
				if j.PatientID != nil {
					patient = fmt.Sprintf("%d", *j.PatientID)
				}
				if j.OrderID != nil {
					order = fmt.Sprintf("%d", *j.OrderID)
				}
				fmt.Fprintf(w, "%-6d %-10s %-8s %-8s %s\n",
					j.ID, j.Status, patient, order, j.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func (a *app) insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Backend suggestions for the clinic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			rows, err := insights.NewService(a.client).Suggestions(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suggestions right now.")
				return nil
			}
			for _, s := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", s)
			}
			return nil
		},
	}
}
