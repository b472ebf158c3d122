package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/domain/patients"
	"github.com/maueyecare/clinic/internal/domain/visits"
	"github.com/maueyecare/clinic/internal/search"
	"github.com/maueyecare/clinic/internal/session"
	"github.com/maueyecare/clinic/pkg/pagination"
)

func (a *app) patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Search and register patients",
	}
	cmd.AddCommand(a.patientsListCmd(), a.patientsAddCmd(), a.patientsSearchCmd())
	return cmd
}

func (a *app) patientsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			q, _ := cmd.Flags().GetString("query")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("page-size")

			rows, err := patients.NewService(a.client).List(cmd.Context(), q, pagination.Params{Page: page, PageSize: size})
			if err != nil {
				return err
			}
			printPatients(cmd, rows)
			return nil
		},
	}
	cmd.Flags().String("query", "", "Name or phone substring")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", pagination.DefaultPageSize, "Rows per page")
	return cmd
}

func (a *app) patientsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), session.RoleAdmin, session.RoleDoctor, session.RoleStaff); err != nil {
				return err
			}
			req := patients.CreateRequest{}
			req.FirstName, _ = cmd.Flags().GetString("first-name")
			req.LastName, _ = cmd.Flags().GetString("last-name")
			req.Phone, _ = cmd.Flags().GetString("phone")
			req.Gender, _ = cmd.Flags().GetString("gender")
			if age, _ := cmd.Flags().GetInt("age"); age > 0 {
				req.Age = &age
			}

			id, err := patients.NewService(a.client).Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created patient %d\n", id)
			return nil
		},
	}
	cmd.Flags().String("first-name", "", "First name (required)")
	cmd.Flags().String("last-name", "", "Last name")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().Int("age", 0, "Age in years")
	cmd.Flags().String("gender", "", "Gender")
	_ = cmd.MarkFlagRequired("first-name")
	return cmd
}

// patientsSearchCmd is the typeahead loop: each line typed is debounced the
// way the search box debounces keystrokes, and only the settled query hits
// the backend.
func (a *app) patientsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Interactive patient search (type, results follow; empty line quits)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}

			svc := patients.NewService(a.client)
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var mu sync.Mutex
			deb := search.NewDebouncer(search.DefaultQuiescence, func(q string) {
				rows, err := svc.List(ctx, q, pagination.Params{})
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "search %q: %v\n", q, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "-- %d match(es) for %q --\n", len(rows), q)
				printPatients(cmd, rows)
			})
			defer deb.Stop()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprintln(cmd.OutOrStdout(), "Search patients (empty line to quit):")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					break
				}
				deb.Input(line)
			}
			deb.Flush()
			return scanner.Err()
		},
	}
}

func printPatients(cmd *cobra.Command, rows []patients.Patient) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-6s %-30s %-15s %-5s %s\n", "ID", "NAME", "PHONE", "AGE", "GENDER")
	for _, p := range rows {
		age := "-"
		if p.Age != nil {
			age = fmt.Sprintf("%d", *p.Age)
		}
		fmt.Fprintf(w, "%-6d %-30s %-15s %-5s %s\n", p.ID, p.DisplayName(), p.Phone, age, p.Gender)
	}
}

func (a *app) visitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Record and list patient visits",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a patient's visits",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			patientID, _ := cmd.Flags().GetInt("patient")
			rows, err := visits.NewService(a.client).ListByPatient(cmd.Context(), patientID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %-20s %-30s %s\n", "ID", "DATE", "ISSUE", "ADVICE")
			for _, v := range rows {
				fmt.Fprintf(w, "%-6d %-20s %-30s %s\n", v.ID, v.VisitDate.Format("2006-01-02 15:04"), v.Issue, v.Advice)
			}
			return nil
		},
	}
	listCmd.Flags().Int("patient", 0, "Patient id (required)")
	_ = listCmd.MarkFlagRequired("patient")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireRole(cmd.Context(), session.RoleAdmin, session.RoleDoctor, session.RoleStaff); err != nil {
				return err
			}
			req := visits.CreateRequest{}
			req.PatientID, _ = cmd.Flags().GetInt("patient")
			req.Issue, _ = cmd.Flags().GetString("issue")
			req.Advice, _ = cmd.Flags().GetString("advice")

			id, err := visits.NewService(a.client).Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created visit %d\n", id)
			return nil
		},
	}
	addCmd.Flags().Int("patient", 0, "Patient id (required)")
	addCmd.Flags().String("issue", "", "Presenting issue")
	addCmd.Flags().String("advice", "", "Advice given")
	_ = addCmd.MarkFlagRequired("patient")

	cmd.AddCommand(listCmd, addCmd)
	return cmd
}
