package devstub

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maueyecare/clinic/internal/domain/dashboard"
	"github.com/maueyecare/clinic/internal/domain/lab"
)

func (s *Server) handleDashboardStats(c echo.Context) error {
	patients, today, rx := s.store.Counts()
	return c.JSON(http.StatusOK, dashboard.Stats{
		TotalPatients:      patients,
		TodayVisits:        today,
		TotalPrescriptions: rx,
	})
}

func (s *Server) handleDashboardOperations(c echo.Context) error {
	rows := s.store.TodayVisits()
	today := make([]dashboard.TodayVisit, 0, len(rows))
	for _, v := range rows {
		today = append(today, dashboard.TodayVisit{
			ID:        v.ID,
			PatientID: v.PatientID,
			Time:      v.VisitDate,
			Issue:     v.Issue,
			Advice:    v.Advice,
		})
	}
	return c.JSON(http.StatusOK, dashboard.Operations{Today: today})
}

func (s *Server) handleDashboardMarketing(c echo.Context) error {
	issues := s.store.TopIssues(5)
	if issues == nil {
		issues = []dashboard.TopIssue{}
	}
	return c.JSON(http.StatusOK, dashboard.Marketing{TopIssues: issues})
}

func (s *Server) handleDashboardPOS(c echo.Context) error {
	total, count := s.store.POSToday()
	return c.JSON(http.StatusOK, dashboard.POSSummary{
		TotalToday:  total,
		OrdersToday: count,
	})
}

func (s *Server) handleLabJobs(c echo.Context) error {
	jobs := s.store.LabJobs()
	if jobs == nil {
		jobs = []lab.Job{}
	}
	return c.JSON(http.StatusOK, jobs)
}

func (s *Server) handleSuggestions(c echo.Context) error {
	suggestions := []string{}

	patients, _, rx := s.store.Counts()
	if patients == 0 {
		suggestions = append(suggestions, "Register your first patient to unlock visit tracking.")
	}
	if rx == 0 && patients > 0 {
		suggestions = append(suggestions, "No prescriptions yet; create one from a patient's latest visit.")
	}
	for _, issue := range s.store.TopIssues(1) {
		if issue.Count >= 3 {
			suggestions = append(suggestions, "Frequent presenting issue: "+issue.Issue+". Consider stocking related products.")
		}
	}
	if total, _ := s.store.POSToday(); total == 0 {
		suggestions = append(suggestions, "No sales recorded today.")
	}

	return c.JSON(http.StatusOK, map[string][]string{"suggestions": suggestions})
}
