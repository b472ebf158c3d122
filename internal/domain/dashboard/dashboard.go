// Package dashboard aggregates the summary endpoints. The overview pulls its
// four summaries in parallel; each response lands in its own named slot, so
// arrival order never matters and one failure does not poison the others.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/maueyecare/clinic/internal/api"
)

// Stats is the headline KPI block.
type Stats struct {
	TotalPatients      int `json:"total_patients"`
	TodayVisits        int `json:"today_visits"`
	TotalPrescriptions int `json:"total_prescriptions"`
}

// TodayVisit is one row of today's operations feed.
type TodayVisit struct {
	ID        int       `json:"id"`
	PatientID int       `json:"patient_id"`
	Time      time.Time `json:"time"`
	Issue     string    `json:"issue,omitempty"`
	Advice    string    `json:"advice,omitempty"`
}

// Operations is today's visit schedule.
type Operations struct {
	Today []TodayVisit `json:"today"`
}

// TopIssue is one marketing aggregate row.
type TopIssue struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// Marketing groups the most common presenting issues.
type Marketing struct {
	TopIssues []TopIssue `json:"top_issues"`
}

// POSSummary is today's revenue block.
type POSSummary struct {
	TotalToday  float64 `json:"total_today"`
	OrdersToday int     `json:"orders_today"`
}

type Service struct {
	c *api.Client
}

func NewService(c *api.Client) *Service {
	return &Service{c: c}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.c.Get(ctx, "/api/dashboard/stats", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Service) Operations(ctx context.Context) (*Operations, error) {
	var ops Operations
	if err := s.c.Get(ctx, "/api/dashboard/operations", nil, &ops); err != nil {
		return nil, err
	}
	return &ops, nil
}

func (s *Service) Marketing(ctx context.Context) (*Marketing, error) {
	var m Marketing
	if err := s.c.Get(ctx, "/api/dashboard/marketing", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) POSSummary(ctx context.Context) (*POSSummary, error) {
	var ps POSSummary
	if err := s.c.Get(ctx, "/api/dashboard/pos-summary", nil, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

// Overview is the home screen's composite. Nil slots mean that summary
// failed; the screen renders what it has.
type Overview struct {
	Stats      *Stats
	Operations *Operations
	POSSummary *POSSummary
}

// Overview fetches the home screen summaries concurrently. The POS summary
// degrades to zeros when its endpoint fails, matching how the screen treats
// revenue as optional.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var (
		wg               sync.WaitGroup
		ov               Overview
		statsErr, opsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		ov.Stats, statsErr = s.Stats(ctx)
	}()
	go func() {
		defer wg.Done()
		ov.Operations, opsErr = s.Operations(ctx)
	}()
	go func() {
		defer wg.Done()
		ps, err := s.POSSummary(ctx)
		if err != nil {
			ps = &POSSummary{}
		}
		ov.POSSummary = ps
	}()
	wg.Wait()

	if statsErr != nil {
		return nil, statsErr
	}
	if opsErr != nil {
		return nil, opsErr
	}
	return &ov, nil
}
