package planner

import (
	"sort"
	"time"

	"mesoforge/mesocycle-app/internal/domain"
)

// DayCell is one calendar day in the projected grid. Workout is nil on rest
// days.
type DayCell struct {
	Date    time.Time           `json:"date"`
	Day     string              `json:"day"`
	Workout *domain.WorkoutPlan `json:"workout,omitempty"`
}

// Project expands a plan's sparse workout dates into a dense Monday-aligned
// grid: one cell per day from the first scheduled workout's week-start
// through the last's week-end. Pure function; an empty plan projects to an
// empty grid. Re-run it after any mutation that can change a workout's date.
func Project(plan *domain.MesocyclePlan) []DayCell {
	sessions := collectSessions(plan)
	if len(sessions) == 0 {
		return nil
	}

	// Keys go through MidnightUTC: raw time.Time equality also compares the
	// location, and session dates may arrive in a non-UTC representation.
	byDate := make(map[time.Time]*domain.WorkoutPlan, len(sessions))
	for i := range sessions {
		byDate[domain.MidnightUTC(sessions[i].Date)] = &sessions[i]
	}

	first := domain.WeekStart(sessions[0].Date)
	last := domain.WeekStart(sessions[len(sessions)-1].Date).AddDate(0, 0, 6)

	var cells []DayCell
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		cells = append(cells, DayCell{
			Date:    d,
			Day:     domain.DayName(d),
			Workout: byDate[d],
		})
	}
	return cells
}

// collectSessions copies every scheduled session, sorted by date, so the
// returned cells never alias the caller's plan.
func collectSessions(plan *domain.MesocyclePlan) []domain.WorkoutPlan {
	cloned := plan.Clone()
	var sessions []domain.WorkoutPlan
	for _, week := range cloned.Weeks {
		sessions = append(sessions, week.Sessions...)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
	return sessions
}
