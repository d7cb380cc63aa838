package models

import "time"

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RetentionStart is the closing date, else the first document date, else the
// opening date.
func RetentionStart(c *CaseFile) time.Time {
	switch {
	case c.ClosingDate != nil:
		return Day(*c.ClosingDate)
	case c.FirstDocumentDate != nil:
		return Day(*c.FirstDocumentDate)
	default:
		return Day(c.OpeningDate)
	}
}

// ComputeDeadlines adds the effective retention years to start. Years are
// calendar years; Feb 29 plus a non-leap year lands on Mar 1.
func ComputeDeadlines(start time.Time, r Retention) Deadlines {
	start = Day(start)
	mgmt := start.AddDate(r.ManagementYears, 0, 0)
	return Deadlines{
		RetentionStart: start,
		ManagementEnd:  mgmt,
		CentralEnd:     mgmt.AddDate(r.CentralYears, 0, 0),
	}
}

// PhaseInput is everything RecomputePhase depends on.
type PhaseInput struct {
	Status      AdministrativeStatus
	Today       time.Time
	Deadlines   Deadlines
	Closed      bool
	Disposition FinalDisposition
}

// RecomputePhase derives the lifecycle phase. It is pure: the stored phase
// plays no part.
func RecomputePhase(in PhaseInput) Phase {
	today := Day(in.Today)
	switch {
	case in.Status == StatusActive:
		return PhaseActive
	case !today.Before(in.Deadlines.CentralEnd) && in.Disposition == DispositionDestruction:
		return PhaseDestructible
	case !today.Before(in.Deadlines.CentralEnd):
		return PhaseHistorical
	case !today.Before(in.Deadlines.ManagementEnd):
		return PhaseInCentral
	case in.Closed:
		return PhaseInManagement
	default:
		return PhaseActive
	}
}

// StatusForPhase applies the phase-driven status changes. InCentral forces
// closed_in_central and the end phases force their terminal statuses; the
// other phases leave the status as the operator set it.
func StatusForPhase(phase Phase, current AdministrativeStatus) AdministrativeStatus {
	switch phase {
	case PhaseInCentral:
		return StatusClosedInCentral
	case PhaseHistorical:
		return StatusHistorical
	case PhaseDestructible:
		return StatusDestructible
	default:
		return current
	}
}

// Evaluate runs stages two to four of the retention batch for one case file
// and reports whether anything differs from what is stored.
func Evaluate(c *CaseFile, r Retention, today time.Time) (Lifecycle, bool) {
	deadlines := ComputeDeadlines(RetentionStart(c), r)
	phase := RecomputePhase(PhaseInput{
		Status:      c.Status,
		Today:       today,
		Deadlines:   deadlines,
		Closed:      c.ClosingDate != nil,
		Disposition: r.Disposition,
	})
	next := Lifecycle{
		Deadlines: deadlines,
		Phase:     phase,
		Status:    StatusForPhase(phase, c.Status),
	}
	changed := c.RetentionStartDate == nil || c.ManagementEndDate == nil || c.CentralEndDate == nil ||
		!next.RetentionStart.Equal(Day(*c.RetentionStartDate)) ||
		!next.ManagementEnd.Equal(Day(*c.ManagementEndDate)) ||
		!next.CentralEnd.Equal(Day(*c.CentralEndDate)) ||
		next.Phase != c.Phase ||
		next.Status != c.Status
	return next, changed
}
