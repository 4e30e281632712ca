package maintenance

import (
	"sort"
	"time"

	"github.com/dawsdoon/AutoCare/internal/catalog"
)

// Status classifies how urgently a service is due.
type Status string

const (
	StatusOverdue     Status = "overdue"
	StatusDueSoon     Status = "due-soon"
	StatusApproaching Status = "approaching"
	StatusUpcoming    Status = "upcoming"
	StatusUnknown     Status = "unknown"
)

// Urgency thresholds. A service counts as due once it is overdue or within
// the due-soon window.
const (
	dueSoonDays      = 30
	approachingDays  = 60
	dueSoonMiles     = 500
	approachingMiles = 1000
)

// TimeResult is the time-dimension classification for one service.
// DaysUntil carries the absolute day count; Status says whether the due
// date is behind or ahead.
type TimeResult struct {
	IsDue     bool
	Status    Status
	DaysUntil *int
	DueDate   *time.Time
}

// MileageResult is the mileage-dimension classification for one service.
type MileageResult struct {
	IsDue      bool
	Status     Status
	MilesUntil *int
	DueMileage *int
}

// Verdict combines both dimensions into the overall urgency for a service.
type Verdict struct {
	IsDue    bool
	Status   Status
	Time     TimeResult
	Mileage  MileageResult
	Priority catalog.Priority
}

// TimeStatus classifies a service against its time interval. Missing inputs
// degrade to unknown rather than erroring.
func TimeStatus(lastServiceDate *time.Time, monthsInterval *int, today time.Time) TimeResult {
	if lastServiceDate == nil || monthsInterval == nil {
		return TimeResult{IsDue: false, Status: StatusUnknown}
	}

	dueDate := lastServiceDate.AddDate(0, *monthsInterval, 0)
	days := daysBetween(today, dueDate)

	status := StatusUpcoming
	isDue := false
	switch {
	case days <= 0:
		status = StatusOverdue
		isDue = true
	case days <= dueSoonDays:
		status = StatusDueSoon
		isDue = true
	case days <= approachingDays:
		status = StatusApproaching
	}

	abs := days
	if abs < 0 {
		abs = -abs
	}

	return TimeResult{
		IsDue:     isDue,
		Status:    status,
		DaysUntil: &abs,
		DueDate:   &dueDate,
	}
}

// MileageStatus classifies a service against its mileage interval.
func MileageStatus(lastServiceMileage, currentMileage, mileageInterval *int) MileageResult {
	if lastServiceMileage == nil || currentMileage == nil || mileageInterval == nil {
		return MileageResult{IsDue: false, Status: StatusUnknown}
	}

	dueMileage := *lastServiceMileage + *mileageInterval
	milesUntil := dueMileage - *currentMileage

	status := StatusUpcoming
	isDue := false
	switch {
	case milesUntil <= 0:
		status = StatusOverdue
		isDue = true
	case milesUntil <= dueSoonMiles:
		status = StatusDueSoon
		isDue = true
	case milesUntil <= approachingMiles:
		status = StatusApproaching
	}

	abs := milesUntil
	if abs < 0 {
		abs = -abs
	}

	return MileageResult{
		IsDue:      isDue,
		Status:     status,
		MilesUntil: &abs,
		DueMileage: &dueMileage,
	}
}

// CombinedStatus evaluates a service on both dimensions and takes the more
// urgent of the two. The mileage dimension is only evaluated when the
// interval defines one and both mileage readings are known; unknown on one
// dimension never overrides a known status on the other.
func CombinedStatus(iv catalog.ServiceInterval, lastServiceDate *time.Time, lastServiceMileage, currentMileage *int, today time.Time) Verdict {
	timeRes := TimeResult{IsDue: false, Status: StatusUnknown}
	if iv.TimeIntervalMonths != nil {
		timeRes = TimeStatus(lastServiceDate, iv.TimeIntervalMonths, today)
	}

	mileRes := MileageResult{IsDue: false, Status: StatusUnknown}
	if iv.MileageInterval != nil && lastServiceMileage != nil && currentMileage != nil {
		mileRes = MileageStatus(lastServiceMileage, currentMileage, iv.MileageInterval)
	}

	overall := moreUrgent(timeRes.Status, mileRes.Status)

	return Verdict{
		IsDue:    timeRes.IsDue || mileRes.IsDue,
		Status:   overall,
		Time:     timeRes,
		Mileage:  mileRes,
		Priority: iv.Priority,
	}
}

// ScheduleItem is one row of a vehicle's maintenance schedule.
type ScheduleItem struct {
	Service            catalog.ServiceInterval
	LastServiceDate    *time.Time
	LastServiceMileage *int
	Verdict            Verdict
}

// RankSchedule orders items most urgent first: by status, then by the
// service's configured priority.
func RankSchedule(items []ScheduleItem) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := statusRank(items[i].Verdict.Status), statusRank(items[j].Verdict.Status)
		if si != sj {
			return si < sj
		}
		return priorityRank(items[i].Service.Priority) < priorityRank(items[j].Service.Priority)
	})
}

func statusRank(s Status) int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusDueSoon:
		return 1
	case StatusApproaching:
		return 2
	case StatusUpcoming:
		return 3
	default:
		return 4
	}
}

func priorityRank(p catalog.Priority) int {
	switch p {
	case catalog.PriorityHigh:
		return 0
	case catalog.PriorityMedium:
		return 1
	default:
		return 2
	}
}

func moreUrgent(a, b Status) Status {
	if a == StatusUnknown && b == StatusUnknown {
		return StatusUnknown
	}
	if a == StatusUnknown {
		return b
	}
	if b == StatusUnknown {
		return a
	}
	if statusRank(a) <= statusRank(b) {
		return a
	}
	return b
}

// daysBetween returns the signed whole-day difference between two instants,
// comparing calendar days rather than 24h windows.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
