package grace

import (
	"strings"
	"time"
)

// Decide determines whether grace absorbs a single violation. It is pure:
// the caller supplies the resolved config and the prior violation count for
// the current reset cycle (see CycleStart); the engine keeps no state.
//
// priorCount is the number of violations of the same type already recorded in
// the cycle, before this one.
func Decide(
	violation ViolationType,
	minutes int,
	cfg Resolved,
	priorCount int,
	attendanceStatus string,
	leaveApproved bool,
) (bool, ReasonCode) {
	status := strings.ToUpper(attendanceStatus)
	if status == "HALF_DAY" || status == "HALFDAY" {
		return false, ReasonHalfDay
	}
	if status == "ABSENT" {
		return false, ReasonAbsent
	}
	if leaveApproved {
		return false, ReasonLeaveApproved
	}

	rule := cfg.Rule(violation)

	if !rule.Enabled {
		return false, ReasonDisabled
	}

	withinMinutes := minutes <= rule.GraceMinutesPerDay
	withinCount := priorCount < rule.GraceCountPerMonth

	switch rule.GraceType {
	case GracePerOccurrence:
		if withinMinutes && withinCount {
			return true, ReasonGraceApplied
		}
		return false, ReasonExceededGrace
	case GraceCountBased:
		if withinCount {
			return true, ReasonGraceApplied
		}
		return false, ReasonExceededCount
	case GraceCombined:
		if withinMinutes && withinCount {
			return true, ReasonGraceApplied
		}
		return false, ReasonExceededCombined
	}

	return false, ReasonUnknownType
}

// CycleStart returns the first day of the reset cycle containing d.
// MONTHLY: first of the calendar month. WEEKLY: the most recent weekStartDay
// (0=Sunday..6=Saturday) on or before d. NEVER: a fixed origin so the count
// is effectively lifetime.
func CycleStart(cycle ResetCycle, d time.Time, weekStartDay int) time.Time {
	switch cycle {
	case ResetMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	case ResetWeekly:
		delta := (int(d.Weekday()) - weekStartDay + 7) % 7
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		return day.AddDate(0, 0, -delta)
	}
	return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
}
