package scheduler

import (
	"fmt"
	"time"

	"daily_survey_bot/internal/domain/timezone"
)

// Surveys go out at 20:00 user-local time.
const dispatchHour = 20

// NextDispatch computes the next local 20:00 instant for a stored timezone:
// today's local date if the local clock has not yet reached 20:00, otherwise
// the following local day. Returns the target local date (midnight UTC, as
// stored in the surveys table) and the concrete UTC instant to fire at.
func NextDispatch(storedTZ string, nowUTC time.Time) (date time.Time, runAt time.Time, err error) {
	loc, err := timezone.Location(storedTZ)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	nowLocal := nowUTC.In(loc)
	target := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), dispatchHour, 0, 0, 0, loc)
	if !nowLocal.Before(target) {
		target = target.AddDate(0, 0, 1)
	}

	date = time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	return date, target.UTC(), nil
}

// JobKey derives the deterministic registry key for a user's dispatch on a
// given local date. A restarted process re-derives the same keys, which is
// what makes resync idempotent.
func JobKey(telegramID int64, date time.Time) string {
	return fmt.Sprintf("deferred_survey:%d:%s", telegramID, date.Format("2006-01-02"))
}
