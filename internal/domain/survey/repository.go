package survey

import (
	"context"
	"time"
)

// Repository defines the transactional persistence operations for surveys
// and their answers.
type Repository interface {
	// CreateDailyIfAbsent inserts the survey for (userID, date) or returns
	// the existing row when another caller won the race. The boolean reports
	// whether this call performed the insert. Safe under concurrent callers:
	// the uniqueness constraint is the final arbiter, and a conflict that
	// leaves no row to look up is surfaced as an error.
	CreateDailyIfAbsent(ctx context.Context, userID int64, date time.Time) (*Survey, bool, error)

	// GetPendingByID returns the survey only while it is still pending.
	// Answered or missing surveys are reported as not found, which is what
	// makes the completion path idempotent.
	GetPendingByID(ctx context.Context, id int64) (*Survey, error)

	// SaveAnswer atomically re-checks the pending state, writes the answer,
	// flips the status to answered and stamps the completion time. Returns
	// the survey with user and answer loaded.
	SaveAnswer(ctx context.Context, surveyID int64, answer Answer) (*Survey, error)

	// PendingOverdueWithoutAdminNotification lists pending surveys sent at
	// or before the cutoff that have not yet been escalated. User is loaded.
	PendingOverdueWithoutAdminNotification(ctx context.Context, cutoff time.Time) ([]*Survey, error)

	// MarkAdminNotified stamps the escalation time so repeat scans never
	// re-alert the same survey.
	MarkAdminNotified(ctx context.Context, surveyID int64) error

	// ListAnsweredInRange returns answered surveys with survey_date in
	// [from, to], user and answer loaded. Backs statistics aggregation.
	ListAnsweredInRange(ctx context.Context, from, to time.Time) ([]*Survey, error)
}
