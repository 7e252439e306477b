package survey

import (
	"database/sql"
	"time"

	"daily_survey_bot/internal/domain/user"
)

// Status represents the lifecycle state of a daily survey.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
)

// Survey is one user's daily check-in instance. At most one row exists per
// (user, date) pair, enforced by a database uniqueness constraint.
type Survey struct {
	ID              int64
	UserID          int64     // Foreign key to users.id
	Date            time.Time // User-local calendar date, midnight UTC
	Status          Status
	SentAt          time.Time
	CompletedAt     sql.NullTime
	AdminNotifiedAt sql.NullTime

	// Eagerly loaded relations, populated by list/save operations that
	// declare them. Nil otherwise.
	User   *user.User
	Answer *Answer
}

// Answer is the one-to-one result of a completed survey. Created exactly
// once, immutable thereafter.
type Answer struct {
	ID             int64
	SurveyID       int64
	Mood           string // Raw color tag; a wellbeing signal, not a metric
	CampaignsCount int
	GeoCount       int
	CreativesCount int
	AccountsCount  int
}
