package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily_survey_bot/internal/domain/survey"
	"daily_survey_bot/internal/domain/user"

	"github.com/lib/pq"
)

// Custom errors specific to survey repository
var ErrSurveyNotFound = fmt.Errorf("survey not found or no longer pending")
var ErrSurveyConflictUnresolved = fmt.Errorf("survey insert conflicted but existing row was not found")

type PostgresSurveyRepository struct {
	db *sql.DB
}

func NewPostgresSurveyRepository(db *sql.DB) *PostgresSurveyRepository {
	return &PostgresSurveyRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

const surveyColumns = `id, user_id, survey_date, status, sent_at, completed_at, admin_notified_at`

func scanSurvey(row *sql.Row) (*survey.Survey, error) {
	s := &survey.Survey{}
	err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.Status, &s.SentAt, &s.CompletedAt, &s.AdminNotifiedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateDailyIfAbsent inserts the survey for (userID, date) and falls back to
// a lookup when the uniqueness constraint reports the row already exists.
// Both triggers (deferred dispatch and an on-demand /result) can race here;
// the constraint is the arbiter and exactly one caller observes created=true.
func (r *PostgresSurveyRepository) CreateDailyIfAbsent(ctx context.Context, userID int64, date time.Time) (*survey.Survey, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction for daily survey: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `INSERT INTO surveys (user_id, survey_date)
               VALUES ($1, $2)
               ON CONFLICT (user_id, survey_date) DO NOTHING
               RETURNING ` + surveyColumns

	s, err := scanSurvey(tx.QueryRowContext(ctx, insertQuery, userID, date))
	if err == nil {
		return s, true, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("error creating daily survey: %w", err)
	}

	// Lost the race: the row must exist now. A missing row here means the
	// store is in a state the invariant forbids.
	lookupQuery := `SELECT ` + surveyColumns + ` FROM surveys WHERE user_id = $1 AND survey_date = $2`
	s, err = scanSurvey(tx.QueryRowContext(ctx, lookupQuery, userID, date))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, ErrSurveyConflictUnresolved
		}
		return nil, false, fmt.Errorf("error looking up conflicting survey: %w", err)
	}
	return s, false, tx.Commit()
}

// GetPendingByID treats answered surveys as not found, which is what makes
// the completion path reject double submits.
func (r *PostgresSurveyRepository) GetPendingByID(ctx context.Context, id int64) (*survey.Survey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = $1 AND status = $2`
	s, err := scanSurvey(r.db.QueryRowContext(ctx, query, id, survey.StatusPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("error getting pending survey by ID: %w", err)
	}
	return s, nil
}

// SaveAnswer re-verifies the pending state under a row lock in the same
// transaction that writes the answer, so two concurrent submits cannot both
// succeed.
func (r *PostgresSurveyRepository) SaveAnswer(ctx context.Context, surveyID int64, answer survey.Answer) (*survey.Survey, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for answer: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = $1 AND status = $2 FOR UPDATE`
	s, err := scanSurvey(tx.QueryRowContext(ctx, lockQuery, surveyID, survey.StatusPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("error locking pending survey %d: %w", surveyID, err)
	}

	answerQuery := `INSERT INTO answers (survey_id, mood, campaigns_count, geo_count, creatives_count, accounts_count)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id`
	a := answer
	a.SurveyID = surveyID
	err = tx.QueryRowContext(ctx, answerQuery, surveyID, a.Mood, a.CampaignsCount, a.GeoCount, a.CreativesCount, a.AccountsCount).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("error inserting answer for survey %d: %w", surveyID, err)
	}

	updateQuery := `UPDATE surveys SET status = $1, completed_at = NOW() WHERE id = $2 RETURNING completed_at`
	if err := tx.QueryRowContext(ctx, updateQuery, survey.StatusAnswered, surveyID).Scan(&s.CompletedAt); err != nil {
		return nil, fmt.Errorf("error marking survey %d answered: %w", surveyID, err)
	}
	s.Status = survey.StatusAnswered
	s.Answer = &a

	ownerQuery := `SELECT id, telegram_id, username, timezone, created_at FROM users WHERE id = $1`
	owner := &user.User{}
	err = tx.QueryRowContext(ctx, ownerQuery, s.UserID).
		Scan(&owner.ID, &owner.TelegramID, &owner.Username, &owner.Timezone, &owner.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error loading survey owner %d: %w", s.UserID, err)
	}
	s.User = owner

	return s, tx.Commit()
}

func (r *PostgresSurveyRepository) PendingOverdueWithoutAdminNotification(ctx context.Context, cutoff time.Time) ([]*survey.Survey, error) {
	query := `SELECT s.id, s.user_id, s.survey_date, s.status, s.sent_at, s.completed_at, s.admin_notified_at,
                      u.id, u.telegram_id, u.username, u.timezone, u.created_at
               FROM surveys s
               JOIN users u ON u.id = s.user_id
               WHERE s.status = $1 AND s.sent_at <= $2 AND s.admin_notified_at IS NULL
               ORDER BY s.sent_at ASC`

	rows, err := r.db.QueryContext(ctx, query, survey.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying overdue surveys: %w", err)
	}
	defer rows.Close()

	surveys := make([]*survey.Survey, 0)
	for rows.Next() {
		s := &survey.Survey{}
		u := &user.User{}
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Date, &s.Status, &s.SentAt, &s.CompletedAt, &s.AdminNotifiedAt,
			&u.ID, &u.TelegramID, &u.Username, &u.Timezone, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning overdue survey row: %w", err)
		}
		s.User = u
		surveys = append(surveys, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue survey rows: %w", err)
	}
	return surveys, nil
}

func (r *PostgresSurveyRepository) MarkAdminNotified(ctx context.Context, surveyID int64) error {
	query := `UPDATE surveys SET admin_notified_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, surveyID)
	if err != nil {
		return fmt.Errorf("error marking survey %d admin-notified: %w", surveyID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading admin-notified result: %w", err)
	}
	if affected == 0 {
		return ErrSurveyNotFound
	}
	return nil
}

func (r *PostgresSurveyRepository) ListAnsweredInRange(ctx context.Context, from, to time.Time) ([]*survey.Survey, error) {
	query := `SELECT s.id, s.user_id, s.survey_date, s.status, s.sent_at, s.completed_at, s.admin_notified_at,
                      u.id, u.telegram_id, u.username, u.timezone, u.created_at,
                      a.id, a.survey_id, a.mood, a.campaigns_count, a.geo_count, a.creatives_count, a.accounts_count
               FROM surveys s
               JOIN users u ON u.id = s.user_id
               JOIN answers a ON a.survey_id = s.id
               WHERE s.status = $1 AND s.survey_date BETWEEN $2 AND $3
               ORDER BY u.telegram_id, s.survey_date`

	rows, err := r.db.QueryContext(ctx, query, survey.StatusAnswered, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying answered surveys in range: %w", err)
	}
	defer rows.Close()

	surveys := make([]*survey.Survey, 0)
	for rows.Next() {
		s := &survey.Survey{}
		u := &user.User{}
		a := &survey.Answer{}
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Date, &s.Status, &s.SentAt, &s.CompletedAt, &s.AdminNotifiedAt,
			&u.ID, &u.TelegramID, &u.Username, &u.Timezone, &u.CreatedAt,
			&a.ID, &a.SurveyID, &a.Mood, &a.CampaignsCount, &a.GeoCount, &a.CreativesCount, &a.AccountsCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning answered survey row: %w", err)
		}
		s.User = u
		s.Answer = a
		surveys = append(surveys, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answered survey rows: %w", err)
	}
	return surveys, nil
}
