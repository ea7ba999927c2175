package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hotel_agency/internal/domain"
)

const maxDetail = 512

func valInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	if len(s) > maxDetail {
		return s[:maxDetail]
	}
	return s
}

// Journal records booking submissions so partially booked drafts can be
// followed up by reception. It never alters the backend.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

// Migrate creates the journal table when missing.
func (j *Journal) Migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, createSubmissionsSQL); err != nil {
		return fmt.Errorf("create booking_submissions: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, s domain.Submission) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, insertSubmissionSQL,
		s.VisitorID,
		valInt64(s.ClientID),
		s.RoomsRequested,
		s.RoomsBooked,
		s.Outcome,
		valStr(s.Detail),
		s.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, recentSubmissionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var (
			s      domain.Submission
			client sql.NullInt64
			detail sql.NullString
		)
		if err := rows.Scan(&s.VisitorID, &client, &s.RoomsRequested, &s.RoomsBooked, &s.Outcome, &detail, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ClientID = client.Int64
		s.Detail = detail.String
		out = append(out, s)
	}
	return out, rows.Err()
}
