// Package history persists completed processing jobs when a database is
// configured. The bot works without it; handlers treat a nil Repo as
// history disabled.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Job records one processing run.
type Job struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	ChatID        int64     `db:"chat_id"`
	Action        string    `db:"action"`
	FileName      string    `db:"file_name"`
	SizeBytes     int64     `db:"size_bytes"`
	DurationSec   float64   `db:"duration_sec"`
	QualityBefore float64   `db:"quality_before"`
	QualityAfter  float64   `db:"quality_after"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

// Totals aggregates global processing counters for the stats command.
type Totals struct {
	Jobs      int64 `db:"jobs"`
	Users     int64 `db:"users"`
	SizeBytes int64 `db:"size_bytes"`
}

// Repo provides access to the jobs table.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wraps an open database handle.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Ping verifies the database connection for readiness probes.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert stores a job and fills in its generated id.
func (r *Repo) Insert(ctx context.Context, job *Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.Status == "" {
		job.Status = "ok"
	}
	const q = `
		INSERT INTO jobs (user_id, chat_id, action, file_name, size_bytes, duration_sec, quality_before, quality_after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.db.QueryRowxContext(ctx, q,
		job.UserID, job.ChatID, job.Action, job.FileName, job.SizeBytes,
		job.DurationSec, job.QualityBefore, job.QualityAfter, job.Status, job.CreatedAt,
	).Scan(&job.ID)
	if err != nil {
		return fmt.Errorf("history: insert job: %w", err)
	}
	return nil
}

// RecentByUser returns the user's latest jobs, newest first.
func (r *Repo) RecentByUser(ctx context.Context, userID int64, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, user_id, chat_id, action, file_name, size_bytes, duration_sec, quality_before, quality_after, status, created_at
		FROM jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	var jobs []Job
	if err := r.db.SelectContext(ctx, &jobs, q, userID, limit); err != nil {
		return nil, fmt.Errorf("history: recent jobs: %w", err)
	}
	return jobs, nil
}

// CountByUser returns how many jobs the user has completed.
func (r *Repo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM jobs WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("history: count jobs: %w", err)
	}
	return count, nil
}

// GlobalTotals returns bot-wide counters for the admin stats command.
func (r *Repo) GlobalTotals(ctx context.Context) (Totals, error) {
	const q = `
		SELECT COUNT(*) AS jobs,
		       COUNT(DISTINCT user_id) AS users,
		       COALESCE(SUM(size_bytes), 0) AS size_bytes
		FROM jobs`
	var t Totals
	if err := r.db.GetContext(ctx, &t, q); err != nil {
		return Totals{}, fmt.Errorf("history: totals: %w", err)
	}
	return t, nil
}
