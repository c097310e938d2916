package storage

import (
	"context"
	"fmt"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// InsertJobLog records the outcome of one generation run.
func (db *DB) InsertJobLog(ctx context.Context, log domain.JobLog) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO job_logs (job_type, status, keyword, title, model_used, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(log.JobType), log.Status, log.Keyword, log.Title, log.ModelUsed, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert job log: %w", err)
	}

	return nil
}

// CountTodaySuccesses returns how many runs succeeded since local midnight.
// The scheduler compares this against the daily target.
func (db *DB) CountTodaySuccesses(ctx context.Context) (int, error) {
	var count int

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM job_logs
		WHERE status = $1
		  AND created_at >= date_trunc('day', now())`,
		domain.JobStatusSuccess,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count today's successes: %w", err)
	}

	return count, nil
}

// RecentJobLogs returns the latest job logs, newest first.
func (db *DB) RecentJobLogs(ctx context.Context, limit int) ([]domain.JobLog, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT job_type, status, keyword, title, model_used, error_message, created_at
		FROM job_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent job logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.JobLog

	for rows.Next() {
		var (
			l       domain.JobLog
			jobType string
		)

		if err := rows.Scan(&jobType, &l.Status, &l.Keyword, &l.Title, &l.ModelUsed, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job log: %w", err)
		}

		l.JobType = domain.JobType(jobType)
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
