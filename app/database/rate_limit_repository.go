package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ RateLimitRepository = (*RateLimitSQLRepository)(nil)

type RateLimitSQLRepository struct {
	db *DB
}

func NewRateLimitRepository(db *DB) *RateLimitSQLRepository {
	return &RateLimitSQLRepository{db: db}
}

// PurgeExpired removes every attempt record at or before the cutoff, for all
// addresses. A record exactly at the cutoff is expired (exclusive window lower
// bound).
func (r *RateLimitSQLRepository) PurgeExpired(cutoff time.Time) error {
	_, err := r.db.Exec(`DELETE FROM rate_limits WHERE attempt_time <= ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge expired rate limit records: %w", err)
	}
	return nil
}

func (r *RateLimitSQLRepository) GetAttemptCount(originAddress string, cutoff time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM rate_limits
		WHERE ip_address = ? AND attempt_time > ?
	`, originAddress, cutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rate limit attempts: %w", err)
	}
	return count, nil
}

// GetOldestAttempt returns the oldest non-expired attempt time for an address,
// or nil when none exist.
func (r *RateLimitSQLRepository) GetOldestAttempt(originAddress string, cutoff time.Time) (*time.Time, error) {
	row := r.db.QueryRow(`
		SELECT attempt_time FROM rate_limits
		WHERE ip_address = ? AND attempt_time > ?
		ORDER BY attempt_time ASC
		LIMIT 1
	`, originAddress, cutoff)

	var attemptTime time.Time
	err := row.Scan(&attemptTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get oldest rate limit attempt: %w", err)
	}

	return &attemptTime, nil
}

func (r *RateLimitSQLRepository) RecordAttempt(originAddress string, attemptTime time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO rate_limits (ip_address, attempt_time, created_at) VALUES (?, ?, ?)
	`, originAddress, attemptTime, attemptTime)
	if err != nil {
		return fmt.Errorf("failed to record rate limit attempt: %w", err)
	}
	return nil
}
