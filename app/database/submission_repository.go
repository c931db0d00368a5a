package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SubmissionRepository = (*SubmissionSQLRepository)(nil)

type SubmissionSQLRepository struct {
	db *DB
}

func NewSubmissionRepository(db *DB) *SubmissionSQLRepository {
	return &SubmissionSQLRepository{db: db}
}

// Insert persists a new submission and returns the stored record with its
// assigned id and creation timestamp. Business validation is the caller's job;
// only persistence-level constraints apply here.
func (r *SubmissionSQLRepository) Insert(sub Submission) (*Submission, error) {
	now := time.Now().UTC().Truncate(time.Second)

	result, err := r.db.Exec(`
		INSERT INTO user_submissions (idea, ip_address, user_agent, profanity_flagged, flagged_words, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sub.Text, sub.OriginAddress, sub.ClientAgent, sub.Flagged, sub.FlaggedTerms, StatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get submission id: %w", err)
	}

	sub.ID = id
	sub.Status = StatusPending
	sub.RejectionReason = ""
	sub.CreatedAt = now

	return &sub, nil
}

// Get returns the submission with the given id, or nil if it does not exist.
func (r *SubmissionSQLRepository) Get(id int64) (*Submission, error) {
	row := r.db.QueryRow(`
		SELECT id, idea, COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       profanity_flagged, COALESCE(flagged_words, ''),
		       status, COALESCE(rejection_reason, ''), created_at
		FROM user_submissions
		WHERE id = ?
	`, id)

	var sub Submission
	err := row.Scan(&sub.ID, &sub.Text, &sub.OriginAddress, &sub.ClientAgent,
		&sub.Flagged, &sub.FlaggedTerms, &sub.Status, &sub.RejectionReason, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &sub, nil
}

// GetAll returns every submission, newest first.
func (r *SubmissionSQLRepository) GetAll() ([]Submission, error) {
	rows, err := r.db.Query(`
		SELECT id, idea, COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       profanity_flagged, COALESCE(flagged_words, ''),
		       status, COALESCE(rejection_reason, ''), created_at
		FROM user_submissions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		err := rows.Scan(&sub.ID, &sub.Text, &sub.OriginAddress, &sub.ClientAgent,
			&sub.Flagged, &sub.FlaggedTerms, &sub.Status, &sub.RejectionReason, &sub.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return subs, nil
}

func (r *SubmissionSQLRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM user_submissions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (r *SubmissionSQLRepository) GetStatusCounts() (StatusCounts, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM user_submissions GROUP BY status`)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("failed to count submissions by status: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return StatusCounts{}, fmt.Errorf("failed to scan status count row: %w", err)
		}
		switch status {
		case StatusPending:
			counts.Pending = count
		case StatusApproved:
			counts.Approved = count
		case StatusRejected:
			counts.Rejected = count
		}
	}

	if err := rows.Err(); err != nil {
		return StatusCounts{}, fmt.Errorf("error iterating status count rows: %w", err)
	}

	return counts, nil
}

// UpdateStatus atomically sets the status and replaces the rejection reason.
// Pass an empty reason to clear it (approval). Returns ErrNotFound when the id
// does not exist, never a silent success.
func (r *SubmissionSQLRepository) UpdateStatus(id int64, status string, rejectionReason string) error {
	var reason sql.NullString
	if rejectionReason != "" {
		reason = sql.NullString{String: rejectionReason, Valid: true}
	}

	result, err := r.db.Exec(`
		UPDATE user_submissions SET status = ?, rejection_reason = ? WHERE id = ?
	`, status, reason, id)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the submission permanently. Pool ideas created from it are
// untouched. Returns ErrNotFound when the id does not exist.
func (r *SubmissionSQLRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM user_submissions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
