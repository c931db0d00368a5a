package database

import (
	"time"
)

type SubmissionRepository interface {
	Insert(sub Submission) (*Submission, error)
	Get(id int64) (*Submission, error)
	GetAll() ([]Submission, error)
	GetCount() (int, error)
	GetStatusCounts() (StatusCounts, error)

	UpdateStatus(id int64, status string, rejectionReason string) error
	Delete(id int64) error
}

type IdeaRepository interface {
	Insert(text string) error
	GetRandom() (*Idea, error)
	GetCount() (int, error)
}

type RateLimitRepository interface {
	PurgeExpired(cutoff time.Time) error
	GetAttemptCount(originAddress string, cutoff time.Time) (int, error)
	GetOldestAttempt(originAddress string, cutoff time.Time) (*time.Time, error)
	RecordAttempt(originAddress string, attemptTime time.Time) error
}
