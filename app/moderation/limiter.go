package moderation

import (
	"fmt"
	"time"

	"github.com/lysyi3m/idea-box/app/database"
)

// Limiter enforces a sliding-window submission cap per origin address.
// Expired records are purged lazily on every query; there is no background
// sweep. Timestamps are truncated to whole seconds so stored values compare
// consistently.
type Limiter struct {
	repo        database.RateLimitRepository
	maxAttempts int
	window      time.Duration

	now func() time.Time
}

// QuotaStatus is a read-only projection of the limiter's counters for one
// address.
type QuotaStatus struct {
	MaxAttempts    int
	AttemptsUsed   int
	Remaining      int
	ResetInSeconds int
	IsLimited      bool
}

func NewLimiter(repo database.RateLimitRepository, maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		repo:        repo,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// IsLimited reports whether the address has reached the cap. Stale records are
// purged first so they can never count toward it.
func (l *Limiter) IsLimited(originAddress string) (bool, error) {
	status, err := l.Status(originAddress)
	if err != nil {
		return false, err
	}
	return status.IsLimited, nil
}

// RecordAttempt inserts an attempt record at the current time. Call it only
// after a submission has been persisted: admission checks alone never consume
// quota.
func (l *Limiter) RecordAttempt(originAddress string) error {
	if err := l.repo.RecordAttempt(originAddress, l.currentTime()); err != nil {
		return fmt.Errorf("failed to record attempt for %s: %w", originAddress, err)
	}
	return nil
}

// Status purges expired records and returns the current counters for the
// address. ResetInSeconds counts down to the oldest non-expired record's
// expiry and is 0 when no records exist.
func (l *Limiter) Status(originAddress string) (QuotaStatus, error) {
	cutoff := l.cutoff()

	if err := l.repo.PurgeExpired(cutoff); err != nil {
		return QuotaStatus{}, fmt.Errorf("failed to purge expired records: %w", err)
	}

	used, err := l.repo.GetAttemptCount(originAddress, cutoff)
	if err != nil {
		return QuotaStatus{}, fmt.Errorf("failed to count attempts for %s: %w", originAddress, err)
	}

	resetIn := 0
	if used > 0 {
		oldest, err := l.repo.GetOldestAttempt(originAddress, cutoff)
		if err != nil {
			return QuotaStatus{}, fmt.Errorf("failed to get oldest attempt for %s: %w", originAddress, err)
		}
		if oldest != nil {
			if seconds := int(oldest.Add(l.window).Sub(l.currentTime()).Seconds()); seconds > 0 {
				resetIn = seconds
			}
		}
	}

	remaining := l.maxAttempts - used
	if remaining < 0 {
		remaining = 0
	}

	return QuotaStatus{
		MaxAttempts:    l.maxAttempts,
		AttemptsUsed:   used,
		Remaining:      remaining,
		ResetInSeconds: resetIn,
		IsLimited:      used >= l.maxAttempts,
	}, nil
}

func (l *Limiter) currentTime() time.Time {
	return l.now().UTC().Truncate(time.Second)
}

// cutoff is the exclusive lower bound of the window: a record exactly at
// now-window is already expired.
func (l *Limiter) cutoff() time.Time {
	return l.currentTime().Add(-l.window)
}
