package moderation

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/idea-box/app/database"
)

const (
	// MaxIdeaLength is the submission text limit, counted in characters.
	MaxIdeaLength = 500

	// SubmissionAck is returned for every accepted submission, flagged or
	// not. Flagging is invisible to the submitter.
	SubmissionAck = "Thank you for your submission! It will be reviewed."

	defaultRejectionReason = "No reason provided"
)

// Notifier sends an out-of-band alert for a new submission. Failures are
// logged by the service and never surface to the submitter.
type Notifier interface {
	Notify(sub database.Submission) error
}

// Service orchestrates the submission intake pipeline and the admin
// transition operations. It owns all lifecycle state changes; nothing else
// writes submission statuses or the public pool.
type Service struct {
	submissions database.SubmissionRepository
	ideas       database.IdeaRepository
	limiter     *Limiter
	screener    *Screener
	notifier    Notifier
}

func NewService(submissions database.SubmissionRepository, ideas database.IdeaRepository,
	limiter *Limiter, screener *Screener, notifier Notifier) *Service {
	return &Service{
		submissions: submissions,
		ideas:       ideas,
		limiter:     limiter,
		screener:    screener,
		notifier:    notifier,
	}
}

// Submit runs the intake pipeline: limiter admission check, validation,
// screening, persistence, attempt recording, best-effort notification.
// The admission check runs before validation, but quota is consumed only
// after the submission row is written, so invalid or failed submissions
// never count against the cap.
func (s *Service) Submit(text, originAddress, clientAgent string) (*database.Submission, error) {
	status, err := s.limiter.Status(originAddress)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if status.IsLimited {
		slog.Warn("Rate limit exceeded", "address", originAddress)
		return nil, &RateLimitedError{ResetIn: time.Duration(status.ResetInSeconds) * time.Second}
	}

	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Reason: "Idea cannot be empty"}
	}
	if utf8.RuneCountInString(text) > MaxIdeaLength {
		return nil, &ValidationError{Reason: fmt.Sprintf("Idea is too long (max %d characters)", MaxIdeaLength)}
	}

	screened := s.screener.Screen(text)

	sub, err := s.submissions.Insert(database.Submission{
		Text:          text,
		OriginAddress: originAddress,
		ClientAgent:   clientAgent,
		Flagged:       screened.Flagged,
		FlaggedTerms:  strings.Join(screened.Terms, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	// Losing an attempt record only risks a quota undercount, so a failure
	// here must not fail the already-persisted submission.
	if err := s.limiter.RecordAttempt(originAddress); err != nil {
		slog.Warn("Failed to record rate limit attempt", "address", originAddress, "error", err)
	}

	if sub.Flagged {
		slog.Warn("Flagged submission", "id", sub.ID, "address", originAddress, "terms", sub.FlaggedTerms)
	} else {
		slog.Info("New idea submitted", "id", sub.ID, "address", originAddress)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(*sub); err != nil {
			slog.Error("Failed to send submission notification", "id", sub.ID, "error", err)
		}
	}

	return sub, nil
}

// Approve transitions the submission to approved, clears any rejection
// reason, and appends its text to the public idea pool. The pool is
// append-only; re-approval after rejection adds another entry and the
// transition is allowed from any state.
func (s *Service) Approve(id int64) error {
	if err := s.submissions.UpdateStatus(id, database.StatusApproved, ""); err != nil {
		return fmt.Errorf("failed to approve submission %d: %w", id, err)
	}

	sub, err := s.submissions.Get(id)
	if err != nil {
		return fmt.Errorf("failed to load approved submission %d: %w", id, err)
	}
	if sub == nil {
		return fmt.Errorf("failed to load approved submission %d: %w", id, database.ErrNotFound)
	}

	// No transaction spans the two collections: if this append fails the
	// submission stays approved without a pool entry.
	if err := s.ideas.Insert(sub.Text); err != nil {
		return fmt.Errorf("failed to add approved idea %d to pool: %w", id, err)
	}

	slog.Info("Submission approved", "id", id)
	return nil
}

// Reject transitions the submission to rejected with the given reason, or a
// placeholder when blank. The public pool is never touched: an idea appended
// by an earlier approval stays.
func (s *Service) Reject(id int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = defaultRejectionReason
	}

	if err := s.submissions.UpdateStatus(id, database.StatusRejected, reason); err != nil {
		return fmt.Errorf("failed to reject submission %d: %w", id, err)
	}

	slog.Info("Submission rejected", "id", id, "reason", reason)
	return nil
}

// Delete removes the submission permanently. Pool ideas created from it are
// independent and survive.
func (s *Service) Delete(id int64) error {
	if err := s.submissions.Delete(id); err != nil {
		return fmt.Errorf("failed to delete submission %d: %w", id, err)
	}

	slog.Info("Submission deleted", "id", id)
	return nil
}

// RateLimitStatus exposes the limiter's counters for an address. Read-only
// apart from the limiter's lazy purge.
func (s *Service) RateLimitStatus(originAddress string) (QuotaStatus, error) {
	return s.limiter.Status(originAddress)
}
