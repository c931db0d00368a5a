package database

import (
	"time"
)

// Submission lifecycle statuses. Every submission starts as pending and moves
// between approved and rejected only through admin transitions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Submission struct {
	ID              int64
	Text            string
	OriginAddress   string // used for rate limiting and audit only
	ClientAgent     string // audit only, may be empty
	Flagged         bool
	FlaggedTerms    string // comma-joined matched terms, empty when not flagged
	Status          string
	RejectionReason string // set on rejection, cleared on approval
	CreatedAt       time.Time
}

type Idea struct {
	ID        int64
	Text      string
	CreatedAt time.Time
}

// StatusCounts holds per-status submission totals for the admin dashboard.
type StatusCounts struct {
	Pending  int
	Approved int
	Rejected int
}
