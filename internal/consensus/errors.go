package consensus

import (
	"fmt"

	"record_consensus_system/internal/db/models"
)

// ValidationError reports malformed input. Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports that an open proposal already exists for the same
// record field. Carries the existing proposal's id so clients can redirect
// the user to vote on it instead.
type ConflictError struct {
	ExistingProposalID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an open proposal (%d) already exists for this field", e.ExistingProposalID)
}

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// SelfVoteError reports a proposer voting on their own proposal.
type SelfVoteError struct {
	ProposalID int64
}

func (e *SelfVoteError) Error() string {
	return fmt.Sprintf("proposer may not vote on own proposal %d", e.ProposalID)
}

// TerminalProposalError reports a vote cast on an already-resolved proposal.
// The vote is rejected outright rather than silently dropped so the caller
// never believes an inert vote counted.
type TerminalProposalError struct {
	ProposalID int64
	Status     models.ProposalStatus
}

func (e *TerminalProposalError) Error() string {
	return fmt.Sprintf("proposal %d is already %s", e.ProposalID, e.Status)
}

// StoreUnavailableError wraps transaction or lock-acquisition failures.
// Safe to retry with backoff: vote upserts are keyed by (proposal, voter).
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
