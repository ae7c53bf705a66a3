package consensus

import (
	"context"

	"go.uber.org/zap"

	"record_consensus_system/internal/db/models"
)

// DefaultVoteThreshold is the number of same-choice votes that resolves a
// proposal.
const DefaultVoteThreshold = 3

// VoteResult is what every vote-path operation returns: the current tally and
// the proposal status after resolution ran.
type VoteResult struct {
	ApproveCount int                   `json:"approve_count"`
	RejectCount  int                   `json:"reject_count"`
	Status       models.ProposalStatus `json:"status"`
}

type Resolver interface {
	// Tally counts the current votes on a proposal by choice.
	Tally(ctx context.Context, proposalID int64) (*VoteResult, error)

	// TryResolve re-tallies a proposal and performs the terminal transition
	// if a threshold is crossed, in its own transaction. Used by the
	// reconciliation sweep for proposals whose caller went away between the
	// vote write and resolution.
	TryResolve(ctx context.Context, proposalID int64) (*VoteResult, error)

	// ResolveInTx runs the tally-and-maybe-transition step inside the
	// caller's transaction. The caller must hold the row lock on the
	// proposal. Reports whether a terminal transition happened.
	ResolveInTx(tx Tx, proposal *models.Proposal) (*VoteResult, bool, error)
}

type resolver struct {
	store     Store
	events    Publisher
	threshold int
	logger    *zap.SugaredLogger
}

func NewResolver(store Store, events Publisher, threshold int, logger *zap.SugaredLogger) Resolver {
	if threshold <= 0 {
		threshold = DefaultVoteThreshold
	}

	return &resolver{
		store:     store,
		events:    events,
		threshold: threshold,
		logger:    logger,
	}
}

func (r *resolver) Tally(ctx context.Context, proposalID int64) (*VoteResult, error) {
	var result *VoteResult

	err := r.store.RunInTransaction(ctx, func(tx Tx) error {
		proposal, err := tx.GetProposal(proposalID)
		if err != nil {
			return err
		}
		if proposal == nil {
			return &NotFoundError{Entity: "proposal", ID: proposalID}
		}

		result, err = r.tally(tx, proposal)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *resolver) TryResolve(ctx context.Context, proposalID int64) (*VoteResult, error) {
	var (
		result       *VoteResult
		resolved     *models.Proposal
		transitioned bool
	)

	err := r.store.RunInTransaction(ctx, func(tx Tx) error {
		proposal, err := tx.GetProposalForUpdate(proposalID)
		if err != nil {
			return err
		}
		if proposal == nil {
			return &NotFoundError{Entity: "proposal", ID: proposalID}
		}

		result, transitioned, err = r.ResolveInTx(tx, proposal)
		resolved = proposal
		return err
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		r.announce(ctx, resolved)
	}

	return result, nil
}

func (r *resolver) ResolveInTx(tx Tx, proposal *models.Proposal) (*VoteResult, bool, error) {
	result, err := r.tally(tx, proposal)
	if err != nil {
		return nil, false, err
	}

	// A terminal proposal is immutable. Concurrent callers that lose the
	// row-lock race land here and observe the final state without writing.
	if proposal.IsTerminal() {
		return result, false, nil
	}

	switch {
	case result.ApproveCount >= r.threshold:
		if err := tx.SetProposalStatus(proposal, models.ProposalStatusApproved); err != nil {
			return nil, false, err
		}
		// The field apply rides in the same transaction as the status
		// write, so a crash cannot leave the proposal approved with the
		// record unchanged.
		if err := tx.ApplyField(proposal.RecordID, proposal.Field, proposal.NewValue); err != nil {
			return nil, false, err
		}
	case result.RejectCount >= r.threshold:
		if err := tx.SetProposalStatus(proposal, models.ProposalStatusRejected); err != nil {
			return nil, false, err
		}
	default:
		return result, false, nil
	}

	result.Status = proposal.Status
	return result, true, nil
}

func (r *resolver) tally(tx Tx, proposal *models.Proposal) (*VoteResult, error) {
	votes, err := tx.ListVotes(proposal.ID)
	if err != nil {
		return nil, err
	}

	result := &VoteResult{Status: proposal.Status}
	for _, vote := range votes {
		switch vote.Choice {
		case models.VoteChoiceApprove:
			result.ApproveCount++
		case models.VoteChoiceReject:
			result.RejectCount++
		}
	}

	return result, nil
}

func (r *resolver) announce(ctx context.Context, proposal *models.Proposal) {
	if err := r.events.Publish(ctx, NewProposalResolvedEvent(proposal)); err != nil {
		r.logger.Errorw("failed to publish proposal-resolved event",
			"proposalID", proposal.ID, "error", err)
	}
}
