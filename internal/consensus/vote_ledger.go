package consensus

import (
	"context"

	"go.uber.org/zap"

	"record_consensus_system/internal/db/models"
)

type VoteLedger interface {
	// CastVote records one voter's choice and synchronously re-runs
	// resolution, so the caller always sees the up-to-date tally and the
	// resulting status. Casting again with a different choice overwrites the
	// existing vote, it never accumulates a second one.
	CastVote(ctx context.Context, proposalID, voterID int64, choice string) (*VoteResult, error)
}

type voteLedger struct {
	store    Store
	resolver Resolver
	events   Publisher
	logger   *zap.SugaredLogger
}

func NewVoteLedger(store Store, resolver Resolver, events Publisher, logger *zap.SugaredLogger) VoteLedger {
	return &voteLedger{
		store:    store,
		resolver: resolver,
		events:   events,
		logger:   logger,
	}
}

func (l *voteLedger) CastVote(ctx context.Context, proposalID, voterID int64, choice string) (*VoteResult, error) {
	voteChoice, ok := models.ParseVoteChoice(choice)
	if !ok {
		return nil, &ValidationError{Message: "choice must be approve or reject"}
	}

	var (
		result       *VoteResult
		resolved     *models.Proposal
		transitioned bool
	)

	// The row lock taken here serializes everything up to commit against
	// other votes on the same proposal, which is what makes the
	// check-tally-transition step atomic.
	err := l.store.RunInTransaction(ctx, func(tx Tx) error {
		proposal, err := tx.GetProposalForUpdate(proposalID)
		if err != nil {
			return err
		}
		if proposal == nil {
			return &NotFoundError{Entity: "proposal", ID: proposalID}
		}
		if proposal.IsTerminal() {
			return &TerminalProposalError{ProposalID: proposalID, Status: proposal.Status}
		}
		if proposal.ProposerID == voterID {
			return &SelfVoteError{ProposalID: proposalID}
		}

		vote := &models.Vote{
			ProposalID: proposalID,
			VoterID:    voterID,
			Choice:     voteChoice,
		}
		if err := tx.UpsertVote(vote); err != nil {
			return err
		}

		result, transitioned, err = l.resolver.ResolveInTx(tx, proposal)
		resolved = proposal
		return err
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		if err := l.events.Publish(ctx, NewProposalResolvedEvent(resolved)); err != nil {
			l.logger.Errorw("failed to publish proposal-resolved event",
				"proposalID", resolved.ID, "error", err)
		}
	}

	return result, nil
}
