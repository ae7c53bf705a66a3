package consensus

import (
	"context"

	"github.com/pkg/errors"

	"record_consensus_system/internal/db/models"
)

// ErrOpenProposalExists is returned by Tx.CreateProposal when the store's
// unique index on open proposals rejects the insert, i.e. the caller lost a
// create race that its own pre-check could not see.
var ErrOpenProposalExists = errors.New("open proposal already exists")

// Store is the transactional boundary the engine runs on. Implementations
// must serialize transactions touching the same proposal row: the Postgres
// store does it with SELECT ... FOR UPDATE, the in-memory test store with a
// mutex. In-process locks alone are not enough once the service is
// horizontally scaled, so serialization belongs to the store, not the engine.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the store operations available inside one transaction. Lookups
// return (nil, nil) when the row does not exist; the engine owns the
// translation to NotFoundError.
type Tx interface {
	GetRecord(recordID int64) (*models.Record, error)
	ApplyField(recordID int64, field models.FieldKey, value string) error

	CreateProposal(proposal *models.Proposal) error
	GetProposal(proposalID int64) (*models.Proposal, error)
	// GetProposalForUpdate locks the proposal row for the remainder of the
	// transaction, serializing concurrent tally-and-resolve attempts.
	GetProposalForUpdate(proposalID int64) (*models.Proposal, error)
	GetOpenProposal(recordID int64, field models.FieldKey) (*models.Proposal, error)
	ListOpenProposals(recordID int64) ([]*models.Proposal, error)
	SetProposalStatus(proposal *models.Proposal, status models.ProposalStatus) error

	UpsertVote(vote *models.Vote) error
	ListVotes(proposalID int64) ([]*models.Vote, error)
}
