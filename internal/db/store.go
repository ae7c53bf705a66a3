package db

import (
	"context"
	"net"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"

	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db/models"
)

type pgStore struct {
	db *pg.DB
}

// NewStore wraps a pg connection as the engine's transactional store.
// Serialization of concurrent resolutions rides on Postgres row locks, so it
// holds across horizontally scaled service instances.
func NewStore(database *pg.DB) consensus.Store {
	return &pgStore{db: database}
}

func (s *pgStore) RunInTransaction(ctx context.Context, fn func(tx consensus.Tx) error) error {
	err := s.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		return fn(&pgTx{tx: tx})
	})

	return translateTxError(err)
}

// translateTxError maps connectivity failures to the retryable
// StoreUnavailableError; everything else passes through untouched.
func translateTxError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &consensus.StoreUnavailableError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &consensus.StoreUnavailableError{Err: err}
	}

	return err
}

type pgTx struct {
	tx *pg.Tx
}

func (t *pgTx) GetRecord(recordID int64) (*models.Record, error) {
	record := &models.Record{}

	err := t.tx.Model(record).
		Where("id = ?", recordID).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (t *pgTx) ApplyField(recordID int64, field models.FieldKey, value string) error {
	result, err := t.tx.Model((*models.Record)(nil)).
		Set("? = ?", pg.Ident(field.String()), value).
		Set("updated_at = now()").
		Where("id = ?", recordID).
		Update()
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return errors.Errorf("record %d disappeared during field apply", recordID)
	}

	return nil
}

func (t *pgTx) CreateProposal(proposal *models.Proposal) error {
	_, err := t.tx.Model(proposal).Insert()
	if err != nil {
		var pgErr pg.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return consensus.ErrOpenProposalExists
		}
		return err
	}

	return nil
}

func (t *pgTx) GetProposal(proposalID int64) (*models.Proposal, error) {
	return t.getProposal(proposalID, false)
}

func (t *pgTx) GetProposalForUpdate(proposalID int64) (*models.Proposal, error) {
	return t.getProposal(proposalID, true)
}

func (t *pgTx) getProposal(proposalID int64, forUpdate bool) (*models.Proposal, error) {
	proposal := &models.Proposal{}

	query := t.tx.Model(proposal).Where("id = ?", proposalID)
	if forUpdate {
		query = query.For("UPDATE")
	}

	err := query.Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return proposal, nil
}

func (t *pgTx) GetOpenProposal(recordID int64, field models.FieldKey) (*models.Proposal, error) {
	proposal := &models.Proposal{}

	err := t.tx.Model(proposal).
		Where("record_id = ?", recordID).
		Where("field = ?", field).
		Where("status = ?", models.ProposalStatusPending).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return proposal, nil
}

func (t *pgTx) ListOpenProposals(recordID int64) ([]*models.Proposal, error) {
	proposals := make([]*models.Proposal, 0)

	err := t.tx.Model(&proposals).
		Where("record_id = ?", recordID).
		Where("status = ?", models.ProposalStatusPending).
		OrderExpr("created_at ASC").
		Select()
	if err != nil {
		return nil, err
	}

	return proposals, nil
}

func (t *pgTx) SetProposalStatus(proposal *models.Proposal, status models.ProposalStatus) error {
	proposal.Status = status
	proposal.UpdatedAt = time.Now().UTC()

	_, err := t.tx.Model(proposal).
		Column("status", "updated_at").
		WherePK().
		Update()

	return err
}

func (t *pgTx) UpsertVote(vote *models.Vote) error {
	_, err := t.tx.Model(vote).
		OnConflict("(proposal_id, voter_id) DO UPDATE").
		Set("choice = EXCLUDED.choice, updated_at = now()").
		Insert()

	return err
}

func (t *pgTx) ListVotes(proposalID int64) ([]*models.Vote, error) {
	votes := make([]*models.Vote, 0)

	err := t.tx.Model(&votes).
		Where("proposal_id = ?", proposalID).
		OrderExpr("created_at ASC").
		Select()
	if err != nil {
		return nil, err
	}

	return votes, nil
}
