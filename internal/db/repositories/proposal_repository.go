package repositories

import (
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"

	"record_consensus_system/internal/db/models"
)

type proposalRepository struct {
	repository
}

type ProposalRepository interface {
	GetOne(proposalID int64) (*models.Proposal, error)
	GetManyPendingOlderThan(cutoff time.Time) ([]*models.Proposal, error)
}

func NewProposalRepository(db *pg.DB) ProposalRepository {
	return &proposalRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *proposalRepository) GetOne(proposalID int64) (*models.Proposal, error) {
	proposal := &models.Proposal{}

	err := r.db.Model(proposal).
		Relation("Votes").
		Where("id = ?", proposalID).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return proposal, nil
}

func (r *proposalRepository) GetManyPendingOlderThan(cutoff time.Time) ([]*models.Proposal, error) {
	proposals := make([]*models.Proposal, 0)

	err := r.db.Model(&proposals).
		Where("status = ?", models.ProposalStatusPending).
		Where("updated_at < ?", cutoff).
		OrderExpr("updated_at ASC").
		Select()

	return proposals, err
}
