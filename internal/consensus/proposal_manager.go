package consensus

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"record_consensus_system/internal/db/models"
)

type CreateProposalRequest struct {
	RecordID   int64
	Field      string
	NewValue   string
	ProposerID int64
	Reason     string
}

type ProposalManager interface {
	Create(ctx context.Context, request CreateProposalRequest) (*models.Proposal, error)
	Get(ctx context.Context, proposalID int64) (*models.Proposal, error)
	ListOpenFor(ctx context.Context, recordID int64) ([]*models.Proposal, error)
}

type proposalManager struct {
	store  Store
	events Publisher
	logger *zap.SugaredLogger
}

func NewProposalManager(store Store, events Publisher, logger *zap.SugaredLogger) ProposalManager {
	return &proposalManager{
		store:  store,
		events: events,
		logger: logger,
	}
}

func (m *proposalManager) Create(ctx context.Context, request CreateProposalRequest) (*models.Proposal, error) {
	field, ok := models.ParseFieldKey(request.Field)
	if !ok {
		return nil, &ValidationError{Message: "field is not an editable record attribute"}
	}

	newValue := strings.TrimSpace(request.NewValue)
	if newValue == "" {
		return nil, &ValidationError{Message: "new value must not be empty"}
	}

	proposal := &models.Proposal{
		RecordID:   request.RecordID,
		Field:      field,
		NewValue:   newValue,
		ProposerID: request.ProposerID,
		Reason:     strings.TrimSpace(request.Reason),
		Status:     models.ProposalStatusPending,
	}

	err := m.store.RunInTransaction(ctx, func(tx Tx) error {
		record, err := tx.GetRecord(request.RecordID)
		if err != nil {
			return err
		}
		if record == nil {
			return &NotFoundError{Entity: "record", ID: request.RecordID}
		}

		open, err := tx.GetOpenProposal(request.RecordID, field)
		if err != nil {
			return err
		}
		if open != nil {
			return &ConflictError{ExistingProposalID: open.ID}
		}

		if current, ok := record.FieldValue(field); ok && current != "" {
			proposal.OldValue = &current
		}

		return tx.CreateProposal(proposal)
	})
	if err != nil {
		if errors.Is(err, ErrOpenProposalExists) {
			return nil, m.conflictWithWinner(ctx, request.RecordID, field)
		}
		return nil, err
	}

	if err := m.events.Publish(ctx, NewProposalCreatedEvent(proposal)); err != nil {
		m.logger.Errorw("failed to publish proposal-created event",
			"proposalID", proposal.ID, "error", err)
	}

	return proposal, nil
}

// conflictWithWinner looks up the proposal that won a concurrent create race
// so the ConflictError can point the caller at it.
func (m *proposalManager) conflictWithWinner(ctx context.Context, recordID int64, field models.FieldKey) error {
	conflict := &ConflictError{}

	err := m.store.RunInTransaction(ctx, func(tx Tx) error {
		open, err := tx.GetOpenProposal(recordID, field)
		if err != nil {
			return err
		}
		if open != nil {
			conflict.ExistingProposalID = open.ID
		}
		return nil
	})
	if err != nil {
		m.logger.Errorw("failed to look up conflicting proposal",
			"recordID", recordID, "field", field, "error", err)
	}

	return conflict
}

func (m *proposalManager) Get(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	var proposal *models.Proposal

	err := m.store.RunInTransaction(ctx, func(tx Tx) error {
		found, err := tx.GetProposal(proposalID)
		if err != nil {
			return err
		}
		if found == nil {
			return &NotFoundError{Entity: "proposal", ID: proposalID}
		}

		proposal = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return proposal, nil
}

func (m *proposalManager) ListOpenFor(ctx context.Context, recordID int64) ([]*models.Proposal, error) {
	var proposals []*models.Proposal

	err := m.store.RunInTransaction(ctx, func(tx Tx) error {
		found, err := tx.ListOpenProposals(recordID)
		if err != nil {
			return err
		}

		proposals = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return proposals, nil
}
