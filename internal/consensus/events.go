package consensus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"record_consensus_system/internal/db/models"
)

const (
	EventTypeProposalCreated  = "proposal-created"
	EventTypeProposalResolved = "proposal-resolved"
)

// Event is the fire-and-forget contract with the notifier. Delivery is
// best-effort: a failed publish never fails the operation that emitted it.
type Event struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	EmittedAt  time.Time             `json:"emitted_at"`
	ProposalID int64                 `json:"proposal_id"`
	RecordID   int64                 `json:"record_id"`
	Field      models.FieldKey       `json:"field"`
	ProposerID int64                 `json:"proposer_id,omitempty"`
	Status     models.ProposalStatus `json:"status,omitempty"`
	NewValue   string                `json:"new_value,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func NewProposalCreatedEvent(proposal *models.Proposal) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       EventTypeProposalCreated,
		EmittedAt:  time.Now().UTC(),
		ProposalID: proposal.ID,
		RecordID:   proposal.RecordID,
		Field:      proposal.Field,
		ProposerID: proposal.ProposerID,
	}
}

func NewProposalResolvedEvent(proposal *models.Proposal) Event {
	event := Event{
		ID:         uuid.NewString(),
		Type:       EventTypeProposalResolved,
		EmittedAt:  time.Now().UTC(),
		ProposalID: proposal.ID,
		RecordID:   proposal.RecordID,
		Field:      proposal.Field,
		Status:     proposal.Status,
	}

	if proposal.Status == models.ProposalStatusApproved {
		event.NewValue = proposal.NewValue
	}

	return event
}
