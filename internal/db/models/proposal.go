package models

import "time"

type ProposalStatus string

func (s ProposalStatus) String() string {
	return string(s)
}

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
)

type Proposal struct {
	ID         int64          `json:"id" pg:",pk"`
	RecordID   int64          `json:"record_id" pg:",notnull"`
	Field      FieldKey       `json:"field" pg:",notnull"`
	OldValue   *string        `json:"old_value"`
	NewValue   string         `json:"new_value" pg:",notnull"`
	ProposerID int64          `json:"proposer_id" pg:",notnull"`
	Reason     string         `json:"reason"`
	Status     ProposalStatus `json:"status" pg:",notnull,default:'pending'"`
	CreatedAt  time.Time      `json:"created_at" pg:"default:now()"`
	UpdatedAt  time.Time      `json:"updated_at" pg:"default:now()"`
	Votes      []Vote         `json:"votes" pg:"rel:has-many"`
}

// IsTerminal reports whether the proposal reached a final status.
// Terminal proposals never change again.
func (p *Proposal) IsTerminal() bool {
	return p.Status != ProposalStatusPending
}
