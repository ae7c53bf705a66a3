package models

import "time"

type VoteChoice string

const (
	VoteChoiceApprove VoteChoice = "approve"
	VoteChoiceReject  VoteChoice = "reject"
)

func (c VoteChoice) String() string {
	return string(c)
}

func ParseVoteChoice(value string) (VoteChoice, bool) {
	switch VoteChoice(value) {
	case VoteChoiceApprove, VoteChoiceReject:
		return VoteChoice(value), true
	}
	return "", false
}

// Vote is one voter's position on one proposal. A voter has at most one row
// per proposal; re-voting overwrites the choice in place.
type Vote struct {
	ID         int64      `json:"id" pg:",pk"`
	ProposalID int64      `json:"proposal_id" pg:",notnull"`
	VoterID    int64      `json:"voter_id" pg:",notnull"`
	Choice     VoteChoice `json:"choice" pg:",notnull"`
	CreatedAt  time.Time  `json:"created_at" pg:"default:now()"`
	UpdatedAt  time.Time  `json:"updated_at" pg:"default:now()"`
}
