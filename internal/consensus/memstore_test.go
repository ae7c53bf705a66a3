package consensus_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db/models"
)

// memStore is an in-memory consensus.Store for tests. One mutex serializes
// whole transactions, standing in for the row lock the Postgres store takes
// on the proposal, so concurrent callers interleave the same way they would
// against the real store.
type memStore struct {
	mu sync.Mutex

	records   map[int64]*models.Record
	proposals map[int64]*models.Proposal
	votes     []*models.Vote

	nextProposalID int64
	nextVoteID     int64

	// applyCount counts ApplyField writes so tests can assert a value was
	// applied exactly once.
	applyCount int
}

func newMemStore() *memStore {
	return &memStore{
		records:   make(map[int64]*models.Record),
		proposals: make(map[int64]*models.Proposal),
	}
}

func (s *memStore) addRecord(record *models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.ID] = &copied
}

func (s *memStore) record(recordID int64) models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[recordID]
}

func (s *memStore) voteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.votes)
}

func (s *memStore) applies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyCount
}

func (s *memStore) RunInTransaction(ctx context.Context, fn func(tx consensus.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{store: s})
}

type memTx struct {
	store *memStore
}

func (t *memTx) GetRecord(recordID int64) (*models.Record, error) {
	record, ok := t.store.records[recordID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (t *memTx) ApplyField(recordID int64, field models.FieldKey, value string) error {
	record := t.store.records[recordID]
	record.SetFieldValue(field, value)
	record.UpdatedAt = time.Now().UTC()
	t.store.applyCount++
	return nil
}

func (t *memTx) CreateProposal(proposal *models.Proposal) error {
	for _, existing := range t.store.proposals {
		if existing.RecordID == proposal.RecordID &&
			existing.Field == proposal.Field &&
			existing.Status == models.ProposalStatusPending {
			return consensus.ErrOpenProposalExists
		}
	}

	t.store.nextProposalID++
	proposal.ID = t.store.nextProposalID
	proposal.CreatedAt = time.Now().UTC()
	proposal.UpdatedAt = proposal.CreatedAt

	copied := *proposal
	t.store.proposals[proposal.ID] = &copied
	return nil
}

func (t *memTx) GetProposal(proposalID int64) (*models.Proposal, error) {
	proposal, ok := t.store.proposals[proposalID]
	if !ok {
		return nil, nil
	}
	copied := *proposal
	return &copied, nil
}

func (t *memTx) GetProposalForUpdate(proposalID int64) (*models.Proposal, error) {
	return t.GetProposal(proposalID)
}

func (t *memTx) GetOpenProposal(recordID int64, field models.FieldKey) (*models.Proposal, error) {
	for _, proposal := range t.store.proposals {
		if proposal.RecordID == recordID &&
			proposal.Field == field &&
			proposal.Status == models.ProposalStatusPending {
			copied := *proposal
			return &copied, nil
		}
	}
	return nil, nil
}

func (t *memTx) ListOpenProposals(recordID int64) ([]*models.Proposal, error) {
	proposals := make([]*models.Proposal, 0)
	for _, proposal := range t.store.proposals {
		if proposal.RecordID == recordID && proposal.Status == models.ProposalStatusPending {
			copied := *proposal
			proposals = append(proposals, &copied)
		}
	}
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].ID < proposals[j].ID })
	return proposals, nil
}

func (t *memTx) SetProposalStatus(proposal *models.Proposal, status models.ProposalStatus) error {
	stored := t.store.proposals[proposal.ID]
	stored.Status = status
	stored.UpdatedAt = time.Now().UTC()
	proposal.Status = status
	proposal.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t *memTx) UpsertVote(vote *models.Vote) error {
	for _, existing := range t.store.votes {
		if existing.ProposalID == vote.ProposalID && existing.VoterID == vote.VoterID {
			existing.Choice = vote.Choice
			existing.UpdatedAt = time.Now().UTC()
			return nil
		}
	}

	t.store.nextVoteID++
	vote.ID = t.store.nextVoteID
	vote.CreatedAt = time.Now().UTC()
	vote.UpdatedAt = vote.CreatedAt

	copied := *vote
	t.store.votes = append(t.store.votes, &copied)
	return nil
}

func (t *memTx) ListVotes(proposalID int64) ([]*models.Vote, error) {
	votes := make([]*models.Vote, 0)
	for _, vote := range t.store.votes {
		if vote.ProposalID == proposalID {
			copied := *vote
			votes = append(votes, &copied)
		}
	}
	return votes, nil
}
