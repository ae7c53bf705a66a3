package consensus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"record_consensus_system/internal/consensus"
	mock_consensus "record_consensus_system/internal/consensus/mocks"
	"record_consensus_system/internal/db/models"
)

func newPublisher(t *testing.T) *mock_consensus.MockPublisher {
	ctrl := gomock.NewController(t)
	return mock_consensus.NewMockPublisher(ctrl)
}

func seedRecord(store *memStore) *models.Record {
	record := &models.Record{
		ID:    1,
		Name:  "Northside Primary",
		Phone: "02 1111 2222",
	}
	store.addRecord(record)
	return record
}

func TestCreateProposal_Success(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	var published consensus.Event
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event consensus.Event) error {
			published = event
			return nil
		})

	proposal, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   1,
		Field:      "phone",
		NewValue:   "  02 9999 0000  ",
		ProposerID: 42,
		Reason:     "number changed last term",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ProposalStatusPending, proposal.Status)
	assert.Equal(t, models.FieldPhone, proposal.Field)
	assert.Equal(t, "02 9999 0000", proposal.NewValue)
	require.NotNil(t, proposal.OldValue)
	assert.Equal(t, "02 1111 2222", *proposal.OldValue)

	assert.Equal(t, consensus.EventTypeProposalCreated, published.Type)
	assert.Equal(t, proposal.ID, published.ProposalID)
	assert.Equal(t, int64(42), published.ProposerID)
	assert.NotEmpty(t, published.ID)
}

func TestCreateProposal_OldValueNilWhenFieldUnset(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	proposal, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   1,
		Field:      "website",
		NewValue:   "https://northside.example.edu",
		ProposerID: 42,
	})
	require.NoError(t, err)
	assert.Nil(t, proposal.OldValue)
}

func TestCreateProposal_UnknownField(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	manager := consensus.NewProposalManager(store, newPublisher(t), zap.NewNop().Sugar())

	_, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   1,
		Field:      "principal_salary",
		NewValue:   "1",
		ProposerID: 42,
	})

	var validationErr *consensus.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateProposal_EmptyNewValue(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	manager := consensus.NewProposalManager(store, newPublisher(t), zap.NewNop().Sugar())

	_, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   1,
		Field:      "phone",
		NewValue:   "   ",
		ProposerID: 42,
	})

	var validationErr *consensus.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCreateProposal_RecordNotFound(t *testing.T) {
	store := newMemStore()

	manager := consensus.NewProposalManager(store, newPublisher(t), zap.NewNop().Sugar())

	_, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   99,
		Field:      "phone",
		NewValue:   "02 9999 0000",
		ProposerID: 42,
	})

	var notFoundErr *consensus.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "record", notFoundErr.Entity)
}

func TestCreateProposal_ConflictOnOpenProposal(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	first, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   1,
		Field:      "phone",
		NewValue:   "02 9999 0000",
		ProposerID: 42,
	})
	require.NoError(t, err)

	_, err = manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID:   1,
		Field:      "phone",
		NewValue:   "02 8888 0000",
		ProposerID: 7,
	})

	var conflictErr *consensus.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, first.ID, conflictErr.ExistingProposalID)
}

func TestCreateProposal_DifferentFieldIsIndependent(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	_, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID: 1, Field: "phone", NewValue: "02 9999 0000", ProposerID: 42,
	})
	require.NoError(t, err)

	_, err = manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID: 1, Field: "email", NewValue: "office@northside.example.edu", ProposerID: 42,
	})
	require.NoError(t, err)
}

func TestCreateProposal_PublishFailureDoesNotFailCreate(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(assert.AnError)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	proposal, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID: 1, Field: "phone", NewValue: "02 9999 0000", ProposerID: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, proposal.Status)
}

func TestGetProposal(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	created, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID: 1, Field: "phone", NewValue: "02 9999 0000", ProposerID: 42,
	})
	require.NoError(t, err)

	found, err := manager.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.NewValue, found.NewValue)

	_, err = manager.Get(context.Background(), 999)
	var notFoundErr *consensus.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestListOpenFor(t *testing.T) {
	store := newMemStore()
	seedRecord(store)

	publisher := newPublisher(t)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	manager := consensus.NewProposalManager(store, publisher, zap.NewNop().Sugar())

	_, err := manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID: 1, Field: "phone", NewValue: "02 9999 0000", ProposerID: 42,
	})
	require.NoError(t, err)
	_, err = manager.Create(context.Background(), consensus.CreateProposalRequest{
		RecordID: 1, Field: "website", NewValue: "https://northside.example.edu", ProposerID: 7,
	})
	require.NoError(t, err)

	open, err := manager.ListOpenFor(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	open, err = manager.ListOpenFor(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, open)
}
