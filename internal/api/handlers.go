package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db/models"
)

type createProposalRequest struct {
	RecordID   int64  `json:"record_id"`
	Field      string `json:"field"`
	NewValue   string `json:"new_value"`
	ProposerID int64  `json:"proposer_id"`
	Reason     string `json:"reason,omitempty"`
}

type castVoteRequest struct {
	ProposalID int64  `json:"proposal_id"`
	VoterID    int64  `json:"voter_id"`
	Choice     string `json:"choice"`
}

type proposalView struct {
	*models.Proposal
	ApproveCount int `json:"approve_count"`
	RejectCount  int `json:"reject_count"`
}

func (s *Server) handleCreateProposal(c echo.Context) error {
	var request createProposalRequest
	if err := c.Bind(&request); err != nil {
		return &consensus.ValidationError{Message: "malformed request body"}
	}

	proposal, err := s.proposals.Create(c.Request().Context(), consensus.CreateProposalRequest{
		RecordID:   request.RecordID,
		Field:      request.Field,
		NewValue:   request.NewValue,
		ProposerID: request.ProposerID,
		Reason:     request.Reason,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"proposal": proposal,
	})
}

func (s *Server) handleCastVote(c echo.Context) error {
	var request castVoteRequest
	if err := c.Bind(&request); err != nil {
		return &consensus.ValidationError{Message: "malformed request body"}
	}

	result, err := s.votes.CastVote(c.Request().Context(), request.ProposalID, request.VoterID, request.Choice)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleOpenProposals(c echo.Context) error {
	recordID, err := strconv.ParseInt(c.QueryParam("record_id"), 10, 64)
	if err != nil {
		return &consensus.ValidationError{Message: "record_id must be an integer"}
	}

	proposals, err := s.proposals.ListOpenFor(c.Request().Context(), recordID)
	if err != nil {
		return err
	}

	views := make([]proposalView, 0, len(proposals))
	for _, proposal := range proposals {
		tally, err := s.resolver.Tally(c.Request().Context(), proposal.ID)
		if err != nil {
			return err
		}
		views = append(views, proposalView{
			Proposal:     proposal,
			ApproveCount: tally.ApproveCount,
			RejectCount:  tally.RejectCount,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"proposals": views,
	})
}

func (s *Server) handleGetProposal(c echo.Context) error {
	proposalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return &consensus.ValidationError{Message: "proposal id must be an integer"}
	}

	proposal, err := s.reads.GetOne(proposalID)
	if err != nil {
		return err
	}
	if proposal == nil {
		return &consensus.NotFoundError{Entity: "proposal", ID: proposalID}
	}

	view := proposalView{Proposal: proposal}
	for _, vote := range proposal.Votes {
		switch vote.Choice {
		case models.VoteChoiceApprove:
			view.ApproveCount++
		case models.VoteChoiceReject:
			view.RejectCount++
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"proposal": view,
	})
}

func (s *Server) handleGetRecord(c echo.Context) error {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return &consensus.ValidationError{Message: "record id must be an integer"}
	}

	record, err := s.records.GetOne(recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return &consensus.NotFoundError{Entity: "record", ID: recordID}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"record": record,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
