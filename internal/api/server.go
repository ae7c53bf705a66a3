package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"record_consensus_system/internal/consensus"
	"record_consensus_system/internal/db/repositories"
)

type Server struct {
	echo      *echo.Echo
	proposals consensus.ProposalManager
	votes     consensus.VoteLedger
	resolver  consensus.Resolver
	records   repositories.RecordRepository
	reads     repositories.ProposalRepository
	logger    *zap.SugaredLogger
}

func NewServer(
	proposals consensus.ProposalManager,
	votes consensus.VoteLedger,
	resolver consensus.Resolver,
	records repositories.RecordRepository,
	reads repositories.ProposalRepository,
	logger *zap.SugaredLogger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = newErrorHandler(logger)

	server := &Server{
		echo:      e,
		proposals: proposals,
		votes:     votes,
		resolver:  resolver,
		records:   records,
		reads:     reads,
		logger:    logger,
	}

	v1 := e.Group("/v1")
	v1.POST("/proposals", server.handleCreateProposal)
	v1.GET("/proposals/open", server.handleOpenProposals)
	v1.GET("/proposals/:id", server.handleGetProposal)
	v1.POST("/votes", server.handleCastVote)
	v1.GET("/records/:id", server.handleGetRecord)
	e.GET("/healthz", server.handleHealth)

	return server
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
