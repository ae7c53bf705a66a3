package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"record_consensus_system/internal/consensus"
)

// newErrorHandler translates the consensus error taxonomy into structured
// JSON responses. Conflicts carry the existing proposal id so clients can
// route the user to vote on it instead of retrying the create.
func newErrorHandler(logger *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := translateError(err)
		if code >= http.StatusInternalServerError {
			logger.Errorw("handler error", "path", c.Path(), "error", err)
		}

		if jsonErr := c.JSON(code, body); jsonErr != nil {
			logger.Errorw("failed to write error response", "error", jsonErr)
		}
	}
}

func translateError(err error) (int, map[string]interface{}) {
	var validationErr *consensus.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, map[string]interface{}{
			"error": validationErr.Message,
		}
	}

	var notFoundErr *consensus.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, map[string]interface{}{
			"error": notFoundErr.Error(),
		}
	}

	var selfVoteErr *consensus.SelfVoteError
	if errors.As(err, &selfVoteErr) {
		return http.StatusForbidden, map[string]interface{}{
			"error": selfVoteErr.Error(),
		}
	}

	var conflictErr *consensus.ConflictError
	if errors.As(err, &conflictErr) {
		return http.StatusConflict, map[string]interface{}{
			"error":                conflictErr.Error(),
			"existing_proposal_id": conflictErr.ExistingProposalID,
		}
	}

	var terminalErr *consensus.TerminalProposalError
	if errors.As(err, &terminalErr) {
		return http.StatusConflict, map[string]interface{}{
			"error":  terminalErr.Error(),
			"status": terminalErr.Status,
		}
	}

	var unavailableErr *consensus.StoreUnavailableError
	if errors.As(err, &unavailableErr) {
		return http.StatusServiceUnavailable, map[string]interface{}{
			"error":     "store unavailable, retry with backoff",
			"retryable": true,
		}
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code, map[string]interface{}{
			"error": echoErr.Message,
		}
	}

	return http.StatusInternalServerError, map[string]interface{}{
		"error": "internal error",
	}
}
