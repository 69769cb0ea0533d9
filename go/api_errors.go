package posserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	orderingapp "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/application"
	apierrors "github.com/Apurer/go-gin-pos-server/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("", sessionMapper, apierrors.FaultMapper)

// sessionMapper covers ordering errors that sit outside the shared taxonomy.
func sessionMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderingapp.ErrSessionNotFound):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, orderingapp.ErrSubmissionInFlight):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ErrInvalidToken):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError reports a request the handler could not process.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	if status == http.StatusBadRequest {
		responder.BadRequest(c, err.Error())
		return
	}
	responder.InternalError(c, err.Error())
}

// respondServiceError classifies errors returned by the domain services.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}
