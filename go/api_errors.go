package trackerserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-shipment-tracker/internal/shared/errors"
)

// NewProblemResponder maps order errors onto RFC 7807 responses.
func NewProblemResponder() *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder("", mapOrderError)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var transitionErr *domain.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		return apierrors.NewTransitionProblem(string(transitionErr.From), string(transitionErr.To)), true
	case errors.Is(err, domain.ErrInvalidTransition):
		return apierrors.ErrInvalidTransition.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrInvalidInput), errors.Is(err, domain.ErrInvalidFilter):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func respondBadRequest(c *gin.Context, responder *apierrors.ChainedResponder, err error) {
	responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
