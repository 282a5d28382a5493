package api

import (
	"context"
	"errors"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/usecase"
	xhttp "WalkSim/pkg/http"
)

// toAppError maps use case failures onto HTTP errors.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrUnsupportedSymbol):
		return xhttp.NotFoundError("ERR_UNSUPPORTED_SYMBOL", "symbol", err.Error())
	case errors.Is(err, models.ErrModelNotFound):
		return xhttp.NotFoundError("ERR_MODEL_NOT_FOUND", "symbol", err.Error())
	case errors.Is(err, usecase.ErrRetrainInProgress):
		return xhttp.ConflictError("ERR_RETRAIN_IN_PROGRESS", "symbol", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableError("ERR_TIMEOUT", "request timed out").WithError(err)
	}
	switch kind := models.KindOf(err); kind {
	case models.KindDataUnavailable, models.KindInsufficientSamples, models.KindTrainingFailure:
		return xhttp.UnavailableError("ERR_SIMULATION_UNAVAILABLE", err.Error()).
			WithParam("kind", string(kind)).
			WithError(err)
	case models.KindPersistenceFailure:
		return xhttp.UnavailableError("ERR_PERSISTENCE_UNAVAILABLE", err.Error()).WithError(err)
	}
	return xhttp.InternalError("Something went wrong").WithError(err)
}
