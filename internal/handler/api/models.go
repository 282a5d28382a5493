package api

import (
	"strings"

	"WalkSim/internal/domain/models"
	"WalkSim/internal/usecase"
	xhttp "WalkSim/pkg/http"
	xlogger "WalkSim/pkg/logger"
	"WalkSim/pkg/queue"

	"github.com/labstack/echo/v4"
)

// ModelHandler exposes the model registry. With a queue configured,
// retrains are enqueued and answered with 202.
type ModelHandler struct {
	logger    *xlogger.Logger
	catalog   ModelCatalog
	retrainer ModelRetrainer
	queue     queue.Publisher
}

func NewModelHandler(logger *xlogger.Logger, catalog ModelCatalog, retrainer ModelRetrainer, q queue.Publisher) *ModelHandler {
	return &ModelHandler{logger: logger, catalog: catalog, retrainer: retrainer, queue: q}
}

func (h *ModelHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/models", h.List)
	g.POST("/models/:symbol/retrain", h.Retrain)
}

func (h *ModelHandler) List(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.catalog.Snapshot())
}

func (h *ModelHandler) Retrain(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToUpper(req.Symbol)
	ctx := c.Request().Context()

	if h.queue != nil {
		if err := h.queue.PublishMessage(ctx, usecase.JobTypeRetrain, usecase.RetrainPayload{Symbol: symbol}); err != nil {
			h.logger.Error("enqueue retrain", xlogger.String("symbol", symbol), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.UnavailableError("ERR_QUEUE_UNAVAILABLE", "retrain could not be queued").WithError(err))
		}
		return xhttp.AcceptedResponse(c, map[string]string{"symbol": symbol, "status": "queued"})
	}

	summary, err := h.retrainer.RetrainSymbol(ctx, symbol)
	if err != nil {
		h.logger.Warn("retrain failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, summary)
}
