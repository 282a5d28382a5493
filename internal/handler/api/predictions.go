package api

import (
	"strings"
	"time"

	"WalkSim/internal/domain/models"
	xhttp "WalkSim/pkg/http"
	xlogger "WalkSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionHandler serves live next-day predictions and their history.
type PredictionHandler struct {
	logger    *xlogger.Logger
	predictor PredictionService
	reader    PredictionReader
	updater   MovementUpdater
	now       func() time.Time
}

func NewPredictionHandler(logger *xlogger.Logger, predictor PredictionService, reader PredictionReader, updater MovementUpdater) *PredictionHandler {
	return &PredictionHandler{logger: logger, predictor: predictor, reader: reader, updater: updater, now: time.Now}
}

func (h *PredictionHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predict/:symbol", h.Predict)
	g.GET("/predictions/recent", h.Recent)
	g.GET("/predictions/history", h.History)
	g.POST("/update-actual-movement", h.UpdateActualMovement)
}

func (h *PredictionHandler) Predict(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.predictor.Predict(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Warn("predict failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionHandler) Recent(c echo.Context) error {
	req := &models.RecentPredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.reader.RecentPredictions(c.Request().Context(), strings.ToUpper(req.Symbol), req.Limit)
	if err != nil {
		h.logger.Error("recent predictions", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictionHandler) History(c echo.Context) error {
	req := &models.PredictionHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.reader.PredictionHistory(c.Request().Context(), strings.ToUpper(req.Symbol), req.Limit)
	if err != nil {
		h.logger.Error("prediction history", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictionHandler) UpdateActualMovement(c echo.Context) error {
	n, err := h.updater.UpdateActualMovements(c.Request().Context(), h.now())
	if err != nil {
		h.logger.Error("update actual movement", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, map[string]int{"updated": n})
}
